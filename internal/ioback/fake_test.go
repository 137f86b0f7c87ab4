package ioback

import (
	"bytes"
	"os"
	"testing"
)

func TestFakeBackendRoundTrip(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "ioback-fake")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := f.Truncate(4096); err != nil {
		t.Fatal(err)
	}

	b := NewFake(f, 4)
	buf := make([]Completion, 4)

	// Nothing submitted yet: Wait returns immediately with no completions.
	n, err := b.Wait(buf, 0)
	if err != nil || n != 0 {
		t.Fatalf("expected empty wait, got n=%d, %v", n, err)
	}

	writeBuf := bytes.Repeat([]byte{0x5A}, 4096)
	if err := b.Submit(SubmitRequest{SlotIndex: 0, Offset: 0, Buffer: writeBuf, IsWrite: true}); err != nil {
		t.Fatalf("Submit write: %v", err)
	}
	n, err = b.Wait(buf, 0)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if n != 1 || buf[0].N != 4096 || buf[0].Err != nil {
		t.Fatalf("unexpected write completion: n=%d %+v", n, buf[0])
	}

	readBuf := make([]byte, 4096)
	if err := b.Submit(SubmitRequest{SlotIndex: 0, Offset: 0, Buffer: readBuf, IsWrite: false}); err != nil {
		t.Fatalf("Submit read: %v", err)
	}
	n, err = b.Wait(buf, 0)
	if err != nil || n != 1 || buf[0].N != 4096 {
		t.Fatalf("unexpected read completion: n=%d %+v, %v", n, buf[0], err)
	}
	if !bytes.Equal(readBuf, writeBuf) {
		t.Fatalf("read back data does not match written data")
	}
}

func TestFakeBackendBatchesMultipleSubmits(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "ioback-fake-batch")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := f.Truncate(4096 * 4); err != nil {
		t.Fatal(err)
	}

	b := NewFake(f, 4)
	data := make([]byte, 4096)
	for i := 0; i < 4; i++ {
		if err := b.Submit(SubmitRequest{SlotIndex: i, Offset: int64(i) * 4096, Buffer: data, IsWrite: true}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	buf := make([]Completion, 4)
	n, err := b.Wait(buf, 0)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 completions, got %d", n)
	}
}
