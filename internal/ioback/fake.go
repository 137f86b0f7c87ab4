package ioback

import (
	"io"
	"os"
	"time"
)

// FakeBackend drives real ReadAt/WriteAt calls against an *os.File but
// defers the actual syscall from Submit to the next Wait call, so it
// behaves like an asynchronous completion mechanism without requiring
// io_uring/libaio support from the test environment. Used by the seed
// test scenarios in spec §8 and by engine/backend-agnostic trial tests.
type FakeBackend struct {
	f       *os.File
	pending []SubmitRequest

	// ArtificialLatency, when non-zero, is slept once per Wait call
	// (not per request) to simulate a drive with nonzero service time
	// without making tests slow; leave zero for "as fast as the host
	// filesystem allows".
	ArtificialLatency time.Duration
}

// NewFake wraps an already-open file. queueDepth sizes the pending-request
// buffer once up front so Submit's append never needs to grow past its
// initial capacity in steady state. The file is not closed by the
// backend; the caller (the file preparer / trial driver) owns its
// lifecycle per §9's open-per-trial, close-on-return policy.
func NewFake(f *os.File, queueDepth int) *FakeBackend {
	return &FakeBackend{f: f, pending: make([]SubmitRequest, 0, queueDepth)}
}

// Submit enqueues the request; it is executed lazily in Wait.
func (b *FakeBackend) Submit(req SubmitRequest) error {
	b.pending = append(b.pending, req)
	return nil
}

// Wait executes pending requests synchronously in submission order, as
// many as buf has room for, and fills buf with their completions,
// returning the count; any remainder stays pending for the next Wait.
// timeout is honored only in
// that an empty queue returns immediately with nothing ready, matching
// the "poll with short timeout, may return nothing" contract real
// backends have.
func (b *FakeBackend) Wait(buf []Completion, timeout time.Duration) (int, error) {
	if len(b.pending) == 0 {
		return 0, nil
	}
	if b.ArtificialLatency > 0 {
		time.Sleep(b.ArtificialLatency)
	}

	n := 0
	for _, req := range b.pending {
		if n >= len(buf) {
			break
		}
		var transferred int
		var err error
		if req.IsWrite {
			transferred, err = b.f.WriteAt(req.Buffer, req.Offset)
		} else {
			transferred, err = b.f.ReadAt(req.Buffer, req.Offset)
			if err == io.EOF && transferred > 0 {
				err = nil
			}
		}
		buf[n] = Completion{SlotIndex: req.SlotIndex, N: transferred, Err: err}
		n++
	}
	rest := copy(b.pending, b.pending[n:])
	b.pending = b.pending[:rest]
	return n, nil
}

// Close is a no-op: the backend does not own the file handle.
func (b *FakeBackend) Close() error { return nil }
