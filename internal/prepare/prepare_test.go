package prepare

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/diskbench/diskbench/internal/model"
)

func TestPrepareReachesExactSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bin")

	res, err := Prepare(model.PrepareSpec{
		Path: path,
		Size: 5 * 1024 * 1024,
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if res.FinalSize != 5*1024*1024 {
		t.Fatalf("FinalSize = %d, want 5MiB", res.FinalSize)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Size() != 5*1024*1024 {
		t.Fatalf("on-disk size = %d, want 5MiB", fi.Size())
	}
}

func TestPrepareReuseExistingSkipsWork(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reuse.bin")

	if _, err := Prepare(model.PrepareSpec{Path: path, Size: 1024 * 1024}); err != nil {
		t.Fatalf("initial prepare: %v", err)
	}

	res, err := Prepare(model.PrepareSpec{Path: path, Size: 1024 * 1024, ReuseIfExists: true})
	if err != nil {
		t.Fatalf("reuse prepare: %v", err)
	}
	if !res.WasReused {
		t.Fatalf("expected WasReused = true")
	}
}

func TestPrepareRejectsZeroSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	if _, err := Prepare(model.PrepareSpec{Path: path, Size: 0}); err == nil {
		t.Fatalf("expected error for zero size")
	}
}
