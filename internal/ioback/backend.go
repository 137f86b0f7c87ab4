// Package ioback defines the platform completion-mechanism abstraction
// the trial driver's completion loop (C6) submits into and reaps from. A
// real Linux backend (uring_linux.go) wraps io_uring via go-uring, the way
// jolt's pkg/engine/uring.go does; a portable FakeBackend (fake.go) drives
// the seed test scenarios in spec §8 without touching a real device.
package ioback

import (
	"fmt"
	"time"
)

// SubmitRequest describes one I/O to submit against a fixed slot index.
// The buffer must remain valid (not reused) until the matching completion
// is reaped.
type SubmitRequest struct {
	SlotIndex int
	Offset    int64
	Buffer    []byte
	IsWrite   bool
}

// Completion reports one reaped I/O.
type Completion struct {
	SlotIndex int
	N         int // bytes actually transferred; may be < len(Buffer) on a partial transfer (§4.6)
	Err       error
}

// Backend is the platform completion-mechanism abstraction. A Backend is
// owned by exactly one trial and is not safe for concurrent use from more
// than the single completion/submitter thread described in §5.
type Backend interface {
	// Submit issues one I/O synchronously. An error here is a §7
	// SubmitFailed: the caller leaves the slot Idle and continues.
	Submit(req SubmitRequest) error

	// Wait blocks for at most timeout waiting for at least one
	// completion, filling as many of buf as are ready and returning the
	// count. Callers preallocate buf once (sized to queue depth) and pass
	// the same backing array every call, which is what keeps this call
	// off the steady-state allocation path (§5): a count of 0 with a nil
	// error means the timeout elapsed with nothing ready, the expected
	// outcome of most polls, used by the driver to make deadline checks
	// prompt (§4.6 step 2).
	Wait(buf []Completion, timeout time.Duration) (n int, err error)

	// Close releases any backend-owned resources (rings, AIO contexts).
	Close() error
}

// ErrUnsupported is returned by backend constructors unavailable on the
// current platform (e.g. io_uring on non-Linux).
var ErrUnsupported = fmt.Errorf("ioback: backend not supported on this platform")
