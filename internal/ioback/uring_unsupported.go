//go:build !linux

package ioback

import "time"

// UringBackend is unavailable outside Linux; NewUring always fails, and
// pkg/diskbench.Engine then falls back to the FakeBackend, the same
// build-tag shape as jolt's pkg/engine/uring_unsupported.go.
type UringBackend struct{}

func NewUring(queueDepth int) (*UringBackend, error) {
	return nil, ErrUnsupported
}

func (b *UringBackend) SetFd(fd uintptr) {}

func (b *UringBackend) Submit(req SubmitRequest) error { return ErrUnsupported }

func (b *UringBackend) Wait(buf []Completion, timeout time.Duration) (int, error) {
	return 0, ErrUnsupported
}

func (b *UringBackend) Close() error { return nil }
