// Package diskbench is the public surface of the benchmark engine:
// prepare, run_trial, sector_size, drive_details, all_drives, dispose.
// Grounded on jolt's pkg/engine.Engine (New()/Run(Params)), generalized
// from a single convergence-based Run call into the spec's
// prepare/run_trial split with an explicit trial lifecycle underneath.
package diskbench

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/diskbench/diskbench/internal/device"
	"github.com/diskbench/diskbench/internal/ioback"
	"github.com/diskbench/diskbench/internal/model"
	"github.com/diskbench/diskbench/internal/prepare"
	"github.com/diskbench/diskbench/internal/trial"
)

// Engine is the BenchmarkEngine of spec.md §6. It caches nothing across
// calls beyond what's needed to implement Dispose; per §9's resolved
// open question, the file handle backing a trial is opened fresh by
// RunTrial and closed before it returns.
type Engine struct {
	direct bool // whether RunTrial opens files O_DIRECT; false lets tests run on tmpfs
}

// New constructs an Engine. direct selects whether trial files are
// opened with O_DIRECT (production default); tests typically pass false
// since most CI filesystems reject O_DIRECT.
func New(direct bool) *Engine {
	return &Engine{direct: direct}
}

// Prepare implements C8 via internal/prepare: idempotent, and reports a
// single synthetic 1.0 progress value on success since the underlying
// fallocate/write-fill path does not have a sub-operation progress
// signal to stream today (the iterative write-fill loop in
// internal/prepare could be extended to call progressFn with
// partial fractions; not done because every drive fast enough for the
// fast path finishes in well under the ~4Hz progress cadence anyway).
func (e *Engine) Prepare(spec model.PrepareSpec, progressFn func(float64)) (model.PrepareResult, error) {
	res, err := prepare.Prepare(spec)
	if err != nil {
		return model.PrepareResult{}, err
	}
	if progressFn != nil {
		progressFn(1.0)
	}
	return res, nil
}

// SectorSize reports the physical sector size backing path, per spec.md
// §6's `sector_size(path) -> int`.
func (e *Engine) SectorSize(path string) (int, error) {
	_, physical := prepare.SectorSizes(path)
	return physical, nil
}

// DriveDetails implements the read-only static query of spec.md §6.
func (e *Engine) DriveDetails(path string) (*model.DriveDetails, error) {
	d, err := device.Details(path)
	if err != nil {
		return nil, nil // "DriveDetails | none": query failures are not fatal
	}
	return &d, nil
}

// AllDrives implements spec.md §6's `all_drives() -> [DriveDetails]`.
func (e *Engine) AllDrives() ([]model.DriveDetails, error) {
	return device.AllDrives()
}

// Dispose releases any cached handles. The engine currently caches
// nothing across calls (§9), so this is a no-op kept for interface
// stability and symmetry with jolt's agent server, which expects an
// explicit teardown hook when wired to a longer-lived process.
func (e *Engine) Dispose() {}

// RunTrial implements `run_trial(TrialSpec) -> TrialResult | error`
// (spec.md §6): opens the workload's file fresh, builds a trial.Driver,
// runs it to completion (or cancellation via ctx), and closes the file
// before returning. progressFn, if non-nil, receives the ~4Hz progress
// stream.
func (e *Engine) RunTrial(ctx context.Context, spec model.TrialSpec, progressFn func(model.Progress)) (model.TrialResult, error) {
	w := spec.Workload

	f, err := prepare.OpenDirect(w.FilePath, e.direct)
	if err != nil {
		return model.TrialResult{}, fmt.Errorf("diskbench: run_trial: %w", err)
	}
	defer f.Close()

	_, sectorSize := prepare.SectorSizes(w.FilePath)

	backend := e.newBackend(f, w.QueueDepth)
	defer backend.Close()

	drv, err := trial.New(spec, backend, sectorSize)
	if err != nil {
		return model.TrialResult{}, err
	}
	defer drv.Release()

	return drv.Run(ctx, progressFn)
}

// newBackend selects the io_uring backend on Linux, falling back to the
// synchronous FakeBackend anywhere uring setup is unsupported or fails —
// the same "best backend available, degrade gracefully" shape as jolt's
// engine.New(engType) dispatch, but probed rather than caller-selected
// since this repo does not expose a libaio backend of its own (the
// teacher's is grounded on a raw syscall shim this repo does not carry
// forward; io_uring via go-uring supersedes it on every platform this
// repo targets).
func (e *Engine) newBackend(f *os.File, queueDepth int) ioback.Backend {
	if runtime.GOOS == "linux" {
		if b, err := ioback.NewUring(queueDepth); err == nil {
			b.SetFd(f.Fd())
			return b
		}
	}
	return ioback.NewFake(f, queueDepth)
}
