package trial

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/diskbench/diskbench/internal/ioback"
	"github.com/diskbench/diskbench/internal/model"
)

func newTestFile(t *testing.T, size int64) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "trial-driver")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Truncate(size); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestRunProducesConsistentCounters(t *testing.T) {
	const fileSize = 1 << 20
	f := newTestFile(t, fileSize)
	defer f.Close()

	spec := model.TrialSpec{
		Workload: model.WorkloadSpec{
			Pattern:      model.Random,
			WritePercent: 40,
			BlockSize:    4096,
			QueueDepth:   8,
			FilePath:     f.Name(),
			FileSize:     fileSize,
			Seed:         11,
		},
		WarmupDuration:   10 * time.Millisecond,
		MeasuredDuration: 40 * time.Millisecond,
	}

	backend := ioback.NewFake(f, spec.Workload.QueueDepth)
	drv, err := New(spec, backend, 4096)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer drv.Release()

	res, err := drv.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.TotalOps <= 0 {
		t.Fatalf("expected nonzero total ops, got %d", res.TotalOps)
	}
	if res.Histogram.Count != res.TotalOps-res.ErrorOps {
		t.Fatalf("histogram count %d != total_ops(%d) - error_ops(%d)", res.Histogram.Count, res.TotalOps, res.ErrorOps)
	}
	if res.Reads+res.Writes != res.TotalOps-res.ErrorOps {
		t.Fatalf("reads(%d)+writes(%d) != successful ops(%d)", res.Reads, res.Writes, res.TotalOps-res.ErrorOps)
	}
	if res.WasCancelled || res.DrainTimedOut {
		t.Fatalf("unexpected cancellation/drain-timeout flags: %+v", res)
	}
}

func TestRunReceivesProgressUpdates(t *testing.T) {
	const fileSize = 1 << 20
	f := newTestFile(t, fileSize)
	defer f.Close()

	spec := model.TrialSpec{
		Workload: model.WorkloadSpec{
			Pattern: model.Sequential, BlockSize: 4096, QueueDepth: 4,
			FilePath: f.Name(), FileSize: fileSize, Seed: 2,
		},
		WarmupDuration:   2 * time.Millisecond,
		MeasuredDuration: 600 * time.Millisecond,
	}

	backend := ioback.NewFake(f, spec.Workload.QueueDepth)
	backend.ArtificialLatency = time.Millisecond
	drv, err := New(spec, backend, 4096)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer drv.Release()

	var updates int
	_, err = drv.Run(context.Background(), func(p model.Progress) {
		updates++
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if updates == 0 {
		t.Fatal("expected at least one progress update over a 600ms measured window")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	const fileSize = 1 << 20
	f := newTestFile(t, fileSize)
	defer f.Close()

	spec := model.TrialSpec{
		Workload: model.WorkloadSpec{
			Pattern: model.Sequential, BlockSize: 4096, QueueDepth: 4,
			FilePath: f.Name(), FileSize: fileSize, Seed: 5,
		},
		WarmupDuration:   time.Second,
		MeasuredDuration: time.Second,
	}

	backend := ioback.NewFake(f, spec.Workload.QueueDepth)
	drv, err := New(spec, backend, 4096)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer drv.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := drv.Run(ctx, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.WasCancelled {
		t.Fatal("expected WasCancelled to be true")
	}
}

func TestNewRejectsUndersizedFile(t *testing.T) {
	spec := model.TrialSpec{
		Workload: model.WorkloadSpec{
			BlockSize: 4096, QueueDepth: 8, FileSize: 4096, // < BlockSize*QueueDepth
		},
	}
	if _, err := New(spec, nil, 4096); err == nil {
		t.Fatal("expected ErrFileTooSmall")
	}
}
