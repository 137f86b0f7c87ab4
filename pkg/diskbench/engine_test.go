package diskbench

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/diskbench/diskbench/internal/model"
)

func TestPrepareThenRunTrialProducesResult(t *testing.T) {
	eng := New(false) // non-direct: tmpfs-backed t.TempDir() rejects O_DIRECT
	path := filepath.Join(t.TempDir(), "bench.dat")

	prepRes, err := eng.Prepare(model.PrepareSpec{Path: path, Size: 1 << 20}, nil)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if prepRes.FinalSize != 1<<20 {
		t.Fatalf("expected final size 1MiB, got %d", prepRes.FinalSize)
	}

	spec := model.TrialSpec{
		Workload: model.WorkloadSpec{
			Pattern:      model.Random,
			WritePercent: 50,
			BlockSize:    4096,
			QueueDepth:   4,
			FilePath:     path,
			FileSize:     1 << 20,
			Seed:         7,
		},
		WarmupDuration:   10 * time.Millisecond,
		MeasuredDuration: 50 * time.Millisecond,
	}

	res, err := eng.RunTrial(context.Background(), spec, nil)
	if err != nil {
		t.Fatalf("RunTrial: %v", err)
	}
	if res.TotalOps <= 0 {
		t.Fatalf("expected some completed ops, got %d", res.TotalOps)
	}
	if res.Histogram.Count != res.TotalOps-res.ErrorOps {
		t.Fatalf("histogram count %d does not match total_ops-error_ops %d", res.Histogram.Count, res.TotalOps-res.ErrorOps)
	}
}

func TestSectorSizeReturnsPositiveValue(t *testing.T) {
	eng := New(false)
	size, err := eng.SectorSize(filepath.Join(t.TempDir(), "probe"))
	if err != nil {
		t.Fatalf("SectorSize: %v", err)
	}
	if size <= 0 {
		t.Fatalf("expected positive sector size, got %d", size)
	}
}

func TestRunTrialRespectsCancellation(t *testing.T) {
	eng := New(false)
	path := filepath.Join(t.TempDir(), "bench.dat")
	if _, err := eng.Prepare(model.PrepareSpec{Path: path, Size: 1 << 20}, nil); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel before the trial even begins

	spec := model.TrialSpec{
		Workload: model.WorkloadSpec{
			Pattern: model.Sequential, BlockSize: 4096, QueueDepth: 2,
			FilePath: path, FileSize: 1 << 20, Seed: 1,
		},
		WarmupDuration:   time.Second,
		MeasuredDuration: time.Second,
	}
	res, err := eng.RunTrial(ctx, spec, nil)
	if err != nil {
		t.Fatalf("RunTrial: %v", err)
	}
	if !res.WasCancelled {
		t.Fatal("expected WasCancelled to be true")
	}
}
