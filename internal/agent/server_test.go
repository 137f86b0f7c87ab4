package agent

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/diskbench/diskbench/internal/model"
	"github.com/diskbench/diskbench/pkg/diskbench"
)

func TestHandleTrialRoundTrip(t *testing.T) {
	eng := diskbench.New(false)
	path := filepath.Join(t.TempDir(), "bench.dat")
	if _, err := eng.Prepare(model.PrepareSpec{Path: path, Size: 1 << 20}, nil); err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	srv := NewServer(eng)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	spec := model.TrialSpec{
		Workload: model.WorkloadSpec{
			Pattern: model.Sequential, BlockSize: 4096, QueueDepth: 4,
			FilePath: path, FileSize: 1 << 20, Seed: 3,
		},
		WarmupDuration:   5 * time.Millisecond,
		MeasuredDuration: 20 * time.Millisecond,
	}

	res, err := RunRemoteTrial(context.Background(), ts.URL, spec)
	if err != nil {
		t.Fatalf("RunRemoteTrial: %v", err)
	}
	if res.TotalOps <= 0 {
		t.Fatalf("expected nonzero ops, got %d", res.TotalOps)
	}
}

func TestHandleHealthReturnsOK(t *testing.T) {
	eng := diskbench.New(false)
	srv := NewServer(eng)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
