package config

import (
	"os"
	"path/filepath"
	"testing"
)

const samplePlan = `
workloads:
  - pattern: random
    write_percent: 30
    block_size: 4096
    queue_depth: 16
    file_path: /data/bench.dat
    file_size: 1073741824
  - pattern: sequential
    block_size: 1048576
    file_path: /data/bench2.dat
    file_size: 1073741824
trials_per_workload: 5
bootstrap_iterations: 500
compute_confidence_intervals: true
seed: 42
warmup_duration: 2s
measured_duration: 10s
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParsesWorkloadsAndDefaults(t *testing.T) {
	path := writeTemp(t, samplePlan)
	plan, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(plan.Workloads) != 2 {
		t.Fatalf("expected 2 workloads, got %d", len(plan.Workloads))
	}
	if plan.TrialsPerWorkload != 5 || plan.BootstrapIterations != 500 {
		t.Fatalf("unexpected plan-level settings: %+v", plan)
	}
	w0 := plan.Workloads[0]
	if w0.WritePercent != 30 || w0.QueueDepth != 16 || w0.Seed != 42 {
		t.Fatalf("unexpected workload 0: %+v", w0)
	}
	w1 := plan.Workloads[1]
	if w1.QueueDepth != 32 {
		t.Fatalf("expected default queue depth 32, got %d", w1.QueueDepth)
	}
}

func TestLoadRejectsEmptyWorkloads(t *testing.T) {
	path := writeTemp(t, "workloads: []\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty workload list")
	}
}

func TestLoadRejectsBadWritePercent(t *testing.T) {
	path := writeTemp(t, `
workloads:
  - pattern: random
    write_percent: 150
    file_path: /data/bench.dat
    file_size: 1048576
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for out-of-range write_percent")
	}
}

func TestDurationsDefaultsAndParsing(t *testing.T) {
	f := File{}
	warmup, measured := f.Durations()
	if warmup != defaultWarmup || measured != defaultMeasured {
		t.Fatalf("expected defaults, got warmup=%v measured=%v", warmup, measured)
	}

	f2 := File{WarmupDuration: "1s", MeasuredDuration: "20s"}
	warmup, measured = f2.Durations()
	if warmup.Seconds() != 1 || measured.Seconds() != 20 {
		t.Fatalf("unexpected parsed durations: %v %v", warmup, measured)
	}
}
