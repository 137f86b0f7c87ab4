// Package config loads a Plan (a set of workloads plus run-level
// settings) from YAML. Grounded on jolt's pkg/config/config.go: same
// Load(path)->struct->defaults shape, generalized from one optimizer
// target into the spec's list-of-workloads plan (D1).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/diskbench/diskbench/internal/model"
)

// File is the on-disk YAML shape. Durations are strings ("30s", "2m") so
// the document stays human-writable; they're parsed into model.Plan's
// time.Duration fields by ToPlan.
type File struct {
	Workloads []WorkloadFile `yaml:"workloads"`

	TrialsPerWorkload          int   `yaml:"trials_per_workload"`
	BootstrapIterations        int   `yaml:"bootstrap_iterations"`
	ComputeConfidenceIntervals bool  `yaml:"compute_confidence_intervals"`
	ReuseExistingFiles         bool  `yaml:"reuse_existing_files"`
	DeleteOnComplete           bool  `yaml:"delete_on_complete"`
	Seed                       int64 `yaml:"seed"`

	WarmupDuration   string `yaml:"warmup_duration"`
	MeasuredDuration string `yaml:"measured_duration"`
}

// WorkloadFile is one [workloads] entry.
type WorkloadFile struct {
	Pattern      string `yaml:"pattern"` // "sequential" or "random"
	WritePercent int    `yaml:"write_percent"`
	BlockSize    int64  `yaml:"block_size"`
	QueueDepth   int    `yaml:"queue_depth"`
	FilePath     string `yaml:"file_path"`
	FileSize     int64  `yaml:"file_size"`
}

const (
	defaultWarmup   = 5 * time.Second
	defaultMeasured = 30 * time.Second
)

// LoadFile reads and parses a plan document into the raw YAML shape,
// for callers (like cmd/diskbench) that also need File.Durations().
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &f, nil
}

// Load reads and parses a plan document, applying the same style of
// post-unmarshal defaulting jolt's Load does for MinRuntime/MaxRuntime.
func Load(path string) (*model.Plan, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return f.ToPlan()
}

// ToPlan converts the parsed YAML shape into the internal model.Plan,
// applying defaults for anything left zero.
func (f File) ToPlan() (*model.Plan, error) {
	if len(f.Workloads) == 0 {
		return nil, fmt.Errorf("config: plan has no workloads")
	}

	plan := &model.Plan{
		TrialsPerWorkload:          f.TrialsPerWorkload,
		BootstrapIterations:        f.BootstrapIterations,
		ComputeConfidenceIntervals: f.ComputeConfidenceIntervals,
		ReuseExistingFiles:         f.ReuseExistingFiles,
		DeleteOnComplete:           f.DeleteOnComplete,
		Seed:                       f.Seed,
	}
	if plan.TrialsPerWorkload == 0 {
		plan.TrialsPerWorkload = 3
	}
	if plan.BootstrapIterations == 0 {
		plan.BootstrapIterations = 2000
	}

	plan.Workloads = make([]model.WorkloadSpec, len(f.Workloads))
	for i, w := range f.Workloads {
		spec, err := w.toWorkloadSpec(plan.Seed)
		if err != nil {
			return nil, fmt.Errorf("config: workload %d: %w", i, err)
		}
		plan.Workloads[i] = spec
	}
	return plan, nil
}

func (w WorkloadFile) toWorkloadSpec(seed int64) (model.WorkloadSpec, error) {
	var pattern model.Pattern
	switch w.Pattern {
	case "", "sequential":
		pattern = model.Sequential
	case "random":
		pattern = model.Random
	default:
		return model.WorkloadSpec{}, fmt.Errorf("unknown pattern %q", w.Pattern)
	}

	blockSize := w.BlockSize
	if blockSize == 0 {
		blockSize = 4096
	}
	queueDepth := w.QueueDepth
	if queueDepth == 0 {
		queueDepth = 32
	}
	if w.FilePath == "" {
		return model.WorkloadSpec{}, fmt.Errorf("file_path is required")
	}
	if w.FileSize <= 0 {
		return model.WorkloadSpec{}, fmt.Errorf("file_size must be > 0")
	}
	if w.WritePercent < 0 || w.WritePercent > 100 {
		return model.WorkloadSpec{}, fmt.Errorf("write_percent must be in [0,100]")
	}

	return model.WorkloadSpec{
		Pattern:      pattern,
		WritePercent: w.WritePercent,
		BlockSize:    blockSize,
		QueueDepth:   queueDepth,
		FilePath:     w.FilePath,
		FileSize:     w.FileSize,
		Seed:         seed,
	}, nil
}

// Durations parses the plan-level warmup/measured durations, applying
// jolt's MinRuntime/MaxRuntime-style defaults when unset or unparsable.
func (f File) Durations() (warmup, measured time.Duration) {
	warmup = parseDurationOr(f.WarmupDuration, defaultWarmup)
	measured = parseDurationOr(f.MeasuredDuration, defaultMeasured)
	return warmup, measured
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
