// Package model holds the data model shared across the engine's internal
// packages (§3 of the spec): WorkloadSpec, TrialSpec, Plan, results, and
// the read-only device-info types. It exists so internal/trial,
// internal/prepare, internal/result, and the public pkg/diskbench facade
// can all refer to the same types without an import cycle back through
// the facade package.
package model

import "time"

// Pattern selects sequential vs. random access.
type Pattern int

const (
	Sequential Pattern = iota
	Random
)

func (p Pattern) String() string {
	if p == Random {
		return "random"
	}
	return "sequential"
}

// WorkloadSpec is an immutable description of one access pattern to
// drive against a file (§3).
type WorkloadSpec struct {
	Pattern     Pattern
	WritePercent int // 0-100
	BlockSize   int64
	QueueDepth  int
	FilePath    string
	FileSize    int64
	Seed        int64 // base seed for offset and direction streams; 0 is used as-is, not replaced by a clock-derived seed
}

// TrialSpec is one WorkloadSpec plus the timing/flags for a single trial
// run.
type TrialSpec struct {
	Workload            WorkloadSpec
	WarmupDuration       time.Duration
	MeasuredDuration     time.Duration
	TrialIndex           int
	CollectTimeSeries    bool
	TrackAllocations     bool
}

// Plan is an ordered list of workloads plus run-level settings.
type Plan struct {
	Workloads              []WorkloadSpec
	TrialsPerWorkload       int
	BootstrapIterations     int
	ComputeConfidenceIntervals bool
	ReuseExistingFiles      bool
	DeleteOnComplete        bool
	Seed                    int64
}

// ErrorKind enumerates the §7 error taxonomy.
type ErrorKind int

const (
	NoError ErrorKind = iota
	PreparationFailed
	SubmitFailed
	CompletionFailed
	Cancelled
	DrainTimeout
	ResourceExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case PreparationFailed:
		return "PreparationFailed"
	case SubmitFailed:
		return "SubmitFailed"
	case CompletionFailed:
		return "CompletionFailed"
	case Cancelled:
		return "Cancelled"
	case DrainTimeout:
		return "DrainTimeout"
	case ResourceExhausted:
		return "ResourceExhausted"
	default:
		return "NoError"
	}
}

// TimeSeriesEntry mirrors timeseries.Entry for the public result surface
// (kept as a distinct type so internal/timeseries can evolve its internal
// representation independently of the serialized result shape).
type TimeSeriesEntry struct {
	Bytes      int64 `json:"bytes"`
	Operations int64 `json:"operations"`
}

// HistogramSummary is the serializable subset of a histogram a
// TrialResult carries: enough to report percentiles without re-exposing
// the bucket array.
type HistogramSummary struct {
	Count   int64   `json:"count"`
	Min     int64   `json:"min_us"`
	Max     int64   `json:"max_us"`
	Mean    float64 `json:"mean_us"`
	P50     float64 `json:"p50_us"`
	P95     float64 `json:"p95_us"`
	P99     float64 `json:"p99_us"`
	P999    float64 `json:"p999_us"`
}

// TrialResult is the outcome of one run_trial call (§3, §6).
type TrialResult struct {
	TrialIndex int `json:"trial_index"`

	TotalBytes int64 `json:"total_bytes"`
	TotalOps   int64 `json:"total_ops"`
	Reads      int64 `json:"reads"`
	Writes     int64 `json:"writes"`
	ErrorOps   int64 `json:"error_ops"`

	WallDuration time.Duration `json:"wall_duration"`

	Histogram  HistogramSummary   `json:"histogram"`
	TimeSeries []TimeSeriesEntry  `json:"time_series,omitempty"`

	WasCancelled      bool `json:"was_cancelled"`
	DrainTimedOut     bool `json:"drain_timed_out"`
	AbandonedOnDrain  int  `json:"abandoned_on_drain"`
	AllocationsDuringMeasured int64 `json:"allocations_during_measured,omitempty"`

	Annotations []string `json:"annotations,omitempty"`
}

// ConfidenceInterval is a percentile-bootstrap CI (§4.9).
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// WorkloadResult aggregates TrialResults for one WorkloadSpec (§4.9).
type WorkloadResult struct {
	Workload WorkloadSpec `json:"workload"`

	MedianIOPS       float64 `json:"median_iops"`
	MedianThroughput float64 `json:"median_throughput_bytes_per_sec"`
	MedianP50Micros  float64 `json:"median_p50_us"`
	MedianP99Micros  float64 `json:"median_p99_us"`

	IOPSConfidence       *ConfidenceInterval `json:"iops_ci,omitempty"`
	ThroughputConfidence *ConfidenceInterval `json:"throughput_ci,omitempty"`

	Trials []TrialResult `json:"trials"`
}

// PrepareSpec requests file preparation ahead of (or standalone from) a
// trial run (§6).
type PrepareSpec struct {
	Path             string
	Size             int64
	ReuseIfExists    bool
	FillPattern      byte
	UseFillPattern   bool // false means zero-fill
}

// PrepareResult is C8's output (§4.8).
type PrepareResult struct {
	Path               string
	FinalSize          int64
	LogicalSectorSize  int
	PhysicalSectorSize int
	UsedFastPath       bool
	WasReused          bool
}

// DriveDetails is the read-only static device-info query result (§6, D4).
// The trial driver never reads this itself; it is exposed through
// Engine.DriveDetails/AllDrives for callers such as the CLI's devices
// subcommand and the out-of-scope shell-integration collaborator.
type DriveDetails struct {
	Path        string `json:"path"`
	VolumeLabel string `json:"volume_label"`
	BusType     string `json:"bus_type"`
	TotalBytes  uint64 `json:"total_bytes"`
	FreeBytes   uint64 `json:"free_bytes"`
}

// Progress is the driver's ~4Hz publish payload (§4.7).
type Progress struct {
	Phase          string        `json:"phase"`
	Elapsed        time.Duration `json:"elapsed"`
	Duration       time.Duration `json:"duration"`
	BytesSoFar     int64         `json:"bytes_so_far"`
	OpsSoFar       int64         `json:"ops_so_far"`
	BytesPerSecond float64       `json:"bytes_per_second"`
	IOPS           float64       `json:"iops"`
}
