// Package sessionstats rolls up latency across an entire run (every
// trial of every workload) into one HdrHistogram-backed summary,
// adapted from jolt's pkg/stats/histogram.go. This is distinct from
// internal/histogram's bespoke log2-bucket C3 implementation: C3's
// bucketing formula is a per-trial hot-path invariant (floor(log2(...)),
// wait-free, single-writer) that an HdrHistogram-backed structure cannot
// reproduce exactly, so it stays bespoke. This package instead
// aggregates the already-computed per-trial mean latencies into a
// session-level report, the one place in this repo the teacher's
// HdrHistogram wrapper genuinely fits.
package sessionstats

import (
	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/diskbench/diskbench/internal/model"
)

// Rollup accumulates one value per completed trial (its mean
// per-operation latency, in microseconds) across a whole run.
type Rollup struct {
	impl *hdrhistogram.Histogram
}

// New creates a rollup tracking 1us to 1 hour at ~3 significant figures,
// the same range jolt's pkg/stats.NewHistogram uses.
func New() *Rollup {
	return &Rollup{impl: hdrhistogram.New(1, 3600*1000*1000, 3)}
}

// AddTrial folds one trial's histogram summary into the rollup, using
// its mean latency as the representative per-trial sample.
func (r *Rollup) AddTrial(h model.HistogramSummary) {
	v := int64(h.Mean)
	if v < 1 {
		v = 1
	}
	r.impl.RecordValue(v)
}

// AddWorkload folds every trial of a workload result into the rollup.
func (r *Rollup) AddWorkload(wr model.WorkloadResult) {
	for _, t := range wr.Trials {
		r.AddTrial(t.Histogram)
	}
}

func (r *Rollup) ValueAtQuantile(q float64) int64 { return r.impl.ValueAtQuantile(q * 100.0) }
func (r *Rollup) Mean() float64                   { return r.impl.Mean() }
func (r *Rollup) StdDev() float64                 { return r.impl.StdDev() }
func (r *Rollup) TotalCount() int64               { return r.impl.TotalCount() }
func (r *Rollup) Merge(other *Rollup)              { r.impl.Merge(other.impl) }
