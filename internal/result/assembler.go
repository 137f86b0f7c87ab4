// Package result implements the result assembler (C9): combines per-trial
// histograms/time-series/counters into a TrialResult, and aggregates
// TrialResults across a workload's trials into medians plus an optional
// bootstrap confidence interval.
package result

import (
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/diskbench/diskbench/internal/histogram"
	"github.com/diskbench/diskbench/internal/model"
	"github.com/diskbench/diskbench/internal/timeseries"
)

// BuildTrialResult assembles one trial's counters/histogram/time-series
// into the serializable TrialResult.
func BuildTrialResult(idx int, h *histogram.Histogram, ring *timeseries.Ring, totalBytes, totalOps, reads, writes, errorOps int64, wall time.Duration, collectTimeSeries bool) model.TrialResult {
	tr := model.TrialResult{
		TrialIndex:   idx,
		TotalBytes:   totalBytes,
		TotalOps:     totalOps,
		Reads:        reads,
		Writes:       writes,
		ErrorOps:     errorOps,
		WallDuration: wall,
		Histogram:    summarizeHistogram(h),
	}
	if collectTimeSeries && ring != nil {
		entries := ring.Snapshot()
		tr.TimeSeries = make([]model.TimeSeriesEntry, len(entries))
		for i, e := range entries {
			tr.TimeSeries[i] = model.TimeSeriesEntry{Bytes: e.Bytes, Operations: e.Operations}
		}
	}
	return tr
}

func summarizeHistogram(h *histogram.Histogram) model.HistogramSummary {
	if h == nil {
		return model.HistogramSummary{}
	}
	return model.HistogramSummary{
		Count: h.Count(),
		Min:   h.Min(),
		Max:   h.Max(),
		Mean:  h.Mean(),
		P50:   h.PercentileMicros(0.50),
		P95:   h.PercentileMicros(0.95),
		P99:   h.PercentileMicros(0.99),
		P999:  h.PercentileMicros(0.999),
	}
}

// Assemble builds a WorkloadResult from the trials run for one workload.
// When computeCI is set and bootstrapIterations > 0, it computes a
// percentile-bootstrap 95% CI
// for IOPS and throughput by resampling the per-trial point estimates
// with replacement, seeded for reproducibility (§4.9, §8 scenario 6).
func Assemble(spec model.WorkloadSpec, trials []model.TrialResult, bootstrapIterations int, computeCI bool, seed int64) model.WorkloadResult {
	wr := model.WorkloadResult{
		Workload: spec,
		Trials:   trials,
	}
	if len(trials) == 0 {
		return wr
	}

	iops := make([]float64, len(trials))
	throughput := make([]float64, len(trials))
	p50 := make([]float64, len(trials))
	p99 := make([]float64, len(trials))
	for i, t := range trials {
		secs := t.WallDuration.Seconds()
		if secs <= 0 {
			secs = 1
		}
		iops[i] = float64(t.TotalOps) / secs
		throughput[i] = float64(t.TotalBytes) / secs
		p50[i] = t.Histogram.P50
		p99[i] = t.Histogram.P99
	}

	wr.MedianIOPS = median(iops)
	wr.MedianThroughput = median(throughput)
	wr.MedianP50Micros = median(p50)
	wr.MedianP99Micros = median(p99)

	if computeCI && bootstrapIterations > 0 {
		wr.IOPSConfidence = bootstrapCI(iops, bootstrapIterations, seed)
		wr.ThroughputConfidence = bootstrapCI(throughput, bootstrapIterations, seed+1)
	}

	return wr
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// bootstrapCI draws iterations samples with replacement from points,
// computing the median of each resample, and reports the 2.5%/97.5%
// quantiles of the resampled medians (a percentile bootstrap).
func bootstrapCI(points []float64, iterations int, seed int64) *model.ConfidenceInterval {
	if len(points) == 0 {
		return nil
	}
	r := rand.New(rand.NewSource(seed))
	resampledMedians := make([]float64, iterations)
	scratch := make([]float64, len(points))

	for i := 0; i < iterations; i++ {
		for j := range scratch {
			scratch[j] = points[r.Intn(len(points))]
		}
		sort.Float64s(scratch)
		resampledMedians[i] = stat.Quantile(0.5, stat.Empirical, scratch, nil)
	}

	sort.Float64s(resampledMedians)
	return &model.ConfidenceInterval{
		Lower: stat.Quantile(0.025, stat.Empirical, resampledMedians, nil),
		Upper: stat.Quantile(0.975, stat.Empirical, resampledMedians, nil),
	}
}
