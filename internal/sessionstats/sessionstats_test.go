package sessionstats

import (
	"testing"

	"github.com/diskbench/diskbench/internal/model"
)

func TestAddTrialAccumulatesCount(t *testing.T) {
	r := New()
	r.AddTrial(model.HistogramSummary{Mean: 120})
	r.AddTrial(model.HistogramSummary{Mean: 340})
	if r.TotalCount() != 2 {
		t.Fatalf("expected count 2, got %d", r.TotalCount())
	}
	if r.Mean() <= 0 {
		t.Fatalf("expected positive mean, got %f", r.Mean())
	}
}

func TestAddWorkloadFoldsAllTrials(t *testing.T) {
	r := New()
	wr := model.WorkloadResult{
		Trials: []model.TrialResult{
			{Histogram: model.HistogramSummary{Mean: 100}},
			{Histogram: model.HistogramSummary{Mean: 200}},
			{Histogram: model.HistogramSummary{Mean: 300}},
		},
	}
	r.AddWorkload(wr)
	if r.TotalCount() != 3 {
		t.Fatalf("expected count 3, got %d", r.TotalCount())
	}
}

func TestMergeCombinesCounts(t *testing.T) {
	a, b := New(), New()
	a.AddTrial(model.HistogramSummary{Mean: 50})
	b.AddTrial(model.HistogramSummary{Mean: 60})
	b.AddTrial(model.HistogramSummary{Mean: 70})
	a.Merge(b)
	if a.TotalCount() != 3 {
		t.Fatalf("expected merged count 3, got %d", a.TotalCount())
	}
}
