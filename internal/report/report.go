// Package report formats WorkloadResults for human and machine
// consumption (D2). The human-readable table follows the Printf-table
// style of jolt's cmd/jolt/main.go summary output; byte quantities are
// rendered with github.com/dustin/go-humanize the way
// other_examples' fio.go sizes its default block/file sizes.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/diskbench/diskbench/internal/model"
	"github.com/diskbench/diskbench/internal/sessionstats"
)

// WriteTable renders one line per workload result, aligned in columns,
// in the "Metrics: IOPS=..., Throughput=..." spirit of jolt's CLI
// summary but extended with latency percentiles and confidence
// intervals.
func WriteTable(w io.Writer, results []model.WorkloadResult) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tWRITE%\tBLOCK\tQD\tIOPS\tTHROUGHPUT\tP50\tP99")
	for _, r := range results {
		iopsStr := fmt.Sprintf("%.0f", r.MedianIOPS)
		if r.IOPSConfidence != nil {
			iopsStr = fmt.Sprintf("%.0f [%.0f,%.0f]", r.MedianIOPS, r.IOPSConfidence.Lower, r.IOPSConfidence.Upper)
		}
		tputStr := humanize.Bytes(uint64(r.MedianThroughput)) + "/s"
		if r.ThroughputConfidence != nil {
			tputStr = fmt.Sprintf("%s/s [%s,%s]", humanize.Bytes(uint64(r.MedianThroughput)),
				humanize.Bytes(uint64(r.ThroughputConfidence.Lower)), humanize.Bytes(uint64(r.ThroughputConfidence.Upper)))
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\t%s\t%.0fus\t%.0fus\n",
			r.Workload.Pattern, r.Workload.WritePercent, humanize.Bytes(uint64(r.Workload.BlockSize)),
			r.Workload.QueueDepth, iopsStr, tputStr, r.MedianP50Micros, r.MedianP99Micros)
	}
	return tw.Flush()
}

// WriteJSON writes results as a single indented JSON array, for
// downstream tooling or archival (§6 report formats).
func WriteJSON(w io.Writer, results []model.WorkloadResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// WriteSessionSummary prints the run-wide latency rollup (every trial of
// every workload folded into one HdrHistogram) beneath the per-workload
// table, the one cross-workload figure the per-workload rows can't show.
func WriteSessionSummary(w io.Writer, r *sessionstats.Rollup) error {
	_, err := fmt.Fprintf(w, "session: n=%d mean=%.0fus p50=%dus p90=%dus p99=%dus\n",
		r.TotalCount(), r.Mean(), r.ValueAtQuantile(0.50), r.ValueAtQuantile(0.90), r.ValueAtQuantile(0.99))
	return err
}

// Summary renders a one-line digest of a single workload result, used
// for progress/finish log lines ("Optimization Complete" style from
// jolt's CLI).
func Summary(r model.WorkloadResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s write=%d%% block=%s qd=%d: %.0f IOPS, %s/s, p50=%.0fus p99=%.0fus",
		r.Workload.Pattern, r.Workload.WritePercent, humanize.Bytes(uint64(r.Workload.BlockSize)),
		r.Workload.QueueDepth, r.MedianIOPS, humanize.Bytes(uint64(r.MedianThroughput)), r.MedianP50Micros, r.MedianP99Micros)
	return b.String()
}
