package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/diskbench/diskbench/internal/model"
)

func sampleResult() model.WorkloadResult {
	return model.WorkloadResult{
		Workload: model.WorkloadSpec{
			Pattern:      model.Random,
			WritePercent: 30,
			BlockSize:    4096,
			QueueDepth:   16,
		},
		MedianIOPS:       12345,
		MedianThroughput: 50 * 1024 * 1024,
		MedianP50Micros:  120,
		MedianP99Micros:  900,
		IOPSConfidence:   &model.ConfidenceInterval{Lower: 12000, Upper: 12700},
	}
}

func TestWriteTableContainsExpectedFields(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, []model.WorkloadResult{sampleResult()}); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "random") || !strings.Contains(out, "12345") {
		t.Fatalf("unexpected table output: %s", out)
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	results := []model.WorkloadResult{sampleResult()}
	if err := WriteJSON(&buf, results); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var decoded []model.WorkloadResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 1 || decoded[0].MedianIOPS != 12345 {
		t.Fatalf("unexpected round trip: %+v", decoded)
	}
}

func TestSummaryMentionsPatternAndIOPS(t *testing.T) {
	s := Summary(sampleResult())
	if !strings.Contains(s, "random") || !strings.Contains(s, "IOPS") {
		t.Fatalf("unexpected summary: %s", s)
	}
}
