package eval

import (
	"math"
	"testing"
)

func TestSummarizeEmptyBatch(t *testing.T) {
	got := Summarize(nil)
	if got.TotalRuns != 0 || got.Coverage.Count != 0 {
		t.Fatalf("empty batch should be all zeros, got %+v", got)
	}
}

func TestSummarizeGroupsByMethod(t *testing.T) {
	records := []RunRecord{
		{Question: "q1", Method: "cosine", EvidenceCoverage: 0.8, HallucinationRisk: 0.2},
		{Question: "q2", Method: "cosine", EvidenceCoverage: 0.6, HallucinationRisk: 0.4},
		{Question: "q1", Method: "hybrid", EvidenceCoverage: 0.9, HallucinationRisk: 0.1},
		{Question: "q2", Method: "hybrid", Failed: true},
	}

	got := Summarize(records)
	if got.TotalRuns != 4 || got.FailedRuns != 1 {
		t.Fatalf("counts wrong: %+v", got)
	}
	if got.Coverage.Count != 3 {
		t.Fatalf("failed runs must not enter metrics, got count %d", got.Coverage.Count)
	}
	if math.Abs(got.Coverage.Mean-(0.8+0.6+0.9)/3) > 1e-9 {
		t.Fatalf("coverage mean = %v", got.Coverage.Mean)
	}

	cosine := got.ByMethod["cosine"]
	if cosine.Runs != 2 || cosine.Failed != 0 {
		t.Fatalf("cosine group wrong: %+v", cosine)
	}
	if cosine.Coverage.Min != 0.6 || cosine.Coverage.Max != 0.8 {
		t.Fatalf("cosine min/max wrong: %+v", cosine.Coverage)
	}

	hybrid := got.ByMethod["hybrid"]
	if hybrid.Runs != 2 || hybrid.Failed != 1 || hybrid.Coverage.Count != 1 {
		t.Fatalf("hybrid group wrong: %+v", hybrid)
	}
}
