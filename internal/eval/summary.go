// Package eval aggregates completed analysis runs into batch-level summary
// statistics, e.g. for comparing similarity methods across a question set.
package eval

import "math"

// RunRecord is one completed (or failed) analysis run.
type RunRecord struct {
	Question          string  `json:"question"`
	Method            string  `json:"method"`
	Failed            bool    `json:"failed"`
	EvidenceCoverage  float64 `json:"evidence_coverage"`
	HallucinationRisk float64 `json:"hallucination_risk"`
}

// MetricStats holds mean/min/max over the successful runs.
type MetricStats struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// MethodSummary breaks the batch down per similarity method.
type MethodSummary struct {
	Runs          int         `json:"runs"`
	Failed        int         `json:"failed"`
	Coverage      MetricStats `json:"evidence_coverage"`
	Hallucination MetricStats `json:"hallucination_risk"`
}

// Summary is the whole-batch aggregate.
type Summary struct {
	TotalRuns     int                      `json:"total_runs"`
	FailedRuns    int                      `json:"failed_runs"`
	Coverage      MetricStats              `json:"evidence_coverage"`
	Hallucination MetricStats              `json:"hallucination_risk"`
	ByMethod      map[string]MethodSummary `json:"by_method"`
}

// Summarize aggregates the batch. Failed runs count toward totals but never
// toward metric statistics.
func Summarize(records []RunRecord) Summary {
	out := Summary{ByMethod: map[string]MethodSummary{}}

	var coverage, risk []float64
	perMethod := map[string]*methodAcc{}
	for _, r := range records {
		out.TotalRuns++
		acc, ok := perMethod[r.Method]
		if !ok {
			acc = &methodAcc{}
			perMethod[r.Method] = acc
		}
		acc.runs++

		if r.Failed {
			out.FailedRuns++
			acc.failed++
			continue
		}
		coverage = append(coverage, r.EvidenceCoverage)
		risk = append(risk, r.HallucinationRisk)
		acc.coverage = append(acc.coverage, r.EvidenceCoverage)
		acc.risk = append(acc.risk, r.HallucinationRisk)
	}

	out.Coverage = stats(coverage)
	out.Hallucination = stats(risk)
	for method, acc := range perMethod {
		out.ByMethod[method] = MethodSummary{
			Runs:          acc.runs,
			Failed:        acc.failed,
			Coverage:      stats(acc.coverage),
			Hallucination: stats(acc.risk),
		}
	}
	return out
}

type methodAcc struct {
	runs, failed   int
	coverage, risk []float64
}

func stats(values []float64) MetricStats {
	if len(values) == 0 {
		return MetricStats{}
	}
	out := MetricStats{
		Min:   math.Inf(1),
		Max:   math.Inf(-1),
		Count: len(values),
	}
	total := 0.0
	for _, v := range values {
		total += v
		if v < out.Min {
			out.Min = v
		}
		if v > out.Max {
			out.Max = v
		}
	}
	out.Mean = total / float64(len(values))
	return out
}
