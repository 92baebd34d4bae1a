package critique

import (
	"math"

	"answer_dashboard/internal/textsim"
)

// Scores holds the per-round quality judgements the backend attaches to an
// answer. Pointers distinguish "not judged" from a genuine zero.
type Scores struct {
	Correctness       *float64 `json:"correctness,omitempty"`
	HallucinationRisk *float64 `json:"hallucination_risk,omitempty"`
	Completeness      *float64 `json:"completeness,omitempty"`
	Clarity           *float64 `json:"clarity,omitempty"`
}

// Round is one pass of a self-correction session. Callers supply rounds
// already sorted by ascending round number; this package does not re-sort.
type Round struct {
	Round  int    `json:"round"`
	Answer string `json:"answer"`
	Scores Scores `json:"scores"`
}

// Verdict is the qualitative reading of a whole critique session.
type Verdict string

const (
	VerdictImproved         Verdict = "improved correctness without materially increasing hallucination risk"
	VerdictRegressed        Verdict = "reduced correctness; reconsider the self-correction step or the prompt"
	VerdictUnchanged        Verdict = "no significant change in answer quality"
	VerdictImprovedRisky    Verdict = "improved correctness but increased hallucination risk"
	VerdictMixed            Verdict = "mixed impact: small, non-decisive changes in both metrics"
	VerdictInsufficientData Verdict = "insufficient score data to judge the critique session"
)

// Significance thresholds for the score deltas. Hallucination risk gets the
// tighter bound: small shifts there matter more than equally small shifts in
// correctness. Tuning constants with no derivable "right" value; override,
// do not re-derive.
const (
	DefaultCorrectnessThreshold   = 0.1
	DefaultHallucinationThreshold = 0.05
)

// DriftSummary describes how far the answer text moved between the first and
// last round.
type DriftSummary struct {
	Similarity float64            `json:"similarity"`
	Label      textsim.DriftLabel `json:"label"`
}

// VerdictSummary carries the verdict and the deltas behind it.
type VerdictSummary struct {
	Verdict            Verdict `json:"verdict"`
	DeltaCorrectness   float64 `json:"delta_correctness"`
	DeltaHallucination float64 `json:"delta_hallucination"`
}

// Summary is the render-ready result for one critique session. Both fields
// are nil when the session has fewer than two rounds.
type Summary struct {
	Drift   *DriftSummary   `json:"drift,omitempty"`
	Verdict *VerdictSummary `json:"verdict,omitempty"`
}

// Classifier classifies critique sessions using configurable significance
// thresholds. The zero value is not usable; construct with NewClassifier.
type Classifier struct {
	correctnessThreshold   float64
	hallucinationThreshold float64
}

// NewClassifier returns a classifier with the default thresholds. Non-positive
// overrides fall back to the defaults.
func NewClassifier(correctnessThreshold, hallucinationThreshold float64) *Classifier {
	if correctnessThreshold <= 0 {
		correctnessThreshold = DefaultCorrectnessThreshold
	}
	if hallucinationThreshold <= 0 {
		hallucinationThreshold = DefaultHallucinationThreshold
	}
	return &Classifier{
		correctnessThreshold:   correctnessThreshold,
		hallucinationThreshold: hallucinationThreshold,
	}
}

// SummarizeRounds compares the first and last round of a session regardless
// of how many rounds sit between them. Fewer than two rounds yields an empty
// summary rather than an error.
func SummarizeRounds(rounds []Round) Summary {
	return NewClassifier(0, 0).SummarizeRounds(rounds)
}

func (c *Classifier) SummarizeRounds(rounds []Round) Summary {
	if len(rounds) < 2 {
		return Summary{}
	}

	first := rounds[0]
	last := rounds[len(rounds)-1]

	similarity := textsim.Similarity(first.Answer, last.Answer)
	drift := &DriftSummary{
		Similarity: similarity,
		Label:      textsim.ClassifyDrift(similarity),
	}

	return Summary{
		Drift:   drift,
		Verdict: c.classify(first.Scores, last.Scores),
	}
}

// classify turns the score deltas into one of the verdict categories.
// Correctness is load-bearing: without it on both ends there is nothing to
// judge. A missing hallucination score just counts as zero risk.
func (c *Classifier) classify(first, last Scores) *VerdictSummary {
	if first.Correctness == nil || last.Correctness == nil {
		return &VerdictSummary{Verdict: VerdictInsufficientData}
	}

	dc := *last.Correctness - *first.Correctness
	dh := deref(last.HallucinationRisk) - deref(first.HallucinationRisk)

	out := &VerdictSummary{DeltaCorrectness: dc, DeltaHallucination: dh}
	switch {
	case dc > c.correctnessThreshold && dh <= c.hallucinationThreshold:
		out.Verdict = VerdictImproved
	case dc < -c.correctnessThreshold && dh >= 0:
		out.Verdict = VerdictRegressed
	case math.Abs(dc) <= c.correctnessThreshold && math.Abs(dh) <= c.hallucinationThreshold:
		out.Verdict = VerdictUnchanged
	case dc > c.correctnessThreshold && dh > c.hallucinationThreshold:
		out.Verdict = VerdictImprovedRisky
	default:
		out.Verdict = VerdictMixed
	}
	return out
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
