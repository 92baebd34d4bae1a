package textsim

import (
	"regexp"
	"strings"
)

// DriftLabel buckets an answer-to-answer similarity into a reader-facing band.
type DriftLabel string

const (
	DriftLow      DriftLabel = "low"
	DriftModerate DriftLabel = "moderate"
	DriftHigh     DriftLabel = "high"
)

// Band edges for ClassifyDrift. Inclusive on the lower bound of each band so
// the three bands partition [0,1] exactly.
const (
	DriftLowMin      = 0.8
	DriftModerateMin = 0.5
)

var tokenPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Similarity returns the Jaccard index over the normalized token sets of a
// and b. Two texts with no usable tokens are defined as identical (1); if
// exactly one side has no tokens the texts share nothing (0). Symmetric for
// all inputs, never fails.
func Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	union := len(setB)
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		} else {
			union++
		}
	}
	return float64(intersection) / float64(union)
}

// ClassifyDrift maps a similarity score onto a drift band. High similarity
// means the answers barely moved between rounds, so drift is low.
func ClassifyDrift(similarity float64) DriftLabel {
	switch {
	case similarity >= DriftLowMin:
		return DriftLow
	case similarity >= DriftModerateMin:
		return DriftModerate
	default:
		return DriftHigh
	}
}

// tokenSet lower-cases, splits on runs of non-alphanumerics, and drops tokens
// of length <= 2. Duplicates collapse: similarity is a set operation.
func tokenSet(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, tok := range tokenPattern.Split(strings.ToLower(text), -1) {
		if len(tok) <= 2 {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}
