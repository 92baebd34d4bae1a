// Package counterfact perturbs a retrieved chunk set and measures how much
// the answer depends on the retrieval that produced it. Generating the
// counterfactual answer is the backend's job; this package only builds the
// perturbed chunk set and compares the two answers afterwards.
package counterfact

import (
	"fmt"
	"math"
	"math/rand"

	"answer_dashboard/internal/source"
	"answer_dashboard/internal/textsim"
)

// Kind selects the perturbation applied to the chunk set.
type Kind string

const (
	RemoveTop    Kind = "remove_top"
	RemoveTop3   Kind = "remove_top_3"
	ReverseOrder Kind = "reverse_order"
	Random       Kind = "random"
	LexicalOnly  Kind = "lexical_only"
)

// Metrics compares an original answer with the one produced from the
// perturbed chunk set.
type Metrics struct {
	Kind                 Kind    `json:"counterfactual_type"`
	AnswerSimilarity     float64 `json:"answer_similarity"`
	ChunkOverlap         float64 `json:"chunk_overlap"`
	RetrievalDependence  float64 `json:"retrieval_dependence"`
	OriginalAnswerLength int     `json:"original_answer_length"`
	CounterfactLength    int     `json:"counterfactual_answer_length"`
	AnswerCollapsed      bool    `json:"answer_collapsed"`
}

// Apply returns the perturbed chunk set for the given kind. The input slice
// is never mutated. Random uses the shared math/rand source; use ApplyRand
// when the shuffle must be reproducible.
func Apply(kind Kind, chunks []source.Chunk) ([]source.Chunk, error) {
	return ApplyRand(kind, chunks, nil)
}

// ApplyRand is Apply with an injectable random source.
func ApplyRand(kind Kind, chunks []source.Chunk, rng *rand.Rand) ([]source.Chunk, error) {
	switch kind {
	case RemoveTop:
		if len(chunks) <= 1 {
			return []source.Chunk{}, nil
		}
		return clone(chunks[1:]), nil
	case RemoveTop3:
		if len(chunks) <= 3 {
			return []source.Chunk{}, nil
		}
		return clone(chunks[3:]), nil
	case ReverseOrder:
		out := clone(chunks)
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return out, nil
	case Random:
		out := clone(chunks)
		shuffle := rand.Shuffle
		if rng != nil {
			shuffle = rng.Shuffle
		}
		shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
		return out, nil
	case LexicalOnly:
		// Re-querying with lexical weights is the backend's job; the pure
		// counterpart is the unchanged set, compared under the same metrics.
		return clone(chunks), nil
	default:
		return nil, fmt.Errorf("unknown counterfactual kind: %q", kind)
	}
}

// Compare computes the dependence metrics between the original and
// counterfactual runs. High chunk overlap with a similar answer, or low
// overlap with a diverging answer, both read as strong retrieval dependence.
func Compare(kind Kind, originalAnswer, counterfactAnswer string, originalChunks, counterfactChunks []source.Chunk) Metrics {
	similarity := textsim.Similarity(originalAnswer, counterfactAnswer)

	origTexts := map[string]struct{}{}
	for _, c := range originalChunks {
		origTexts[c.Text] = struct{}{}
	}
	shared := 0
	cfTexts := map[string]struct{}{}
	for _, c := range counterfactChunks {
		if _, dup := cfTexts[c.Text]; dup {
			continue
		}
		cfTexts[c.Text] = struct{}{}
		if _, ok := origTexts[c.Text]; ok {
			shared++
		}
	}
	overlap := 0.0
	if len(origTexts) > 0 {
		overlap = float64(shared) / float64(len(origTexts))
	}

	dependence := similarity
	if overlap < 0.5 {
		dependence = 1 - similarity
	}

	return Metrics{
		Kind:                 kind,
		AnswerSimilarity:     round3(similarity),
		ChunkOverlap:         round3(overlap),
		RetrievalDependence:  round3(dependence),
		OriginalAnswerLength: len(originalAnswer),
		CounterfactLength:    len(counterfactAnswer),
		AnswerCollapsed:      float64(len(counterfactAnswer)) < float64(len(originalAnswer))*0.5,
	}
}

func clone(chunks []source.Chunk) []source.Chunk {
	out := make([]source.Chunk, len(chunks))
	copy(out, chunks)
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
