// Package retrieval scores the retrieved chunk set itself: how redundant it
// is, how many documents it draws from, and how the retrieval methods that
// produced it balanced out.
package retrieval

import (
	"math"

	"answer_dashboard/internal/source"
	"answer_dashboard/internal/textsim"
)

// Chunk pairs above this Jaccard similarity are reported as redundant.
const RedundancyThreshold = 0.6

const maxRedundantPairs = 5

// RedundantPair records two chunks that largely repeat each other.
type RedundantPair struct {
	ChunkA     int     `json:"chunk_1"`
	ChunkB     int     `json:"chunk_2"`
	Similarity float64 `json:"similarity"`
	DocA       string  `json:"doc_1"`
	DocB       string  `json:"doc_2"`
}

// QualityReport summarizes a retrieved chunk set.
type QualityReport struct {
	ChunkRedundancy        float64         `json:"chunk_redundancy"`
	DiversityScore         float64         `json:"diversity_score"`
	DocumentCoverage       int             `json:"document_coverage"`
	UniqueDocuments        []string        `json:"unique_documents"`
	LexicalSemanticBalance float64         `json:"lexical_semantic_balance"`
	AvgChunkSimilarity     float64         `json:"avg_chunk_similarity"`
	RedundancyDetails      []RedundantPair `json:"redundancy_details"`
}

// AnalyzeQuality computes the quality report for a chunk set. An empty set
// reads as maximally diverse rather than failing.
func AnalyzeQuality(chunks []source.Chunk) QualityReport {
	if len(chunks) == 0 {
		return QualityReport{
			DiversityScore:         1,
			UniqueDocuments:        []string{},
			LexicalSemanticBalance: 0.5,
			RedundancyDetails:      []RedundantPair{},
		}
	}

	var pairSims []float64
	var redundant []RedundantPair
	for i := 0; i < len(chunks); i++ {
		for j := i + 1; j < len(chunks); j++ {
			sim := textsim.Similarity(chunks[i].Text, chunks[j].Text)
			pairSims = append(pairSims, sim)
			if sim > RedundancyThreshold {
				redundant = append(redundant, RedundantPair{
					ChunkA:     i,
					ChunkB:     j,
					Similarity: round3(sim),
					DocA:       docOrUnknown(chunks[i]),
					DocB:       docOrUnknown(chunks[j]),
				})
			}
		}
	}

	avg := 0.0
	if len(pairSims) > 0 {
		for _, s := range pairSims {
			avg += s
		}
		avg /= float64(len(pairSims))
	}

	if len(redundant) > maxRedundantPairs {
		redundant = redundant[:maxRedundantPairs]
	}
	if redundant == nil {
		redundant = []RedundantPair{}
	}

	docs := source.DocNames(chunks)
	return QualityReport{
		ChunkRedundancy:        round3(avg),
		DiversityScore:         round3(1 - avg),
		DocumentCoverage:       len(docs),
		UniqueDocuments:        docs,
		LexicalSemanticBalance: round3(lexicalSemanticBalance(chunks)),
		AvgChunkSimilarity:     round3(avg),
		RedundancyDetails:      redundant,
	}
}

// lexicalSemanticBalance compares average cosine scores against average
// hybrid scores when the backend supplied both. 0.5 is balanced; above it
// the semantic side dominated, below it the lexical side did. Without
// per-method scores there is nothing to compare and 0.5 is the honest
// default.
func lexicalSemanticBalance(chunks []source.Chunk) float64 {
	var cosine, hybrid []float64
	for _, c := range chunks {
		if v, ok := c.AllScores["cosine"]; ok {
			cosine = append(cosine, v)
		}
		if v, ok := c.AllScores["hybrid"]; ok {
			hybrid = append(hybrid, v)
		}
	}
	if len(cosine) == 0 || len(hybrid) == 0 {
		return 0.5
	}

	balance := 0.5 + (mean(cosine)-mean(hybrid))/2
	if balance < 0 {
		return 0
	}
	if balance > 1 {
		return 1
	}
	return balance
}

func mean(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func docOrUnknown(c source.Chunk) string {
	if c.DocName == "" {
		return "Unknown"
	}
	return c.DocName
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
