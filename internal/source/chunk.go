package source

import "strings"

// Chunk is one piece of retrieved context as the backend hands it over:
// the text, the document it came from, and the retrieval score it got.
type Chunk struct {
	DocName string  `json:"doc_name"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
	// Rank is 1-based retrieval rank; 0 means the backend did not supply one.
	Rank int `json:"rank,omitempty"`
	// AllScores carries the per-method retrieval scores when the backend ran
	// more than one similarity method (e.g. "cosine", "hybrid").
	AllScores map[string]float64 `json:"all_scores,omitempty"`
}

// Texts returns the chunk texts in order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// DocNames returns the distinct document names in first-seen order.
func DocNames(chunks []Chunk) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		name := strings.TrimSpace(c.DocName)
		if name == "" {
			name = "Unknown"
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
