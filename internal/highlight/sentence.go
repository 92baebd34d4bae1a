package highlight

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"answer_dashboard/internal/insight"
)

// Selection bounds for sentence-level highlighting: roughly 30% of the
// sentences, never fewer than one, never more than MaxHighlighted. Keeps the
// marking readable on both two-sentence answers and page-long chunks.
const (
	MaxHighlighted = 5
	KeepRatio      = 0.3
)

// Normalized-score cutoffs for the graded tiers in ai mode.
const (
	strongCutoff = 0.66
	mediumCutoff = 0.33
)

// stopWords is a fixed closed-class list used by the token-overlap fallback.
// A tuning parameter, not an algorithm: any consistent list of this kind
// works.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "have": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "with": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "from": {}, "they": {}, "them": {}, "their": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "been": {}, "being": {},
	"does": {}, "about": {}, "into": {}, "over": {}, "under": {}, "between": {},
	"how": {}, "why": {}, "who": {}, "whom": {},
}

var sentenceBoundary = regexp.MustCompile(`[.!?]+\s+`)

// Render produces the highlight spans for text under the requested mode,
// using whatever backend signals are available and degrading tier by tier
// when they are not. See scoreSentences for the fallback order.
func Render(text string, signals *insight.Signals, question string, mode Mode) []Span {
	switch mode {
	case ModeOff:
		return []Span{{Text: text, Tier: TierNone}}
	case ModeKeywords:
		return Keywords(text, phraseList(signals, question))
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return []Span{{Text: text, Tier: TierNone}}
	}

	scores, scored := scoreSentences(sentences, signals, question)
	if !scored {
		// Nothing distinguished any sentence; fall back to plain keyword
		// marking over the whole text.
		return Keywords(text, phraseList(signals, question))
	}

	keep := keepSet(scores)
	maxScore := 0.0
	for i, s := range scores {
		if _, ok := keep[i]; ok && s > maxScore {
			maxScore = s
		}
	}

	phrases := phraseList(signals, question)
	spans := make([]Span, 0, len(sentences))
	for i, sentence := range sentences {
		_, kept := keep[i]
		if !kept || scores[i] <= 0 {
			spans = append(spans, Span{Text: sentence, Tier: TierNone})
			continue
		}

		tier := TierMedium
		if mode == ModeAI {
			tier = gradeTier(scores[i] / maxScore)
			// Mark matched keywords inside the highlighted sentence.
			spans = append(spans, keywordSpans(sentence, phrases, tier, tier)...)
			continue
		}
		spans = append(spans, Span{Text: sentence, Tier: tier})
	}
	return spans
}

// splitSentences cuts immediately after a run of .!? followed by whitespace.
// Punctuation and the trailing whitespace stay attached to their sentence so
// the spans reassemble into the input byte for byte.
func splitSentences(text string) []string {
	if text == "" {
		return nil
	}
	boundaries := sentenceBoundary.FindAllStringIndex(text, -1)
	out := make([]string, 0, len(boundaries)+1)
	start := 0
	for _, b := range boundaries {
		out = append(out, text[start:b[1]])
		start = b[1]
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

// scoreSentences runs the importance cascade and reports whether any
// sentence ended up with a positive score.
//
// Tier 1: backend sentence_importance entries, matched against each sentence
// by bidirectional containment (segmentation rarely agrees exactly with the
// backend's fragments, so exact equality is the wrong test).
// Tier 2: overlap with stop-word-filtered keyword or question tokens.
func scoreSentences(sentences []string, signals *insight.Signals, question string) ([]float64, bool) {
	if signals.HasSentenceImportance() {
		scores := make([]float64, len(sentences))
		any := false
		for i, sentence := range sentences {
			candidate := strings.ToLower(strings.TrimSpace(sentence))
			if candidate == "" {
				continue
			}
			for _, entry := range signals.SentenceImportance {
				fragment := strings.ToLower(strings.TrimSpace(entry.Sentence))
				if fragment == "" {
					continue
				}
				if !strings.Contains(candidate, fragment) && !strings.Contains(fragment, candidate) {
					continue
				}
				if s := float64(entry.Score); s > scores[i] {
					scores[i] = s
				}
			}
			if scores[i] > 0 {
				any = true
			}
		}
		if any {
			return scores, true
		}
	}

	tokens := overlapTokens(signals, question)
	scores := make([]float64, len(sentences))
	any := false
	for i, sentence := range sentences {
		lower := strings.ToLower(sentence)
		count := 0
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				count++
			}
		}
		scores[i] = float64(count)
		if count > 0 {
			any = true
		}
	}
	return scores, any
}

// keepSet picks the indices of the top-scoring sentences, bounded by
// MaxHighlighted and KeepRatio. Ties keep document order.
func keepSet(scores []float64) map[int]struct{} {
	limit := int(math.Round(float64(len(scores)) * KeepRatio))
	if limit < 1 {
		limit = 1
	}
	if limit > MaxHighlighted {
		limit = MaxHighlighted
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	keep := make(map[int]struct{}, limit)
	for _, idx := range order[:min(limit, len(order))] {
		keep[idx] = struct{}{}
	}
	return keep
}

func gradeTier(norm float64) int {
	switch {
	case norm >= strongCutoff:
		return TierStrong
	case norm >= mediumCutoff:
		return TierMedium
	default:
		return TierFaint
	}
}

// phraseList is the shared keyword source: backend keywords when present,
// otherwise the raw question tokens.
func phraseList(signals *insight.Signals, question string) []string {
	if signals.HasKeywords() {
		return signals.Keywords
	}
	return strings.Fields(question)
}

// overlapTokens builds the tier-2 token set: keyword or question tokens,
// lower-cased, minus stop words and anything too short to be a signal.
func overlapTokens(signals *insight.Signals, question string) []string {
	var raw []string
	if signals.HasKeywords() {
		for _, k := range signals.Keywords {
			raw = append(raw, strings.Fields(k)...)
		}
	} else {
		raw = strings.Fields(question)
	}

	out := make([]string, 0, len(raw))
	seen := map[string]struct{}{}
	for _, tok := range raw {
		tok = strings.ToLower(strings.Trim(tok, ".,;:!?\"'()"))
		if len(tok) <= 2 {
			continue
		}
		if _, ok := stopWords[tok]; ok {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
