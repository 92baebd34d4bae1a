package highlight

import (
	"regexp"
	"sort"
	"strings"
)

// Mode selects which strategy produces the rendered highlights for one call.
type Mode string

const (
	ModeAI        Mode = "ai"
	ModeKeywords  Mode = "keywords"
	ModeSentences Mode = "sentences"
	ModeOff       Mode = "off"
)

// Intensity tiers. Tier 0 renders as plain text.
const (
	TierNone   = 0
	TierFaint  = 1
	TierMedium = 2
	TierStrong = 3
)

// Span is one run of output text. Concatenating the Text of all spans, in
// order, reproduces the input exactly.
type Span struct {
	Text         string `json:"text"`
	Tier         int    `json:"tier"`
	KeywordMatch bool   `json:"is_keyword_match"`
}

// Passthrough reports whether spans carry no highlight at all, so the caller
// can render the original string untouched.
func Passthrough(spans []Span) bool {
	for _, s := range spans {
		if s.Tier != TierNone || s.KeywordMatch {
			return false
		}
	}
	return true
}

// Reconstruct joins the span texts back into the original input.
func Reconstruct(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Keywords marks every occurrence of the given phrases inside text. Matching
// is case-insensitive against the original-case text; matched substrings keep
// their original casing. Matches never overlap: longer phrases win over
// shorter phrases they contain, and for a given position the first match
// wins. With no usable phrases the whole text comes back as one plain span.
func Keywords(text string, phrases []string) []Span {
	return keywordSpans(text, phrases, TierNone, TierStrong)
}

// keywordSpans is the shared matcher: unmatched runs get baseTier, matched
// runs get matchTier with KeywordMatch set. Sentence-mode callers pass their
// sentence tier as both so nested keyword marks inherit the intensity.
func keywordSpans(text string, phrases []string, baseTier, matchTier int) []Span {
	pattern := phrasePattern(phrases)
	if pattern == nil {
		return []Span{{Text: text, Tier: baseTier}}
	}

	matches := pattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []Span{{Text: text, Tier: baseTier}}
	}

	spans := make([]Span, 0, len(matches)*2+1)
	cursor := 0
	for _, m := range matches {
		if m[0] > cursor {
			spans = append(spans, Span{Text: text[cursor:m[0]], Tier: baseTier})
		}
		spans = append(spans, Span{Text: text[m[0]:m[1]], Tier: matchTier, KeywordMatch: true})
		cursor = m[1]
	}
	if cursor < len(text) {
		spans = append(spans, Span{Text: text[cursor:], Tier: baseTier})
	}
	return spans
}

// phrasePattern lower-cases and trims the phrases, drops the ones too short
// to mean anything, and compiles a case-insensitive alternation. Longer
// phrases sort first so "machine learning" is preferred over "learning";
// that ordering is load-bearing, not cosmetic. Returns nil when no phrase
// survives.
func phrasePattern(phrases []string) *regexp.Regexp {
	cleaned := make([]string, 0, len(phrases))
	seen := map[string]struct{}{}
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if len(p) <= 2 {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		cleaned = append(cleaned, p)
	}
	if len(cleaned) == 0 {
		return nil
	}

	sort.SliceStable(cleaned, func(i, j int) bool {
		return len(cleaned[i]) > len(cleaned[j])
	})

	escaped := make([]string, len(cleaned))
	for i, p := range cleaned {
		escaped[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(escaped, "|") + `)`)
}
