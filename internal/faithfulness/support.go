// Package faithfulness measures how well an answer is grounded in its
// retrieved evidence, sentence by sentence, using lexical overlap and
// verbatim phrase matches. No model calls: everything here is computable
// from the text alone.
package faithfulness

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"answer_dashboard/internal/source"
)

// A sentence counts as supported when at least this share of its tokens
// appears in a single chunk, or when a verbatim quote links the two.
const SupportOverlapThreshold = 0.3

// Quote extraction bounds, in words.
const (
	MinQuoteWords = 5
	MaxQuoteWords = 14
)

const (
	maxQuotesPerSentence = 2
	maxQuotesOverall     = 3
)

// ChunkSupport names one chunk that backs a sentence.
type ChunkSupport struct {
	ChunkID        int     `json:"chunk_id"`
	DocName        string  `json:"doc_name"`
	LexicalOverlap float64 `json:"lexical_overlap"`
	Rank           int     `json:"rank"`
}

// SentenceSupport is the per-sentence grounding record.
type SentenceSupport struct {
	Sentence         string         `json:"sentence"`
	SentenceID       int            `json:"sentence_id"`
	Supported        bool           `json:"supported"`
	SupportingChunks []ChunkSupport `json:"supporting_chunks"`
	Confidence       float64        `json:"confidence"`
	Quotes           []string       `json:"quotes"`
}

// Report aggregates sentence support into answer-level metrics.
// HallucinationRisk is simply the unsupported share of the answer.
type Report struct {
	SentenceSupport    []SentenceSupport `json:"sentence_support"`
	ExtractedQuotes    []string          `json:"extracted_quotes"`
	HallucinationRisk  float64           `json:"hallucination_risk"`
	EvidenceCoverage   float64           `json:"evidence_coverage"`
	CitationCoverage   float64           `json:"citation_coverage"`
	TotalSentences     int               `json:"total_sentences"`
	SupportedSentences int               `json:"supported_sentences"`
}

// Analyze scores every answer sentence against the retrieved chunks. An
// empty answer or empty chunk set degrades to zero coverage, never an error.
func Analyze(answer string, chunks []source.Chunk) Report {
	sentences := SplitSentences(answer)
	if len(sentences) == 0 {
		return Report{SentenceSupport: []SentenceSupport{}, ExtractedQuotes: []string{}}
	}

	chunkTokens := make([]map[string]struct{}, len(chunks))
	chunkLower := make([]string, len(chunks))
	for i, c := range chunks {
		chunkTokens[i] = tokenSet(c.Text)
		chunkLower[i] = strings.ToLower(c.Text)
	}

	report := Report{TotalSentences: len(sentences)}
	var quotes []string
	for idx, sentence := range sentences {
		ss := analyzeSentence(sentence, idx, chunks, chunkTokens, chunkLower)
		report.SentenceSupport = append(report.SentenceSupport, ss)
		if ss.Supported {
			report.SupportedSentences++
		}
		for _, q := range ss.Quotes {
			if !containsFold(quotes, q) {
				quotes = append(quotes, q)
			}
		}
	}

	coverage := float64(report.SupportedSentences) / float64(report.TotalSentences)
	report.EvidenceCoverage = round3(coverage)
	report.HallucinationRisk = round3(1 - coverage)
	report.CitationCoverage = math.Round(coverage*1000) / 10

	if len(quotes) > maxQuotesOverall {
		quotes = quotes[:maxQuotesOverall]
	}
	report.ExtractedQuotes = quotes
	return report
}

func analyzeSentence(sentence string, idx int, chunks []source.Chunk, chunkTokens []map[string]struct{}, chunkLower []string) SentenceSupport {
	sentTokens := tokenSet(sentence)

	ss := SentenceSupport{Sentence: sentence, SentenceID: idx}
	maxOverlap := 0.0
	for i := range chunks {
		overlap := 0.0
		if len(sentTokens) > 0 && len(chunkTokens[i]) > 0 {
			shared := 0
			for tok := range sentTokens {
				if _, ok := chunkTokens[i][tok]; ok {
					shared++
				}
			}
			overlap = float64(shared) / float64(len(sentTokens))
		}

		phraseQuotes := matchingPhrases(sentence, chunkLower[i])
		if overlap > SupportOverlapThreshold || len(phraseQuotes) > 0 {
			rank := chunks[i].Rank
			if rank == 0 {
				rank = i + 1
			}
			name := chunks[i].DocName
			if strings.TrimSpace(name) == "" {
				name = "Unknown"
			}
			ss.SupportingChunks = append(ss.SupportingChunks, ChunkSupport{
				ChunkID:        i,
				DocName:        name,
				LexicalOverlap: round3(overlap),
				Rank:           rank,
			})
			ss.Quotes = append(ss.Quotes, phraseQuotes...)
			if overlap > maxOverlap {
				maxOverlap = overlap
			}
		}
	}

	if len(ss.Quotes) > maxQuotesPerSentence {
		ss.Quotes = ss.Quotes[:maxQuotesPerSentence]
	}
	ss.Supported = maxOverlap > SupportOverlapThreshold || len(ss.Quotes) > 0
	ss.Confidence = round3(maxOverlap)
	return ss
}

// matchingPhrases returns n-grams of the sentence (MinQuoteWords and up)
// that appear verbatim, case-insensitively, in the chunk. The returned
// quotes keep the sentence's original casing.
func matchingPhrases(sentence, chunkLower string) []string {
	words := strings.Fields(sentence)
	if len(words) < MinQuoteWords {
		return nil
	}

	var quotes []string
	upper := len(words)
	if upper > MaxQuoteWords {
		upper = MaxQuoteWords
	}
	for n := MinQuoteWords; n <= upper; n++ {
		for i := 0; i+n <= len(words); i++ {
			phrase := strings.Join(words[i:i+n], " ")
			if strings.Contains(chunkLower, strings.ToLower(phrase)) && !containsFold(quotes, phrase) {
				quotes = append(quotes, phrase)
			}
		}
	}
	return quotes
}

var (
	htmlTag        = regexp.MustCompile(`<[^>]+>`)
	mdEmphasis     = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`)
	mdHeader       = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	tableSeparator = regexp.MustCompile(`\|[-:\s]+\|`)
	tableEdge      = regexp.MustCompile(`(?m)^\||\|$`)
	multiSpace     = regexp.MustCompile(`\s+`)
	bareNumber     = regexp.MustCompile(`^\d+\.?$`)
)

// CleanText strips HTML tags, markdown emphasis and headers, and table
// furniture, then collapses whitespace. Generated answers routinely carry
// all of these and they wreck token overlap if left in.
func CleanText(text string) string {
	text = htmlTag.ReplaceAllString(text, " ")
	text = mdEmphasis.ReplaceAllString(text, "$1")
	text = mdHeader.ReplaceAllString(text, "")
	text = tableSeparator.ReplaceAllString(text, " ")
	text = tableEdge.ReplaceAllString(text, "")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SplitSentences cleans the text, then cuts after `.`, `!` or `?` followed
// by whitespace, except when the period trails a digit (list numbering like
// "1." must not open a sentence boundary). Fragments under three characters,
// bare numbers, and bare punctuation are dropped: they are artifacts, not
// sentences.
func SplitSentences(text string) []string {
	cleaned := CleanText(text)
	if cleaned == "" {
		return nil
	}

	var out []string
	start := 0
	runes := []rune(cleaned)
	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if runes[i] == '.' && i > 0 && unicode.IsDigit(runes[i-1]) {
			continue
		}
		candidate := strings.TrimSpace(string(runes[start : i+1]))
		if keepSentence(candidate) {
			out = append(out, candidate)
		}
		// Skip the whitespace run before the next sentence.
		for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			i++
		}
		start = i + 1
	}
	if start < len(runes) {
		candidate := strings.TrimSpace(string(runes[start:]))
		if keepSentence(candidate) {
			out = append(out, candidate)
		}
	}
	return out
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func keepSentence(s string) bool {
	if len(s) < 3 {
		return false
	}
	if bareNumber.MatchString(s) {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

var wordPattern = regexp.MustCompile(`[^\w\s]`)

func tokenSet(text string) map[string]struct{} {
	stripped := wordPattern.ReplaceAllString(strings.ToLower(text), " ")
	out := map[string]struct{}{}
	for _, tok := range strings.Fields(stripped) {
		out[tok] = struct{}{}
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
