package insight

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SentenceScore is one backend-supplied importance judgement: a free-text
// sentence fragment and a 0..5 score. The fragment is not guaranteed to be an
// exact substring of any locally segmented sentence.
type SentenceScore struct {
	Sentence string `json:"sentence"`
	Score    int    `json:"score"`
}

// Signals is the structured insight payload for one QA turn. Any field may be
// empty; consumers must degrade rather than fail.
type Signals struct {
	Summary            string          `json:"summary"`
	KeyPoints          []string        `json:"key_points"`
	Entities           []string        `json:"entities"`
	SuggestedQuestions []string        `json:"suggested_questions"`
	Mindmap            string          `json:"mindmap"`
	ReadingDifficulty  string          `json:"reading_difficulty"`
	Sentiment          string          `json:"sentiment"`
	Keywords           []string        `json:"keywords"`
	Highlights         [][]string      `json:"highlights"`
	SentenceImportance []SentenceScore `json:"sentence_importance"`
}

// HasKeywords reports whether any non-blank keyword survived coercion.
func (s *Signals) HasKeywords() bool {
	if s == nil {
		return false
	}
	for _, k := range s.Keywords {
		if strings.TrimSpace(k) != "" {
			return true
		}
	}
	return false
}

// HasSentenceImportance reports whether any importance entry survived coercion.
func (s *Signals) HasSentenceImportance() bool {
	return s != nil && len(s.SentenceImportance) > 0
}

// Parse extracts the outermost JSON object from raw model output and coerces
// it into Signals. Model output routinely wraps the object in commentary or
// code fences, mistypes list members, and over-ranges scores; every field is
// coerced individually so one bad field never poisons the rest. A payload
// with no recoverable object yields empty Signals, not an error.
func Parse(raw []byte) *Signals {
	return Coerce(extractObject(string(raw)))
}

// Coerce builds Signals from an already-decoded JSON object.
func Coerce(data map[string]any) *Signals {
	s := &Signals{
		Summary:            coerceString(data["summary"]),
		KeyPoints:          coerceStringList(data["key_points"]),
		Entities:           coerceStringList(data["entities"]),
		SuggestedQuestions: coerceStringList(data["suggested_questions"]),
		ReadingDifficulty:  coerceString(data["reading_difficulty"]),
		Sentiment:          coerceString(data["sentiment"]),
		Keywords:           coerceStringList(data["keywords"]),
	}

	// mindmap arrives as a string or as a nested list; flatten either way.
	if list, ok := data["mindmap"].([]any); ok {
		s.Mindmap = strings.Join(coerceStringList(list), "\n")
	} else {
		s.Mindmap = coerceString(data["mindmap"])
	}

	if groups, ok := data["highlights"].([]any); ok {
		for _, g := range groups {
			s.Highlights = append(s.Highlights, coerceStringList(g))
		}
	}

	if entries, ok := data["sentence_importance"].([]any); ok {
		for _, e := range entries {
			obj, ok := e.(map[string]any)
			if !ok {
				continue
			}
			sentence := strings.TrimSpace(coerceString(obj["sentence"]))
			if sentence == "" {
				continue
			}
			score := coerceInt(obj["score"])
			if score < 0 {
				score = 0
			}
			if score > 5 {
				score = 5
			}
			s.SentenceImportance = append(s.SentenceImportance, SentenceScore{
				Sentence: sentence,
				Score:    score,
			})
		}
	}

	return s
}

// extractObject finds the outermost {...} in raw and decodes it, returning an
// empty map when nothing parseable is there.
func extractObject(raw string) map[string]any {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return map[string]any{}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &data); err != nil {
		return map[string]any{}
	}
	return data
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func coerceStringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case string:
			out = append(out, t)
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		case map[string]any:
			// Entities sometimes come back as {"name": ..., "type": ...}.
			name := strings.TrimSpace(coerceString(t["name"]))
			kind := strings.TrimSpace(coerceString(t["type"]))
			if kind == "" {
				kind = strings.TrimSpace(coerceString(t["category"]))
			}
			switch {
			case name != "" && kind != "":
				out = append(out, fmt.Sprintf("%s (%s)", name, kind))
			case name != "":
				out = append(out, name)
			default:
				out = append(out, fmt.Sprintf("%v", t))
			}
		default:
			out = append(out, fmt.Sprintf("%v", t))
		}
	}
	return out
}

func coerceInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
