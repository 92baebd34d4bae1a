package highlight

import (
	"fmt"
	"strings"
	"testing"

	"answer_dashboard/internal/insight"
)

func TestRenderOffIsPassthrough(t *testing.T) {
	text := "Anything at all. Even multiple sentences!"
	spans := Render(text, nil, "ignored", ModeOff)
	if len(spans) != 1 || spans[0].Text != text || spans[0].Tier != TierNone {
		t.Fatalf("off mode must not touch the text, got %+v", spans)
	}
}

func TestRenderReconstructionAllModes(t *testing.T) {
	text := "Routing tables converge slowly. Link failures trigger updates! " +
		"Does the protocol flood the network? The answer depends on the topology."
	signals := &insight.Signals{
		Keywords: []string{"routing", "topology"},
		SentenceImportance: []insight.SentenceScore{
			{Sentence: "Link failures trigger updates", Score: 5},
		},
	}
	for _, mode := range []Mode{ModeOff, ModeKeywords, ModeSentences, ModeAI} {
		spans := Render(text, signals, "how does routing converge", mode)
		if got := Reconstruct(spans); got != text {
			t.Fatalf("mode %s lost characters:\n got %q\nwant %q", mode, got, text)
		}
	}
}

func TestRenderUsesBackendImportanceFirst(t *testing.T) {
	text := "First sentence here. Second sentence matters most. Third sentence here."
	signals := &insight.Signals{
		SentenceImportance: []insight.SentenceScore{
			// Fragment, not an exact sentence: containment must still match.
			{Sentence: "second sentence matters", Score: 5},
		},
	}

	spans := Render(text, signals, "", ModeAI)
	var highlighted []Span
	for _, s := range spans {
		if s.Tier > TierNone {
			highlighted = append(highlighted, s)
		}
	}
	if len(highlighted) != 1 {
		t.Fatalf("expected exactly one highlighted sentence, got %+v", spans)
	}
	if !strings.Contains(highlighted[0].Text, "Second sentence") {
		t.Fatalf("wrong sentence highlighted: %+v", highlighted[0])
	}
	if highlighted[0].Tier != TierStrong {
		t.Fatalf("top scorer should render at the strongest tier, got %d", highlighted[0].Tier)
	}
}

func TestRenderTokenOverlapFallback(t *testing.T) {
	// No sentence_importance: tier 2 scores by question-token overlap.
	text := "The firewall drops packets. The cat sat on the mat. Packets route through the firewall gateway."
	spans := Render(text, nil, "why does the firewall drop packets", ModeSentences)

	for _, s := range spans {
		if strings.Contains(s.Text, "cat sat") && s.Tier != TierNone {
			t.Fatalf("irrelevant sentence highlighted: %+v", s)
		}
	}
	found := false
	for _, s := range spans {
		if s.Tier == TierMedium {
			found = true
		}
		if s.Tier != TierNone && s.Tier != TierMedium {
			t.Fatalf("sentences mode must use a single fixed tier, got %+v", s)
		}
	}
	if !found {
		t.Fatalf("expected at least one highlighted sentence, got %+v", spans)
	}
}

func TestRenderKeywordFallbackWhenNothingScores(t *testing.T) {
	// The only keyword splits into tokens too short for tier-2 overlap, so
	// both scoring tiers come up empty and the whole text falls through to
	// phrase-level keyword matching.
	text := "Alpha beta gamma. It is delta epsilon."
	spans := Render(text, &insight.Signals{Keywords: []string{"it is"}}, "", ModeAI)

	if Reconstruct(spans) != text {
		t.Fatalf("reconstruction broken: %q", Reconstruct(spans))
	}
	matched := false
	for _, s := range spans {
		if s.KeywordMatch && strings.EqualFold(s.Text, "it is") {
			matched = true
		}
	}
	if !matched {
		t.Fatalf("expected keyword fallback to mark the phrase, got %+v", spans)
	}
}

func TestRenderDensityBounds(t *testing.T) {
	var b strings.Builder
	var importance []insight.SentenceScore
	for i := 0; i < 20; i++ {
		sentence := fmt.Sprintf("Topic item number %d is documented here.", i)
		b.WriteString(sentence)
		if i < 19 {
			b.WriteString(" ")
		}
		importance = append(importance, insight.SentenceScore{Sentence: sentence, Score: 1 + i%5})
	}
	signals := &insight.Signals{SentenceImportance: importance}

	spans := Render(b.String(), signals, "", ModeAI)
	count := 0
	for _, s := range spans {
		if s.Tier > TierNone && strings.Contains(s.Text, "documented here") {
			count++
		}
	}
	if count == 0 || count > MaxHighlighted {
		t.Fatalf("20-sentence text must keep between 1 and %d sentences, got %d", MaxHighlighted, count)
	}

	// Two sentences with positive scores keep exactly one.
	short := "One thing happened. Another thing happened."
	shortSpans := Render(short, &insight.Signals{SentenceImportance: []insight.SentenceScore{
		{Sentence: "One thing happened", Score: 3},
		{Sentence: "Another thing happened", Score: 2},
	}}, "", ModeSentences)
	kept := 0
	for _, s := range shortSpans {
		if s.Tier > TierNone {
			kept++
		}
	}
	if kept != 1 {
		t.Fatalf("2-sentence text must keep exactly 1, got %d (%+v)", kept, shortSpans)
	}
}

func TestRenderNestedKeywordMarks(t *testing.T) {
	text := "The gateway filters traffic. Nothing else here."
	signals := &insight.Signals{
		Keywords: []string{"gateway"},
		SentenceImportance: []insight.SentenceScore{
			{Sentence: "The gateway filters traffic", Score: 4},
		},
	}

	spans := Render(text, signals, "", ModeAI)
	if Reconstruct(spans) != text {
		t.Fatalf("reconstruction broken: %q", Reconstruct(spans))
	}
	var inner *Span
	for i := range spans {
		if spans[i].KeywordMatch {
			inner = &spans[i]
		}
	}
	if inner == nil || inner.Text != "gateway" {
		t.Fatalf("expected inner keyword mark on gateway, got %+v", spans)
	}
	if inner.Tier == TierNone {
		t.Fatalf("inner mark must stay inside a highlighted sentence, got %+v", inner)
	}
}

func TestSplitSentencesKeepsWhitespace(t *testing.T) {
	text := "One.  Two!\nThree? Four"
	got := splitSentences(text)
	want := []string{"One.  ", "Two!\n", "Three? ", "Four"}
	if len(got) != len(want) {
		t.Fatalf("got %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}
