package insight

import "testing"

func TestParseToleratesCommentaryAroundObject(t *testing.T) {
	raw := []byte("Sure! Here is the JSON you asked for:\n```json\n" +
		`{"summary":"short","keywords":["routing","BGP"],"sentence_importance":[` +
		`{"sentence":"BGP selects the best path.","score":5},` +
		`{"sentence":"  ","score":4},` +
		`{"sentence":"Minor detail.","score":9}]}` +
		"\n```\nHope that helps!")

	s := Parse(raw)
	if s.Summary != "short" {
		t.Fatalf("summary = %q", s.Summary)
	}
	if !s.HasKeywords() {
		t.Fatal("expected keywords to survive")
	}
	if len(s.SentenceImportance) != 2 {
		t.Fatalf("expected blank sentence dropped, got %d entries", len(s.SentenceImportance))
	}
	if s.SentenceImportance[1].Score != 5 {
		t.Fatalf("expected score clamped to 5, got %d", s.SentenceImportance[1].Score)
	}
}

func TestParseGarbageYieldsEmptySignals(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{broken", "}{"} {
		s := Parse([]byte(raw))
		if s == nil {
			t.Fatal("Parse must never return nil")
		}
		if s.HasKeywords() || s.HasSentenceImportance() {
			t.Fatalf("expected empty signals for %q", raw)
		}
	}
}

func TestCoerceMixedTypeLists(t *testing.T) {
	s := Coerce(map[string]any{
		"entities": []any{
			"OSPF",
			map[string]any{"name": "Dijkstra", "type": "algorithm"},
			map[string]any{"name": "RIP"},
			float64(42),
		},
		"mindmap": []any{"root", "branch"},
	})

	want := []string{"OSPF", "Dijkstra (algorithm)", "RIP", "42"}
	if len(s.Entities) != len(want) {
		t.Fatalf("entities = %v", s.Entities)
	}
	for i, w := range want {
		if s.Entities[i] != w {
			t.Fatalf("entities[%d] = %q, want %q", i, s.Entities[i], w)
		}
	}
	if s.Mindmap != "root\nbranch" {
		t.Fatalf("mindmap = %q", s.Mindmap)
	}
}
