package counterfact

import (
	"math/rand"
	"testing"

	"answer_dashboard/internal/source"
)

func sampleChunks() []source.Chunk {
	return []source.Chunk{
		{DocName: "a.pdf", Text: "first chunk text", Score: 0.9},
		{DocName: "b.pdf", Text: "second chunk text", Score: 0.8},
		{DocName: "c.pdf", Text: "third chunk text", Score: 0.7},
		{DocName: "d.pdf", Text: "fourth chunk text", Score: 0.6},
	}
}

func TestApplyTransforms(t *testing.T) {
	chunks := sampleChunks()

	removed, err := Apply(RemoveTop, chunks)
	if err != nil || len(removed) != 3 || removed[0].DocName != "b.pdf" {
		t.Fatalf("remove_top: %v %+v", err, removed)
	}

	removed3, err := Apply(RemoveTop3, chunks)
	if err != nil || len(removed3) != 1 || removed3[0].DocName != "d.pdf" {
		t.Fatalf("remove_top_3: %v %+v", err, removed3)
	}

	reversed, err := Apply(ReverseOrder, chunks)
	if err != nil || reversed[0].DocName != "d.pdf" || reversed[3].DocName != "a.pdf" {
		t.Fatalf("reverse_order: %v %+v", err, reversed)
	}
	if chunks[0].DocName != "a.pdf" {
		t.Fatal("input slice must not be mutated")
	}

	shuffled, err := ApplyRand(Random, chunks, rand.New(rand.NewSource(1)))
	if err != nil || len(shuffled) != 4 {
		t.Fatalf("random: %v %+v", err, shuffled)
	}

	if _, err := Apply(Kind("bogus"), chunks); err == nil {
		t.Fatal("unknown kind must error")
	}
}

func TestApplyShortSets(t *testing.T) {
	one := sampleChunks()[:1]
	if got, _ := Apply(RemoveTop, one); len(got) != 0 {
		t.Fatalf("remove_top on single chunk should empty the set, got %+v", got)
	}
	if got, _ := Apply(RemoveTop3, sampleChunks()[:3]); len(got) != 0 {
		t.Fatalf("remove_top_3 on three chunks should empty the set, got %+v", got)
	}
}

func TestCompareDependence(t *testing.T) {
	orig := sampleChunks()
	cf, _ := Apply(RemoveTop, orig)

	// Same answer despite different chunks: low dependence via similarity.
	m := Compare(RemoveTop, "routing converges after updates propagate", "routing converges after updates propagate", orig, cf)
	if m.AnswerSimilarity != 1 {
		t.Fatalf("identical answers must be fully similar, got %v", m.AnswerSimilarity)
	}
	if m.ChunkOverlap != 0.75 {
		t.Fatalf("chunk overlap = %v, want 0.75", m.ChunkOverlap)
	}
	if m.RetrievalDependence != 1 {
		t.Fatalf("high overlap, identical answer: dependence should equal similarity, got %v", m.RetrievalDependence)
	}

	// Diverging answer with little shared context: dependence from drift.
	m2 := Compare(RemoveTop3, "routing converges after updates propagate everywhere", "cannot answer", orig, []source.Chunk{})
	if m2.ChunkOverlap != 0 {
		t.Fatalf("no shared chunks expected, got %v", m2.ChunkOverlap)
	}
	if m2.RetrievalDependence != round3(1-m2.AnswerSimilarity) {
		t.Fatalf("low overlap must invert similarity, got %+v", m2)
	}
	if !m2.AnswerCollapsed {
		t.Fatalf("short refusal should count as collapsed, got %+v", m2)
	}
}
