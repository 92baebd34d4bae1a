package retrieval

import (
	"testing"

	"answer_dashboard/internal/source"
)

func TestAnalyzeQualityEmptySet(t *testing.T) {
	got := AnalyzeQuality(nil)
	if got.DiversityScore != 1 || got.DocumentCoverage != 0 {
		t.Fatalf("empty set should read as fully diverse, got %+v", got)
	}
	if got.LexicalSemanticBalance != 0.5 {
		t.Fatalf("balance must default to 0.5, got %v", got.LexicalSemanticBalance)
	}
}

func TestAnalyzeQualityFlagsRedundantPairs(t *testing.T) {
	repeated := "Congestion control throttles senders when the network signals packet loss along the path."
	chunks := []source.Chunk{
		{DocName: "tcp.pdf", Text: repeated},
		{DocName: "tcp-copy.pdf", Text: repeated},
		{DocName: "dns.pdf", Text: "Resolvers cache records according to their time to live values."},
	}

	got := AnalyzeQuality(chunks)
	if len(got.RedundancyDetails) != 1 {
		t.Fatalf("expected exactly the duplicated pair flagged, got %+v", got.RedundancyDetails)
	}
	pair := got.RedundancyDetails[0]
	if pair.ChunkA != 0 || pair.ChunkB != 1 || pair.Similarity != 1 {
		t.Fatalf("unexpected redundant pair %+v", pair)
	}
	if got.DocumentCoverage != 3 {
		t.Fatalf("expected 3 documents, got %d", got.DocumentCoverage)
	}
	if got.DiversityScore >= 1 {
		t.Fatalf("duplicates must lower diversity, got %v", got.DiversityScore)
	}
}

func TestLexicalSemanticBalance(t *testing.T) {
	chunks := []source.Chunk{
		{Text: "a", AllScores: map[string]float64{"cosine": 0.9, "hybrid": 0.5}},
		{Text: "b", AllScores: map[string]float64{"cosine": 0.7, "hybrid": 0.5}},
	}
	got := AnalyzeQuality(chunks)
	if got.LexicalSemanticBalance <= 0.5 {
		t.Fatalf("cosine-dominant scores should tilt semantic, got %v", got.LexicalSemanticBalance)
	}

	noScores := AnalyzeQuality([]source.Chunk{{Text: "a"}, {Text: "b"}})
	if noScores.LexicalSemanticBalance != 0.5 {
		t.Fatalf("missing method scores must default to 0.5, got %v", noScores.LexicalSemanticBalance)
	}
}
