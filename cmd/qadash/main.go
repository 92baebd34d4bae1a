package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"answer_dashboard/internal/cache"
	"answer_dashboard/internal/config"
	"answer_dashboard/internal/counterfact"
	"answer_dashboard/internal/critique"
	"answer_dashboard/internal/db"
	"answer_dashboard/internal/eval"
	"answer_dashboard/internal/faithfulness"
	"answer_dashboard/internal/highlight"
	"answer_dashboard/internal/insight"
	"answer_dashboard/internal/pipeline"
	"answer_dashboard/internal/retrieval"
	"answer_dashboard/internal/source"
	"answer_dashboard/internal/workspace"
)

// Payload is the analysis input as exported by the QA client: one question,
// the backend's answer and retrieval output, and optionally the raw insight
// JSON and the critique rounds.
type Payload struct {
	Question    string           `json:"question"`
	Answer      string           `json:"answer"`
	Method      string           `json:"method"`
	InsightsRaw json.RawMessage  `json:"insights_raw,omitempty"`
	Chunks      []source.Chunk   `json:"chunks"`
	Rounds      []critique.Round `json:"rounds,omitempty"`
}

func main() {
	payloadPath := flag.String("payload", "", "path to the analysis payload JSON")
	modeFlag := flag.String("mode", string(highlight.ModeAI), "highlight mode: ai, keywords, sentences, off")
	workers := flag.Int("workers", 0, "concurrent chunk renders (0 = NumCPU)")
	cfKind := flag.String("counterfactual", "", "optional chunk perturbation: remove_top, remove_top_3, reverse_order, random, lexical_only")
	flag.Parse()

	if *payloadPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := run(cfg, *payloadPath, highlight.Mode(*modeFlag), *workers, *cfKind); err != nil {
		log.Fatalf("analysis failed: %v", err)
	}
}

func run(cfg config.Config, payloadPath string, mode highlight.Mode, workers int, cfKind string) error {
	raw, err := os.ReadFile(payloadPath)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	root := cfg.DataDir
	if root == "" {
		root, err = workspace.EnsureDefault()
	} else {
		root, err = workspace.EnsureAt(root)
	}
	if err != nil {
		return fmt.Errorf("workspace initialization failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	signals := loadSignals(ctx, cfg, payload)

	spans := pipeline.RenderAll(payload.Chunks, signals, payload.Question, mode, workers)
	highlighted := 0
	for _, chunkSpans := range spans {
		if !highlight.Passthrough(chunkSpans) {
			highlighted++
		}
	}

	support := faithfulness.Analyze(payload.Answer, payload.Chunks)
	quality := retrieval.AnalyzeQuality(payload.Chunks)
	summary := critique.NewClassifier(cfg.CorrectnessThreshold, cfg.HallucinationThreshold).
		SummarizeRounds(payload.Rounds)

	fmt.Printf("Question: %s\n", payload.Question)
	fmt.Printf("Chunks: %d retrieved from %d documents, %d highlighted (%s mode)\n",
		len(payload.Chunks), quality.DocumentCoverage, highlighted, mode)
	fmt.Printf("Evidence coverage: %.0f%%  hallucination risk: %.3f  redundancy: %.3f\n",
		support.CitationCoverage, support.HallucinationRisk, quality.ChunkRedundancy)

	report := workspace.Report{
		Question:          payload.Question,
		EvidenceCoverage:  support.EvidenceCoverage,
		HallucinationRisk: support.HallucinationRisk,
		HighlightedChunks: highlighted,
	}
	report.SupportingFindings = append(report.SupportingFindings, support.ExtractedQuotes...)

	record := db.Run{
		Question:          payload.Question,
		Answer:            payload.Answer,
		Method:            payload.Method,
		EvidenceCoverage:  support.EvidenceCoverage,
		HallucinationRisk: support.HallucinationRisk,
		Chunks:            payload.Chunks,
	}
	if summary.Drift != nil {
		fmt.Printf("Answer drift across rounds: %.3f (%s)\n", summary.Drift.Similarity, summary.Drift.Label)
		report.DriftSimilarity = summary.Drift.Similarity
		report.DriftLabel = string(summary.Drift.Label)
		record.DriftSimilarity = summary.Drift.Similarity
		record.DriftLabel = string(summary.Drift.Label)
	}
	if summary.Verdict != nil {
		fmt.Printf("Verdict: %s (dc=%+.3f dh=%+.3f)\n",
			summary.Verdict.Verdict, summary.Verdict.DeltaCorrectness, summary.Verdict.DeltaHallucination)
		report.Verdict = string(summary.Verdict.Verdict)
		record.Verdict = string(summary.Verdict.Verdict)
		record.DeltaCorrectness = summary.Verdict.DeltaCorrectness
		record.DeltaHallucination = summary.Verdict.DeltaHallucination
	}

	if cfKind != "" {
		if err := runCounterfactual(counterfact.Kind(cfKind), payload); err != nil {
			return err
		}
	}

	session, err := workspace.CreateSession(root, payload.Question, raw)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if err := workspace.SaveReport(session.ReportPath, report); err != nil {
		return err
	}

	runID, err := db.PersistRun(workspace.HistoryDBPath(root), record)
	if err != nil {
		return fmt.Errorf("persist run: %w", err)
	}
	fmt.Printf("Stored run %d in %s\n", runID, workspace.HistoryDBPath(root))

	printHistorySummary(workspace.HistoryDBPath(root))
	return nil
}

// printHistorySummary aggregates the stored runs so repeated sessions show
// how the methods compare over time.
func printHistorySummary(dbPath string) {
	runs, err := db.RecentRuns(dbPath, 50)
	if err != nil {
		log.Printf("history summary unavailable: %v", err)
		return
	}

	records := make([]eval.RunRecord, 0, len(runs))
	for _, r := range runs {
		records = append(records, eval.RunRecord{
			Question:          r.Question,
			Method:            r.Method,
			EvidenceCoverage:  r.EvidenceCoverage,
			HallucinationRisk: r.HallucinationRisk,
		})
	}
	summary := eval.Summarize(records)
	fmt.Printf("History: %d runs, mean evidence coverage %.3f\n", summary.TotalRuns, summary.Coverage.Mean)
	for method, stats := range summary.ByMethod {
		if method == "" {
			continue
		}
		fmt.Printf("  %-10s runs=%d coverage mean=%.3f min=%.3f max=%.3f\n",
			method, stats.Runs, stats.Coverage.Mean, stats.Coverage.Min, stats.Coverage.Max)
	}
}

// loadSignals serves insight signals from the cache when Redis is
// configured, parsing and back-filling on a miss. Without Redis it just
// parses.
func loadSignals(ctx context.Context, cfg config.Config, payload Payload) *insight.Signals {
	if len(payload.InsightsRaw) == 0 {
		return nil
	}

	var insightCache *cache.InsightCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("invalid redis url, running without cache: %v", err)
		} else {
			insightCache = cache.NewInsightCache(redis.NewClient(opts), cfg.InsightTTL)
		}
	}

	contextTexts := source.Texts(payload.Chunks)
	if cached, hit, err := insightCache.Get(ctx, payload.Question, payload.Answer, contextTexts); err != nil {
		log.Printf("insight cache read failed: %v", err)
	} else if hit {
		return cached
	}

	signals := insight.Parse(payload.InsightsRaw)
	if err := insightCache.Set(ctx, payload.Question, payload.Answer, contextTexts, signals); err != nil {
		log.Printf("insight cache write failed: %v", err)
	}
	return signals
}

// runCounterfactual reports how the chunk set changes under a perturbation.
// The counterfactual answer itself would come from the backend; here the
// original answer stands in, which still surfaces the chunk overlap numbers.
func runCounterfactual(kind counterfact.Kind, payload Payload) error {
	perturbed, err := counterfact.Apply(kind, payload.Chunks)
	if err != nil {
		return err
	}
	m := counterfact.Compare(kind, payload.Answer, payload.Answer, payload.Chunks, perturbed)
	fmt.Printf("Counterfactual %s: %d -> %d chunks, overlap %.3f, retrieval dependence %.3f\n",
		kind, len(payload.Chunks), len(perturbed), m.ChunkOverlap, m.RetrievalDependence)
	return nil
}
