package db

import (
	"database/sql"
	"fmt"

	"answer_dashboard/internal/source"
)

// Run is one completed analysis, flattened for the history table.
type Run struct {
	ID                 int64
	Question           string
	Answer             string
	Method             string
	DriftSimilarity    float64
	DriftLabel         string
	Verdict            string
	DeltaCorrectness   float64
	DeltaHallucination float64
	EvidenceCoverage   float64
	HallucinationRisk  float64
	Chunks             []source.Chunk
	CreatedAt          string
}

// PersistRun appends a run and its chunk provenance to the history database.
func PersistRun(dbPath string, run Run) (int64, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs(question, answer, method, drift_similarity, drift_label, verdict,
			delta_correctness, delta_hallucination, evidence_coverage, hallucination_risk)
		 VALUES(?,?,?,?,?,?,?,?,?,?)`,
		run.Question,
		run.Answer,
		run.Method,
		run.DriftSimilarity,
		run.DriftLabel,
		run.Verdict,
		run.DeltaCorrectness,
		run.DeltaHallucination,
		run.EvidenceCoverage,
		run.HallucinationRisk,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run last insert id: %w", err)
	}

	for i, c := range run.Chunks {
		rank := c.Rank
		if rank == 0 {
			rank = i + 1
		}
		if _, err := tx.Exec(
			`INSERT INTO run_chunks(run_id, doc_name, score, chunk_rank) VALUES(?,?,?,?)`,
			runID, c.DocName, c.Score, rank,
		); err != nil {
			return 0, fmt.Errorf("insert run chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return runID, nil
}

// RecentRuns returns up to limit runs, newest first, without chunk details.
func RecentRuns(dbPath string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	conn, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.Query(
		`SELECT id, question, answer, method, drift_similarity, drift_label, verdict,
			delta_correctness, delta_hallucination, evidence_coverage, hallucination_risk, created_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.Question, &r.Answer, &r.Method, &r.DriftSimilarity, &r.DriftLabel,
			&r.Verdict, &r.DeltaCorrectness, &r.DeltaHallucination,
			&r.EvidenceCoverage, &r.HallucinationRisk, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func CountRows(dbPath, table string) (int, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	return countRowsConn(conn, table)
}

func countRowsConn(conn *sql.DB, table string) (int, error) {
	row := conn.QueryRow(`SELECT COUNT(*) FROM ` + table)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}
