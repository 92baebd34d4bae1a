package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const SchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY,
    question TEXT,
    answer TEXT,
    method TEXT,
    drift_similarity REAL,
    drift_label TEXT,
    verdict TEXT,
    delta_correctness REAL,
    delta_hallucination REAL,
    evidence_coverage REAL,
    hallucination_risk REAL,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_chunks (
    id INTEGER PRIMARY KEY,
    run_id INTEGER,
    doc_name TEXT,
    score REAL,
    chunk_rank INTEGER
);
`

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(SchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
