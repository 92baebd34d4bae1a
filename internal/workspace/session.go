package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Report is the render-ready summary written alongside each session.
type Report struct {
	Question           string   `json:"question"`
	DriftSimilarity    float64  `json:"drift_similarity"`
	DriftLabel         string   `json:"drift_label"`
	Verdict            string   `json:"verdict"`
	EvidenceCoverage   float64  `json:"evidence_coverage"`
	HallucinationRisk  float64  `json:"hallucination_risk"`
	HighlightedChunks  int      `json:"highlighted_chunks"`
	SupportingFindings []string `json:"supporting_findings,omitempty"`
	Analysis           any      `json:"analysis,omitempty"`
}

// SessionInfo locates one analyzed QA turn on disk.
type SessionInfo struct {
	ID          string
	Root        string
	PayloadPath string
	ReportPath  string
}

// CreateSession stores the raw analysis payload for a question and seeds an
// empty report next to it. Re-creating a session for the same question
// reuses its directory.
func CreateSession(workspaceRoot, question string, payload []byte) (*SessionInfo, error) {
	id := questionHash(question)
	sessionRoot := filepath.Join(workspaceRoot, "sessions", id)
	if err := os.MkdirAll(sessionRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	payloadPath := filepath.Join(sessionRoot, "payload.json")
	if len(payload) > 0 {
		if err := os.WriteFile(payloadPath, payload, 0o644); err != nil {
			return nil, fmt.Errorf("write payload: %w", err)
		}
	} else if _, err := os.Stat(payloadPath); os.IsNotExist(err) {
		if err := os.WriteFile(payloadPath, nil, 0o644); err != nil {
			return nil, fmt.Errorf("create empty payload: %w", err)
		}
	}

	reportPath := filepath.Join(sessionRoot, "report.json")
	if _, err := os.Stat(reportPath); os.IsNotExist(err) {
		report := Report{
			Question:           strings.TrimSpace(question),
			SupportingFindings: []string{},
		}
		raw, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal report: %w", err)
		}
		if err := os.WriteFile(reportPath, raw, 0o644); err != nil {
			return nil, fmt.Errorf("write report: %w", err)
		}
	}

	return &SessionInfo{
		ID:          id,
		Root:        sessionRoot,
		PayloadPath: payloadPath,
		ReportPath:  reportPath,
	}, nil
}

// SaveReport overwrites the session report.
func SaveReport(path string, report Report) error {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func questionHash(question string) string {
	trimmed := strings.TrimSpace(strings.ToLower(question))
	sum := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(sum[:])[:12]
}
