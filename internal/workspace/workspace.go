package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const BaseDirName = "AnswerLab"

// HistoryDBName is the sqlite file holding run history inside the data dir.
const HistoryDBName = "history.db"

type Settings struct {
	Theme         string `json:"theme"`
	DefaultModel  string `json:"default_model"`
	HighlightMode string `json:"highlight_mode"`
}

func EnsureDefault() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return EnsureAt(filepath.Join(home, BaseDirName))
}

func EnsureAt(base string) (string, error) {
	paths := []string{
		filepath.Join(base, "configs"),
		filepath.Join(base, "data"),
		filepath.Join(base, "sessions"),
	}

	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", p, err)
		}
	}

	settingsPath := filepath.Join(base, "configs", "settings.json")
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		defaults := Settings{
			Theme:         "light",
			DefaultModel:  "llama-3.1-8b-instant",
			HighlightMode: "ai",
		}
		raw, marshalErr := json.MarshalIndent(defaults, "", "  ")
		if marshalErr != nil {
			return "", fmt.Errorf("marshal settings: %w", marshalErr)
		}
		if writeErr := os.WriteFile(settingsPath, raw, 0o644); writeErr != nil {
			return "", fmt.Errorf("write settings: %w", writeErr)
		}
	}

	return base, nil
}

// HistoryDBPath returns the run history database location inside base.
func HistoryDBPath(base string) string {
	return filepath.Join(base, "data", HistoryDBName)
}
