package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"answer_dashboard/internal/critique"
)

// Config carries the runtime settings for the analysis tooling. The engine
// packages stay pure; this is for the CLI and the caller-side collaborators
// (run store, insight cache).
type Config struct {
	// DataDir overrides the workspace location; empty means the default
	// per-user directory.
	DataDir string
	// RedisURL enables the insight cache when set.
	RedisURL string
	// InsightTTL bounds how long cached insight payloads stay valid.
	InsightTTL time.Duration
	// CorrectnessThreshold and HallucinationThreshold override the verdict
	// significance cutoffs. Zero keeps the named defaults.
	CorrectnessThreshold   float64
	HallucinationThreshold float64
}

// Load reads .env if present, then the environment. Absent variables keep
// their defaults; a malformed number keeps the default rather than failing.
func Load() Config {
	godotenv.Load()

	return Config{
		DataDir:                os.Getenv("QADASH_DATA_DIR"),
		RedisURL:               os.Getenv("QADASH_REDIS_URL"),
		InsightTTL:             getenvDuration("QADASH_INSIGHT_TTL", 24*time.Hour),
		CorrectnessThreshold:   getenvFloat("QADASH_CORRECTNESS_THRESHOLD", critique.DefaultCorrectnessThreshold),
		HallucinationThreshold: getenvFloat("QADASH_HALLUCINATION_THRESHOLD", critique.DefaultHallucinationThreshold),
	}
}

func getenvFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getenvDuration(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
