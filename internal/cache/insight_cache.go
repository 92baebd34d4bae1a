// Package cache keeps coerced insight payloads in Redis so a re-rendered QA
// turn does not pay for another backend insight call.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"answer_dashboard/internal/insight"
)

// InsightCache stores insight signals keyed by the QA turn that produced
// them. A nil client disables the cache: every Get misses, every Set is a
// no-op, so callers never branch on availability.
type InsightCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewInsightCache(client *redis.Client, ttl time.Duration) *InsightCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &InsightCache{client: client, ttl: ttl}
}

// Get returns the cached signals for the turn, or (nil, false) on a miss.
func (c *InsightCache) Get(ctx context.Context, question, answer string, contextTexts []string) (*insight.Signals, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}

	data, err := c.client.Get(ctx, turnKey(question, answer, contextTexts)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var signals insight.Signals
	if err := json.Unmarshal([]byte(data), &signals); err != nil {
		// A corrupt entry is a miss, not a failure.
		return nil, false, nil
	}
	return &signals, true, nil
}

// Set stores the signals for the turn under the configured TTL.
func (c *InsightCache) Set(ctx context.Context, question, answer string, contextTexts []string, signals *insight.Signals) error {
	if c == nil || c.client == nil || signals == nil {
		return nil
	}

	raw, err := json.Marshal(signals)
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}
	if err := c.client.Set(ctx, turnKey(question, answer, contextTexts), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// turnKey hashes the full turn so two questions over different context never
// collide.
func turnKey(question, answer string, contextTexts []string) string {
	h := sha1.New()
	h.Write([]byte(question))
	h.Write([]byte{0})
	h.Write([]byte(answer))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(contextTexts, "\x00")))
	return "qadash:insight:" + hex.EncodeToString(h.Sum(nil))
}
