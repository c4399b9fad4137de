// Package cache holds completed turn answers so repeated questions skip
// the full retrieve-grade-correct loop.
package cache

import (
	"strings"
	"time"

	"github.com/tripseek/tripseek/config"
	"github.com/tripseek/tripseek/metrics"
	"github.com/tripseek/tripseek/schema"
)

// Answer is one cached turn outcome.
type Answer struct {
	Response     string
	POIs         []schema.POI
	FallbackUsed bool
	CachedAt     time.Time
}

// AnswerCache wraps the LRU with answer typing and hit/miss metrics.
type AnswerCache struct {
	inner Cache
	ttl   time.Duration
}

func NewAnswerCache(cfg *config.CacheConfig) *AnswerCache {
	maxEntries, ttlSeconds := 0, 0
	if cfg != nil {
		maxEntries = cfg.MaxEntries
		ttlSeconds = cfg.TTLSeconds
	}
	ttl := time.Duration(ttlSeconds) * time.Second
	return &AnswerCache{inner: NewLRU(maxEntries, ttl), ttl: ttl}
}

// Key normalizes the turn parameters that determine an answer. Two
// turns that differ only in whitespace or case share an entry.
func Key(query string, mode schema.SearchMode, dest string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(query), " "))
	return norm + "|" + string(mode.Normalize()) + "|" + strings.ToLower(strings.TrimSpace(dest))
}

func (c *AnswerCache) Get(key string) (Answer, bool) {
	v, ok := c.inner.Get(key)
	if !ok {
		metrics.IncCache("miss")
		return Answer{}, false
	}
	ans, ok := v.(Answer)
	if !ok {
		metrics.IncCache("miss")
		return Answer{}, false
	}
	metrics.IncCache("hit")
	return ans, true
}

func (c *AnswerCache) Set(key string, ans Answer) {
	ans.CachedAt = time.Now()
	c.inner.Set(key, ans, c.ttl)
}

func (c *AnswerCache) Purge() { c.inner.Purge() }
