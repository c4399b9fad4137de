package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tripseek/tripseek/config"
	"github.com/tripseek/tripseek/schema"
)

func TestKeyNormalization(t *testing.T) {
	a := Key("  Beach   Vacation ", schema.ModeBalanced, "Miami")
	b := Key("beach vacation", "balanced", "miami")
	assert.Equal(t, a, b)

	c := Key("beach vacation", schema.ModeSemantic, "miami")
	assert.NotEqual(t, a, c)

	// unknown mode keys the same as balanced
	d := Key("beach vacation", schema.SearchMode("fuzzy"), "miami")
	assert.Equal(t, a, d)
}

func TestAnswerRoundTrip(t *testing.T) {
	ac := NewAnswerCache(&config.CacheConfig{MaxEntries: 4, TTLSeconds: 300})
	key := Key("beach vacation", schema.ModeBalanced, "Miami")

	_, ok := ac.Get(key)
	assert.False(t, ok)

	ac.Set(key, Answer{Response: "Try South Beach.", POIs: []schema.POI{{ID: "1", Name: "South Beach"}}})
	got, ok := ac.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "Try South Beach.", got.Response)
	assert.Len(t, got.POIs, 1)
	assert.False(t, got.CachedAt.IsZero())
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU(2, time.Minute)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	_, _ = c.Get("a") // refresh a
	c.Set("c", 3, 0)  // evicts b

	_, ok := c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestTTLExpiry(t *testing.T) {
	c := NewLRU(4, time.Minute)
	c.Set("k", "v", time.Nanosecond)
	time.Sleep(2 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestPurge(t *testing.T) {
	ac := NewAnswerCache(nil)
	key := Key("q", schema.ModeBalanced, "")
	ac.Set(key, Answer{Response: "r"})
	ac.Purge()
	_, ok := ac.Get(key)
	assert.False(t, ok)
}
