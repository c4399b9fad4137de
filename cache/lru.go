package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is the storage contract behind AnswerCache. A per-entry ttl of
// zero falls back to the cache-wide default.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Purge()
}

// lruEntry lives as the value of a list element; the recency list and
// the key index therefore share one allocation per answer.
type lruEntry struct {
	key     string
	value   any
	expires time.Time
}

// answerLRU bounds memory for cached turn answers. Answer payloads are
// small, so a modest capacity covers the repeated-question traffic.
// Expired entries are dropped lazily on lookup rather than by a sweeper
// goroutine: stale answers about a destination cost nothing until
// someone asks about it again.
type answerLRU struct {
	mu         sync.Mutex
	capacity   int
	defaultTTL time.Duration
	entries    map[string]*list.Element
	recency    *list.List // front = most recently used
}

// NewLRU builds a bounded cache with a default TTL. Non-positive
// arguments take conservative defaults sized for a single engine
// instance.
func NewLRU(capacity int, ttl time.Duration) Cache {
	if capacity <= 0 {
		capacity = 256
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &answerLRU{
		capacity:   capacity,
		defaultTTL: ttl,
		entries:    make(map[string]*list.Element, capacity),
		recency:    list.New(),
	}
}

func (c *answerLRU) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	ent := elem.Value.(*lruEntry)
	if !ent.expires.IsZero() && !time.Now().Before(ent.expires) {
		c.drop(elem)
		return nil, false
	}
	c.recency.MoveToFront(elem)
	return ent.value, true
}

func (c *answerLRU) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.expiry(ttl)
	if elem, ok := c.entries[key]; ok {
		ent := elem.Value.(*lruEntry)
		ent.value = value
		ent.expires = expires
		c.recency.MoveToFront(elem)
		return
	}

	if c.recency.Len() >= c.capacity {
		if oldest := c.recency.Back(); oldest != nil {
			c.drop(oldest)
		}
	}
	c.entries[key] = c.recency.PushFront(&lruEntry{key: key, value: value, expires: expires})
}

func (c *answerLRU) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element, c.capacity)
	c.recency.Init()
}

func (c *answerLRU) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func (c *answerLRU) drop(elem *list.Element) {
	c.recency.Remove(elem)
	delete(c.entries, elem.Value.(*lruEntry).key)
}
