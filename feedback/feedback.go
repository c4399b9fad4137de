// Package feedback turns recent grading outcomes into retrieval
// adjustments. When a search mode keeps producing poor pools, the
// tracker suggests a bounded topK bump so the next turns over-fetch
// harder before the correction loop has to escalate.
package feedback

import (
	"sync"
	"time"

	"github.com/tripseek/tripseek/common/logger"
	"github.com/tripseek/tripseek/config"
	"github.com/tripseek/tripseek/crag"
)

// OutcomeRecord stores one graded retrieval outcome.
type OutcomeRecord struct {
	Timestamp time.Time
	Quality   crag.Quality
	ErrorKind crag.ErrorKind
	TopK      int
}

// Trend summarizes the recent window for one key.
type Trend struct {
	Total           int
	Good            int
	Poor            int
	ConsecutivePoor int
	LastUpdated     time.Time
}

// Tracker keeps a sliding window of outcomes per search mode and
// suggests topK adjustments. All methods are safe for concurrent use.
type Tracker struct {
	mu         sync.RWMutex
	cfg        config.FeedbackConfig
	history    map[string][]OutcomeRecord
	lastAdjust map[string]time.Time
	maxPerKey  int
	defaultKey string
}

func NewTracker(cfg *config.FeedbackConfig) *Tracker {
	t := &Tracker{
		history:    make(map[string][]OutcomeRecord),
		lastAdjust: make(map[string]time.Time),
		defaultKey: "_global",
		maxPerKey:  100,
	}
	if cfg != nil {
		t.cfg = *cfg
		if cfg.Window > 0 {
			t.maxPerKey = cfg.Window * 5
		}
	}
	return t
}

// Record stores a graded outcome under the given key (search mode).
func (t *Tracker) Record(key string, quality crag.Quality, kind crag.ErrorKind, topK int) {
	if key == "" {
		key = t.defaultKey
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := OutcomeRecord{Timestamp: time.Now(), Quality: quality, ErrorKind: kind, TopK: topK}
	history := append(t.history[key], rec)
	if len(history) > t.maxPerKey {
		history = history[len(history)-t.maxPerKey:]
	}
	t.history[key] = history
}

// GetTrend computes outcome statistics over the configured window.
func (t *Tracker) GetTrend(key string) Trend {
	if key == "" {
		key = t.defaultKey
	}
	t.mu.RLock()
	history := append([]OutcomeRecord(nil), t.history[key]...)
	t.mu.RUnlock()

	window := t.cfg.Window
	if window <= 0 {
		window = 20
	}
	if len(history) == 0 {
		return Trend{}
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}

	trend := Trend{
		Total:       len(history),
		LastUpdated: history[len(history)-1].Timestamp,
	}
	for _, rec := range history {
		switch rec.Quality {
		case crag.QualityGood:
			trend.Good++
		case crag.QualityPoor, crag.QualityIrrelevant:
			trend.Poor++
		}
	}
	for i := len(history) - 1; i >= 0; i-- {
		q := history[i].Quality
		if q != crag.QualityPoor && q != crag.QualityIrrelevant {
			break
		}
		trend.ConsecutivePoor++
	}
	return trend
}

// SuggestTopK returns a possibly bumped topK for the next retrieval.
// A bump happens when poor outcomes in the window reach the threshold
// and no adjustment was applied within the cooldown. The result never
// exceeds the configured ceiling.
func (t *Tracker) SuggestTopK(key string, currentTopK int) int {
	if currentTopK <= 0 {
		return currentTopK
	}
	trend := t.GetTrend(key)
	threshold := t.cfg.PoorThreshold
	if threshold <= 0 {
		threshold = 5
	}
	if trend.Poor < threshold {
		return currentTopK
	}
	cooldown := time.Duration(t.cfg.CooldownSec) * time.Second
	if t.inCooldown(key, cooldown) {
		return currentTopK
	}

	step := t.cfg.TopKStep
	if step <= 0 {
		step = 5
	}
	max := t.cfg.TopKMax
	if max <= 0 {
		max = 50
	}
	bumped := currentTopK + step
	if bumped > max {
		bumped = max
	}
	if bumped == currentTopK {
		return currentTopK
	}
	t.markAdjustment(key)
	logger.Infof("feedback: bumped topK %d -> %d for %q (%d poor of %d recent)",
		currentTopK, bumped, key, trend.Poor, trend.Total)
	return bumped
}

func (t *Tracker) inCooldown(key string, cooldown time.Duration) bool {
	if cooldown <= 0 {
		return false
	}
	if key == "" {
		key = t.defaultKey
	}
	t.mu.RLock()
	last := t.lastAdjust[key]
	t.mu.RUnlock()
	if last.IsZero() {
		return false
	}
	return time.Since(last) < cooldown
}

func (t *Tracker) markAdjustment(key string) {
	if key == "" {
		key = t.defaultKey
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastAdjust[key] = time.Now()
}

// Statistics exposes aggregate counts for diagnostics.
func (t *Tracker) Statistics() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	total, good, poor := 0, 0, 0
	for _, history := range t.history {
		for _, rec := range history {
			total++
			switch rec.Quality {
			case crag.QualityGood:
				good++
			case crag.QualityPoor, crag.QualityIrrelevant:
				poor++
			}
		}
	}
	stats := map[string]any{
		"total_count": total,
		"good_count":  good,
		"poor_count":  poor,
	}
	if total > 0 {
		stats["poor_rate"] = float64(poor) / float64(total)
	}
	return stats
}

// Reset clears all recorded history and cooldowns.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = make(map[string][]OutcomeRecord)
	t.lastAdjust = make(map[string]time.Time)
}
