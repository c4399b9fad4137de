package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripseek/tripseek/config"
	"github.com/tripseek/tripseek/crag"
)

func testConfig() *config.FeedbackConfig {
	return &config.FeedbackConfig{Window: 10, PoorThreshold: 3, TopKStep: 5, TopKMax: 50, CooldownSec: 0}
}

func TestNoBumpBelowThreshold(t *testing.T) {
	tr := NewTracker(testConfig())
	tr.Record("balanced", crag.QualityPoor, crag.ErrorTooFew, 20)
	tr.Record("balanced", crag.QualityGood, crag.ErrorNone, 20)
	assert.Equal(t, 20, tr.SuggestTopK("balanced", 20))
}

func TestBumpAfterRepeatedPoorOutcomes(t *testing.T) {
	tr := NewTracker(testConfig())
	for i := 0; i < 3; i++ {
		tr.Record("balanced", crag.QualityPoor, crag.ErrorTooFew, 20)
	}
	assert.Equal(t, 25, tr.SuggestTopK("balanced", 20))
}

func TestBumpCappedAtCeiling(t *testing.T) {
	tr := NewTracker(testConfig())
	for i := 0; i < 5; i++ {
		tr.Record("keyword", crag.QualityIrrelevant, crag.ErrorIrrelevant, 48)
	}
	assert.Equal(t, 50, tr.SuggestTopK("keyword", 48))
}

func TestNoBumpWhenAlreadyAtCeiling(t *testing.T) {
	tr := NewTracker(testConfig())
	for i := 0; i < 5; i++ {
		tr.Record("keyword", crag.QualityPoor, crag.ErrorTooFew, 50)
	}
	assert.Equal(t, 50, tr.SuggestTopK("keyword", 50))
}

func TestCooldownSuppressesSecondBump(t *testing.T) {
	cfg := testConfig()
	cfg.CooldownSec = 3600
	tr := NewTracker(cfg)
	for i := 0; i < 4; i++ {
		tr.Record("semantic", crag.QualityPoor, crag.ErrorTooFew, 20)
	}
	assert.Equal(t, 25, tr.SuggestTopK("semantic", 20))
	assert.Equal(t, 25, tr.SuggestTopK("semantic", 25), "second bump should wait out the cooldown")
}

func TestModesTrackedIndependently(t *testing.T) {
	tr := NewTracker(testConfig())
	for i := 0; i < 4; i++ {
		tr.Record("keyword", crag.QualityPoor, crag.ErrorTooFew, 20)
	}
	assert.Equal(t, 20, tr.SuggestTopK("semantic", 20))
	assert.Equal(t, 25, tr.SuggestTopK("keyword", 20))
}

func TestTrendWindowAndStreak(t *testing.T) {
	tr := NewTracker(testConfig())
	tr.Record("balanced", crag.QualityGood, crag.ErrorNone, 20)
	tr.Record("balanced", crag.QualityPoor, crag.ErrorTooFew, 20)
	tr.Record("balanced", crag.QualityPoor, crag.ErrorIrrelevant, 20)

	trend := tr.GetTrend("balanced")
	assert.Equal(t, 3, trend.Total)
	assert.Equal(t, 1, trend.Good)
	assert.Equal(t, 2, trend.Poor)
	assert.Equal(t, 2, trend.ConsecutivePoor)
}

func TestResetClearsHistory(t *testing.T) {
	tr := NewTracker(testConfig())
	for i := 0; i < 4; i++ {
		tr.Record("balanced", crag.QualityPoor, crag.ErrorTooFew, 20)
	}
	tr.Reset()
	assert.Equal(t, 20, tr.SuggestTopK("balanced", 20))
	assert.Equal(t, 0, tr.GetTrend("balanced").Total)
}
