package crag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideAcceptOnGood(t *testing.T) {
	s := NewCorrectionState("beach vacation", 2)
	a := Decide(s, Outcome{Quality: QualityGood, ResultCount: 10, SearchExecuted: true})
	assert.Equal(t, ActionAccept, a)
}

func TestDecideZeroResultFastEscalation(t *testing.T) {
	// empty results escalate immediately even with full retry budget
	s := NewCorrectionState("beach vacation", 2)
	a := Decide(s, Outcome{Quality: QualityPoor, ErrorKind: ErrorNotFound, ResultCount: 0, SearchExecuted: true})
	assert.Equal(t, ActionFallback, a)
	assert.Equal(t, 0, s.RetryCount)
}

func TestDecideRefinePreferredOverFallback(t *testing.T) {
	s := NewCorrectionState("beach vacation", 2)
	a := Decide(s, Outcome{Quality: QualityPoor, ErrorKind: ErrorIrrelevant, ResultCount: 5, SearchExecuted: true})
	assert.Equal(t, ActionRefine, a)
}

func TestDecideFallbackOnExhaustedRetries(t *testing.T) {
	s := NewCorrectionState("beach vacation", 1)
	s.RecordRetry("family friendly beaches miami")
	a := Decide(s, Outcome{Quality: QualityPoor, ErrorKind: ErrorIrrelevant, ResultCount: 5, SearchExecuted: true})
	assert.Equal(t, ActionFallback, a)
}

func TestDecideNoRefineWithoutErrorKind(t *testing.T) {
	s := NewCorrectionState("beach vacation", 2)
	a := Decide(s, Outcome{Quality: QualityPoor, ErrorKind: ErrorNone, ResultCount: 5, SearchExecuted: true})
	assert.Equal(t, ActionFallback, a)
}

func TestDecideUnknownQualityRoutesToFallback(t *testing.T) {
	s := NewCorrectionState("beach vacation", 2)
	a := Decide(s, Outcome{Quality: QualityUnknown, ResultCount: 5, SearchExecuted: true})
	assert.Equal(t, ActionFallback, a)
}

func TestDecideIdempotentAfterFallback(t *testing.T) {
	s := NewCorrectionState("beach vacation", 2)
	s.MarkFallback()
	assert.Equal(t, ActionAccept, Decide(s, Outcome{Quality: QualityPoor, ErrorKind: ErrorIrrelevant, ResultCount: 5, SearchExecuted: true}))
	assert.Equal(t, ActionAccept, Decide(s, Outcome{ResultCount: 0, SearchExecuted: true}))
}

func TestRetryMonotonicAndBounded(t *testing.T) {
	s := NewCorrectionState("beach vacation", 2)
	for i := 0; i < 5; i++ {
		o := Outcome{Quality: QualityPoor, ErrorKind: ErrorTooFew, ResultCount: 3, SearchExecuted: true}
		if Decide(s, o) != ActionRefine {
			break
		}
		before := s.RetryCount
		s.RecordRetry("retry query")
		assert.Equal(t, before+1, s.RetryCount)
	}
	// terminal within maxRetry+1 attempts
	assert.Equal(t, 2, s.RetryCount)
	assert.Equal(t, ActionFallback, Decide(s, Outcome{Quality: QualityPoor, ErrorKind: ErrorTooFew, ResultCount: 3, SearchExecuted: true}))
}

func TestTriedQueriesDeduplicated(t *testing.T) {
	s := NewCorrectionState("beach vacation", 3)
	assert.True(t, s.Tried("Beach Vacation"))
	s.RecordRetry("miami beaches")
	s.RecordRetry("miami beaches")
	assert.Len(t, s.TriedQueries, 2)
	assert.Equal(t, 2, s.RetryCount)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "good", QualityGood.String())
	assert.Equal(t, "irrelevant", QualityIrrelevant.String())
	assert.Equal(t, "missing_must_visit", ErrorMissingMustVisit.String())
	assert.Equal(t, "none", ErrorNone.String())
	assert.Equal(t, "refine", ActionRefine.String())
}
