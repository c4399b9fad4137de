// Package crag implements the corrective feedback loop around retrieval:
// grade the results of an attempt, then refine the query, escalate to
// fallback generation, or accept. The loop is bounded by a retry budget
// and always terminates.
package crag

import "strings"

// Quality grades one retrieval attempt.
type Quality int

const (
	// QualityUnknown means grading itself failed; routed conservatively
	// toward fallback rather than silently accepting.
	QualityUnknown Quality = iota
	QualityGood
	QualityPoor
	QualityIrrelevant
)

func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityPoor:
		return "poor"
	case QualityIrrelevant:
		return "irrelevant"
	default:
		return "unknown"
	}
}

// ErrorKind names why an attempt was judged poor; it selects the
// refinement strategy.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorTooFew
	ErrorIrrelevant
	ErrorSemanticDrift
	ErrorMissingMustVisit
	ErrorNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorTooFew:
		return "too_few"
	case ErrorIrrelevant:
		return "irrelevant"
	case ErrorSemanticDrift:
		return "semantic_drift"
	case ErrorMissingMustVisit:
		return "missing_must_visit"
	case ErrorNotFound:
		return "not_found"
	default:
		return "none"
	}
}

// Action is the decision for one cycle of the loop.
type Action int

const (
	ActionAccept Action = iota
	ActionRefine
	ActionFallback
)

func (a Action) String() string {
	switch a {
	case ActionRefine:
		return "refine"
	case ActionFallback:
		return "fallback"
	default:
		return "accept"
	}
}

// CorrectionState tracks one turn of the loop. It is created per user
// turn and discarded when the turn completes.
type CorrectionState struct {
	MaxRetry          int
	RetryCount        int
	TriedQueries      []string
	FallbackTriggered bool
}

// NewCorrectionState starts a turn with the initial query on record.
func NewCorrectionState(initialQuery string, maxRetry int) *CorrectionState {
	s := &CorrectionState{MaxRetry: maxRetry}
	if initialQuery != "" {
		s.TriedQueries = append(s.TriedQueries, initialQuery)
	}
	return s
}

// Tried reports whether a query text was already attempted this turn.
func (s *CorrectionState) Tried(query string) bool {
	needle := strings.ToLower(strings.TrimSpace(query))
	for _, q := range s.TriedQueries {
		if strings.ToLower(strings.TrimSpace(q)) == needle {
			return true
		}
	}
	return false
}

// RecordRetry appends the refined query and spends one retry.
func (s *CorrectionState) RecordRetry(refinedQuery string) {
	if !s.Tried(refinedQuery) {
		s.TriedQueries = append(s.TriedQueries, refinedQuery)
	}
	s.RetryCount++
}

// MarkFallback latches the fallback flag; it never resets within a turn.
func (s *CorrectionState) MarkFallback() { s.FallbackTriggered = true }

// Outcome is the graded result of one retrieval attempt.
type Outcome struct {
	Quality        Quality
	ErrorKind      ErrorKind
	ResultCount    int
	SearchExecuted bool
}

// Decide picks the next action from the full outcome of an attempt.
// Ordering rules:
//   - once fallback has fired nothing re-fires;
//   - an executed search with zero results escalates immediately, since
//     rewriting cannot manufacture inventory the index does not have;
//   - refine is preferred over fallback while retry budget remains;
//   - unknown quality (grader failure) routes to fallback, never to
//     silent acceptance.
func Decide(s *CorrectionState, o Outcome) Action {
	if s.FallbackTriggered {
		return ActionAccept
	}
	if o.SearchExecuted && o.ResultCount == 0 {
		return ActionFallback
	}
	switch o.Quality {
	case QualityGood:
		return ActionAccept
	case QualityPoor, QualityIrrelevant:
		if s.RetryCount < s.MaxRetry && o.ErrorKind != ErrorNone {
			return ActionRefine
		}
		return ActionFallback
	default:
		return ActionFallback
	}
}
