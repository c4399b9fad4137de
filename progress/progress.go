// Package progress streams coarse stage events for one request so a
// caller can show what the engine is doing while a turn runs.
package progress

import "time"

// Stage identifies a step of the retrieval loop.
type Stage string

const (
	StageSearching  Stage = "searching"
	StageFiltering  Stage = "filtering"
	StageGrading    Stage = "grading"
	StageRefining   Stage = "refining"
	StageFallback   Stage = "fallback"
	StageGenerating Stage = "generating"
	StageDone       Stage = "done"
)

// Event is one progress update.
type Event struct {
	Stage     Stage
	Detail    string
	Attempt   int
	Timestamp time.Time
}

// Emitter delivers events to an optional channel. Sends never block:
// a slow or absent consumer drops updates instead of stalling the turn.
type Emitter struct {
	ch chan Event
}

// NewEmitter creates an emitter buffering up to size events. size <= 0
// disables emission entirely.
func NewEmitter(size int) *Emitter {
	if size <= 0 {
		return &Emitter{}
	}
	return &Emitter{ch: make(chan Event, size)}
}

// Events returns the consumer channel; nil when emission is disabled.
func (e *Emitter) Events() <-chan Event {
	if e == nil {
		return nil
	}
	return e.ch
}

// Emit publishes one event, dropping it if the buffer is full.
func (e *Emitter) Emit(stage Stage, attempt int, detail string) {
	if e == nil || e.ch == nil {
		return
	}
	ev := Event{Stage: stage, Detail: detail, Attempt: attempt, Timestamp: time.Now()}
	select {
	case e.ch <- ev:
	default:
	}
}

// Close ends the stream; consumers see the channel drain then close.
func (e *Emitter) Close() {
	if e == nil || e.ch == nil {
		return
	}
	close(e.ch)
}
