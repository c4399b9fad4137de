package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitAndDrain(t *testing.T) {
	e := NewEmitter(4)
	e.Emit(StageSearching, 0, "balanced topK=20")
	e.Emit(StageGrading, 0, "15 candidates")
	e.Close()

	var stages []Stage
	for ev := range e.Events() {
		stages = append(stages, ev.Stage)
	}
	require.Len(t, stages, 2)
	assert.Equal(t, StageSearching, stages[0])
	assert.Equal(t, StageGrading, stages[1])
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	e := NewEmitter(1)
	e.Emit(StageSearching, 0, "first")
	// buffer full: must return immediately and drop
	e.Emit(StageGrading, 0, "second")
	e.Close()

	var events []Event
	for ev := range e.Events() {
		events = append(events, ev)
	}
	require.Len(t, events, 1)
	assert.Equal(t, StageSearching, events[0].Stage)
}

func TestDisabledAndNilEmitterAreSafe(t *testing.T) {
	disabled := NewEmitter(0)
	disabled.Emit(StageDone, 0, "ignored")
	disabled.Close()
	assert.Nil(t, disabled.Events())

	var nilEmitter *Emitter
	nilEmitter.Emit(StageDone, 0, "ignored")
	nilEmitter.Close()
	assert.Nil(t, nilEmitter.Events())
}
