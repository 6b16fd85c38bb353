package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-bridge/internal/engine/detect"
	"agent-bridge/internal/sim"
)

func dialogueSim() *fakeSim {
	f := newFakeSim()
	f.dialogue = &sim.DialogueState{Reply: "Who goes there?", Options: []string{"A friend.", "None of your business.", "Bye."}}
	return f
}

func TestSelectionRequest(t *testing.T) {
	t.Run("not in dialogue", func(t *testing.T) {
		f := newFakeSim()
		q := NewSelection(30)
		_, err := q.Request(f, 0, 1, detect.GameplayDialogue)
		require.ErrorIs(t, err, sim.ErrBlocked)
		assert.False(t, q.Pending())
	})

	t.Run("outside dialogue context", func(t *testing.T) {
		f := dialogueSim()
		q := NewSelection(30)
		_, err := q.Request(f, 0, 1, detect.GameplayBarter)
		require.ErrorIs(t, err, sim.ErrBlocked)
		assert.Empty(t, f.highlighted)
		assert.False(t, q.Pending())
	})

	t.Run("index out of range", func(t *testing.T) {
		f := dialogueSim()
		q := NewSelection(30)
		_, err := q.Request(f, 3, 1, detect.GameplayDialogue)
		require.ErrorIs(t, err, sim.ErrInvalid)
		assert.Empty(t, f.highlighted)
	})

	t.Run("highlights immediately", func(t *testing.T) {
		f := dialogueSim()
		q := NewSelection(30)
		_, err := q.Request(f, 1, 10, detect.GameplayDialogue)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, f.highlighted)
		assert.Empty(t, f.selected)
		assert.True(t, q.Pending())
	})
}

func TestSelectionCommitsAfterDwell(t *testing.T) {
	f := dialogueSim()
	q := NewSelection(30)
	_, err := q.Request(f, 2, 100, detect.GameplayDialogue)
	require.NoError(t, err)

	_, done := q.Service(f, 129, detect.GameplayDialogue)
	assert.False(t, done)
	assert.Empty(t, f.selected)

	out, done := q.Service(f, 130, detect.GameplayDialogue)
	require.True(t, done)
	assert.Equal(t, OutcomeCommitted, out.Outcome)
	assert.Equal(t, []int{2}, f.selected)
	assert.False(t, q.Pending())

	last, ok := q.Last()
	require.True(t, ok)
	assert.Equal(t, 2, last.Index)
	assert.Equal(t, uint64(130), last.Tick)
}

func TestSelectionDiscardedWhenDialogueClosed(t *testing.T) {
	f := dialogueSim()
	q := NewSelection(30)
	_, err := q.Request(f, 0, 0, detect.GameplayDialogue)
	require.NoError(t, err)

	f.dialogue = nil
	out, done := q.Service(f, 30, detect.GameplayDialogue)
	require.True(t, done)
	assert.Equal(t, OutcomeDiscarded, out.Outcome)
	assert.Empty(t, f.selected)
}

func TestSelectionFailureSurfaced(t *testing.T) {
	f := dialogueSim()
	f.selectErr = errBoom
	q := NewSelection(5)
	_, err := q.Request(f, 0, 0, detect.GameplayDialogue)
	require.NoError(t, err)

	out, done := q.Service(f, 5, detect.GameplayDialogue)
	require.True(t, done)
	assert.Equal(t, OutcomeFailed, out.Outcome)
	assert.Equal(t, "boom", out.Err)
}

func TestSelectionNewRequestReplacesPending(t *testing.T) {
	f := dialogueSim()
	q := NewSelection(30)
	_, err := q.Request(f, 0, 0, detect.GameplayDialogue)
	require.NoError(t, err)
	_, err = q.Request(f, 1, 20, detect.GameplayDialogue)
	require.NoError(t, err)

	// Выдержка отсчитывается от второго запроса.
	_, done := q.Service(f, 30, detect.GameplayDialogue)
	assert.False(t, done)
	out, done := q.Service(f, 50, detect.GameplayDialogue)
	require.True(t, done)
	assert.Equal(t, 1, out.Index)
	assert.Equal(t, []int{1}, f.selected)
}

func TestSelectionDiscardedWhenContextChanged(t *testing.T) {
	f := dialogueSim()
	q := NewSelection(30)
	_, err := q.Request(f, 1, 0, detect.GameplayDialogue)
	require.NoError(t, err)

	// Диалог формально открыт, но поверх него уже бартер.
	out, done := q.Service(f, 30, detect.GameplayBarter)
	require.True(t, done)
	assert.Equal(t, OutcomeDiscarded, out.Outcome)
	assert.Empty(t, f.selected)
	assert.False(t, q.Pending())
}
