package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "nested", "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestSessionLifecycle(t *testing.T) {
	a := newTestArchive(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.NewString()

	require.NoError(t, a.BeginSession(Session{ID: id, PID: 77, StartedAt: start, StartTick: 5, Version: "b1"}))

	sessions, err := a.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].ID)
	assert.Equal(t, uint64(5), sessions[0].StartTick)
	assert.Nil(t, sessions[0].EndedAt)
	assert.True(t, start.Equal(sessions[0].StartedAt))

	require.NoError(t, a.EndSession(id, 900, start.Add(time.Minute)))
	sessions, err = a.Sessions()
	require.NoError(t, err)
	require.NotNil(t, sessions[0].EndTick)
	assert.Equal(t, uint64(900), *sessions[0].EndTick)
	require.NotNil(t, sessions[0].EndedAt)

	assert.Error(t, a.EndSession("missing", 1, start))
}

func TestCommandsAndFailureSummary(t *testing.T) {
	a := newTestArchive(t)
	id := uuid.NewString()
	now := time.Now()
	require.NoError(t, a.BeginSession(Session{ID: id, StartedAt: now}))

	entries := []CommandEntry{
		{Type: "move_to", Status: "blocked", Failure: true, Debug: "blocked: in combat", Args: `{"tile":5}`},
		{Type: "move_to", Status: "ok", Debug: "move_to: tile=5"},
		{Type: "attack", Status: "failed", Failure: true},
		{Type: "attack", Status: "failed", Failure: true},
		{Type: "skip", Status: "no_op"},
	}
	for i, e := range entries {
		e.SessionID = id
		e.Tick = uint64(i + 1)
		e.CreatedAt = now
		seq, err := a.RecordCommand(e)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}

	got, err := a.Commands(id)
	require.NoError(t, err)
	require.Len(t, got, len(entries))
	assert.Equal(t, `{"tile":5}`, got[0].Args)
	assert.True(t, got[0].Failure)
	assert.Equal(t, "", got[1].Args)
	assert.Equal(t, uint64(5), got[4].Tick)

	summary, err := a.FailureSummary(id)
	require.NoError(t, err)
	assert.Equal(t, []FailureStat{
		{Type: "attack", Total: 2, Failures: 2},
		{Type: "move_to", Total: 2, Failures: 1},
		{Type: "skip", Total: 1, Failures: 0},
	}, summary)
}

func TestClosedArchive(t *testing.T) {
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = a.Sessions()
	assert.True(t, errors.Is(err, ErrArchiveClosed))
	_, err = a.RecordCommand(CommandEntry{})
	assert.ErrorIs(t, err, ErrArchiveClosed)
	assert.ErrorIs(t, a.Close(), ErrArchiveClosed)
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	a, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, a.BeginSession(Session{ID: "first", StartedAt: time.Now()}))
	require.NoError(t, a.Close())

	a, err = Open(path)
	require.NoError(t, err)
	defer a.Close()
	sessions, err := a.Sessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}
