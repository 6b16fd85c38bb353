package queue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
)

const raiderID = types.EntityID(0x0100000100000007)

func combatSim() *fakeSim {
	f := newFakeSim()
	f.inCombat = true
	f.player.AP = 10
	f.objects[raiderID] = sim.Object{ID: raiderID, Kind: enums.KindCritter, HP: 20, MaxHP: 20}
	return f
}

func punch() Attack {
	return Attack{Target: raiderID, Mode: enums.HitModePunch, Location: enums.HitLocationUncalled}
}

func TestAttackRequest_NotInCombatRequestsEntry(t *testing.T) {
	f := combatSim()
	f.inCombat = false
	q := NewAttacks()

	_, err := q.Request(f, punch(), 3)
	require.ErrorIs(t, err, sim.ErrBlocked)
	assert.Equal(t, 1, f.combatRequests)
	assert.Zero(t, q.Len())
}

func TestAttackRequest_Rejections(t *testing.T) {
	t.Run("missing target", func(t *testing.T) {
		f := combatSim()
		q := NewAttacks()
		a := punch()
		a.Target = types.EntityID(42)

		_, err := q.Request(f, a, 2)
		require.ErrorIs(t, err, sim.ErrNotFound)
		assert.Zero(t, q.Len())
	})

	t.Run("bad shot carries the reason", func(t *testing.T) {
		f := combatSim()
		f.verdict = enums.ShotOutOfRange
		q := NewAttacks()

		_, err := q.Request(f, punch(), 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
		assert.False(t, errors.Is(err, sim.ErrBlocked))
		assert.Zero(t, q.Len(), "infeasible attacks must never enter the queue")
		assert.Empty(t, f.attacks)
	})
}

func TestAttackRequest_BusyQueuesAll(t *testing.T) {
	f := combatSim()
	f.animating = true
	q := NewAttacks()

	msg, err := q.Request(f, punch(), 5)
	require.NoError(t, err)
	assert.Contains(t, msg, "queued 5")
	assert.Equal(t, 5, q.Len())
	assert.Empty(t, f.attacks, "nothing executes while busy")
}

func TestAttackRequest_IdleExecutesFirst(t *testing.T) {
	f := combatSim()
	q := NewAttacks()

	_, err := q.Request(f, punch(), 3)
	require.NoError(t, err)
	assert.Len(t, f.attacks, 1)
	assert.Equal(t, 2, q.Len())
}

func TestAttackRequest_IdleAttackFailureStillQueuesRest(t *testing.T) {
	f := combatSim()
	f.attackErr = errBoom
	q := NewAttacks()

	_, err := q.Request(f, punch(), 3)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, q.Len())
}

func TestAttackService(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(f *fakeSim)
		wantLen   int
		wantFired int
	}{
		{name: "fires one per tick", setup: func(*fakeSim) {}, wantLen: 2, wantFired: 1},
		{name: "waits while animating", setup: func(f *fakeSim) { f.animating = true }, wantLen: 3},
		{name: "combat ended", setup: func(f *fakeSim) { f.inCombat = false }},
		{name: "out of AP", setup: func(f *fakeSim) { f.player.AP = 0 }},
		{name: "target dead", setup: func(f *fakeSim) {
			o := f.objects[raiderID]
			o.Dead = true
			f.objects[raiderID] = o
		}},
		{name: "target gone", setup: func(f *fakeSim) { delete(f.objects, raiderID) }},
		{name: "attack failed", setup: func(f *fakeSim) { f.attackErr = errBoom }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := combatSim()
			f.animating = true
			q := NewAttacks()
			_, err := q.Request(f, punch(), 3)
			require.NoError(t, err)
			f.animating = false

			tt.setup(f)
			q.Service(f)

			assert.Equal(t, tt.wantLen, q.Len())
			assert.Len(t, f.attacks, tt.wantFired)
		})
	}
}

func TestAttackQueueStaysEmptyAfterClear(t *testing.T) {
	f := combatSim()
	f.animating = true
	q := NewAttacks()
	_, err := q.Request(f, punch(), 4)
	require.NoError(t, err)

	f.animating = false
	f.inCombat = false
	q.Service(f)
	require.Zero(t, q.Len())

	// Бой вернулся, но очищенная очередь не воскресает.
	f.inCombat = true
	for i := 0; i < 5; i++ {
		q.Service(f)
	}
	assert.Zero(t, q.Len())
	assert.Empty(t, f.attacks)
}

func TestAttackServiceDrainsUntilAPExhausted(t *testing.T) {
	f := combatSim()
	f.animating = true
	q := NewAttacks()
	_, err := q.Request(f, punch(), 5)
	require.NoError(t, err)
	f.animating = false

	// 10 AP, удар стоит 4: три атаки, пока AP положительны, затем сброс.
	for i := 0; i < 6; i++ {
		q.Service(f)
	}
	assert.Len(t, f.attacks, 3)
	assert.Zero(t, q.Len())
}
