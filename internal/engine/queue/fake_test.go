package queue

import (
	"errors"

	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
)

// fakeSim - минимальная симуляция для тестов очередей.
type fakeSim struct {
	player    sim.Player
	hasPlayer bool
	mapInfo   sim.MapInfo
	inCombat  bool
	animating bool
	path      []int
	moveErr   error
	moves     []int

	objects        map[types.EntityID]sim.Object
	verdict        enums.ShotVerdict
	attackErr      error
	attacks        []Attack
	combatRequests int

	dialogue    *sim.DialogueState
	highlighted []int
	selected    []int
	selectErr   error
}

func newFakeSim() *fakeSim {
	return &fakeSim{
		player:    sim.Player{Tile: 100, Elevation: 0, AP: 10},
		hasPlayer: true,
		mapInfo:   sim.MapInfo{Index: 3, Name: "arroyo"},
		objects:   map[types.EntityID]sim.Object{},
	}
}

func (f *fakeSim) InCombat() bool { return f.inCombat }

func (f *fakeSim) IsAnimating() bool { return f.animating }

func (f *fakeSim) Player() (sim.Player, bool) { return f.player, f.hasPlayer }

func (f *fakeSim) Map() (sim.MapInfo, bool) { return f.mapInfo, true }

func (f *fakeSim) FindPath(_, _, _, _ int) []int { return f.path }

func (f *fakeSim) MoveTo(tile int, _ bool, _ int) error {
	if f.moveErr != nil {
		return f.moveErr
	}
	f.moves = append(f.moves, tile)
	return nil
}

func (f *fakeSim) RequestCombat() error {
	f.combatRequests++
	return nil
}

func (f *fakeSim) Resolve(id types.EntityID) (sim.Object, bool) {
	o, ok := f.objects[id]
	return o, ok
}

func (f *fakeSim) CheckShot(types.EntityID, enums.HitMode, bool) enums.ShotVerdict {
	return f.verdict
}

func (f *fakeSim) Attack(target types.EntityID, mode enums.HitMode, loc enums.HitLocation) error {
	if f.attackErr != nil {
		return f.attackErr
	}
	f.attacks = append(f.attacks, Attack{Target: target, Mode: mode, Location: loc})
	f.player.AP -= 4
	return nil
}

func (f *fakeSim) Dialogue() (sim.DialogueState, bool) {
	if f.dialogue == nil {
		return sim.DialogueState{}, false
	}
	return *f.dialogue, true
}

func (f *fakeSim) HighlightDialogueOption(i int) error {
	f.highlighted = append(f.highlighted, i)
	return nil
}

func (f *fakeSim) SelectDialogueOption(i int) error {
	if f.selectErr != nil {
		return f.selectErr
	}
	f.selected = append(f.selected, i)
	return nil
}

// steps строит путь из n клеток, начиная после from.
func steps(from, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = from + i + 1
	}
	return out
}

var errBoom = errors.New("boom")
