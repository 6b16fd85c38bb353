package sandbox

import (
	"fmt"
	"slices"

	"agent-bridge/internal/sim"
)

// SaveSlots - число слотов сохранения, нумерация с 1.
const SaveSlots = 10

// save хранит игрока и его место в мире. Остальной мир не пишется:
// при загрузке карта остаётся такой, какая есть.
type save struct {
	description string
	sheet       sheet
	mapIndex    int
	mapName     string
	tile        int
	elevation   int
	hp          int
	inv         []stack
	left        *stack
	right       *stack
	armor       *stack
	ticks       uint64
}

func copyStack(s *stack) *stack {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func validSlot(slot int) error {
	if slot < 1 || slot > SaveSlots {
		return fmt.Errorf("%w: slot %d outside 1..%d", sim.ErrInvalid, slot, SaveSlots)
	}
	return nil
}

func (w *World) ProbeSaveSlot(slot int) sim.SaveSlotInfo {
	s, ok := w.saves[slot]
	if !ok {
		return sim.SaveSlotInfo{}
	}
	return sim.SaveSlotInfo{Exists: true, CharacterName: s.sheet.name, Description: s.description}
}

func (w *World) SaveSlot(slot int, description string) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	if w.screen != screenGameplay {
		return fmt.Errorf("%w: not in gameplay", sim.ErrBlocked)
	}
	if w.combat != nil {
		return fmt.Errorf("%w: cannot save in combat", sim.ErrBlocked)
	}
	p := w.me()
	w.saves[slot] = save{
		description: description,
		sheet:       w.sheet.clone(),
		mapIndex:    w.mapIndex,
		mapName:     w.mapName,
		tile:        p.tile,
		elevation:   p.elevation,
		hp:          p.hp,
		inv:         slices.Clone(w.inv),
		left:        copyStack(w.left),
		right:       copyStack(w.right),
		armor:       copyStack(w.armor),
		ticks:       w.ticks,
	}
	w.lastSave = slot
	w.message("Game saved.")
	w.log.WithField("slot", slot).Info("Game saved")
	return nil
}

func (w *World) LoadSlot(slot int) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	s, ok := w.saves[slot]
	if !ok {
		return fmt.Errorf("slot %d: %w", slot, sim.ErrNotFound)
	}

	w.endCombat("game loaded")
	w.dialogue, w.loot, w.barter, w.editor = nil, nil, nil, nil
	w.world.active = false
	w.path, w.anim, w.mode = nil, 0, 0

	w.sheet = s.sheet.clone()
	w.inv = slices.Clone(s.inv)
	w.left, w.right, w.armor = copyStack(s.left), copyStack(s.right), copyStack(s.armor)
	w.ticks = s.ticks
	w.mapIndex, w.mapName = s.mapIndex, s.mapName

	p := w.me()
	d := w.sheet.derived()
	p.mapIndex, p.tile, p.elevation = s.mapIndex, s.tile, s.elevation
	p.name, p.maxHP, p.hp, p.dead = w.sheet.name, d.MaxHP, s.hp, false
	p.strength, p.sequence = w.sheet.special[0], d.Sequence
	w.resetAP()

	w.screen = screenGameplay
	w.lastSave = slot
	w.emit(sim.EventMapChange, true)
	w.log.WithField("slot", slot).Info("Game loaded")
	return nil
}

func (w *World) QuickSave(description string) error {
	slot := w.lastSave
	if slot == 0 {
		slot = 1
	}
	return w.SaveSlot(slot, description)
}

func (w *World) QuickLoad() error {
	if w.lastSave == 0 {
		return fmt.Errorf("no quick save: %w", sim.ErrNotFound)
	}
	return w.LoadSlot(w.lastSave)
}
