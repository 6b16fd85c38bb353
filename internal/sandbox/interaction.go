package sandbox

import (
	"fmt"

	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
)

// reach - объект на соседней клетке того же уровня.
func (w *World) reach(id types.EntityID) (*entity, error) {
	if w.screen != screenGameplay {
		return nil, fmt.Errorf("%w: not in gameplay", sim.ErrBlocked)
	}
	e, ok := w.get(id)
	if !ok {
		return nil, fmt.Errorf("object %s: %w", id, sim.ErrNotFound)
	}
	p := w.me()
	if e.id != p.id && (e.elevation != p.elevation || w.TileDistance(p.tile, e.tile) > 1) {
		return nil, fmt.Errorf("%w: %s is too far", sim.ErrBlocked, e.name)
	}
	return e, nil
}

// UseObject - действие по умолчанию для объекта.
func (w *World) UseObject(id types.EntityID) error {
	e, err := w.reach(id)
	if err != nil {
		return err
	}
	switch e.kind {
	case enums.KindItem:
		return w.PickUp(id)
	case enums.KindCritter:
		return w.TalkTo(id)
	case enums.KindMisc:
		if e.exit != nil {
			w.stepExit(e.exit)
			return nil
		}
	case enums.KindScenery:
		switch e.scenery {
		case enums.SceneryDoor:
			if e.open {
				e.open = false
				return nil
			}
			return w.OpenDoor(id)
		case enums.SceneryContainer:
			return w.OpenContainer(id)
		case enums.SceneryStairs, enums.SceneryElevator, enums.SceneryLadderUp, enums.SceneryLadderDown:
			if e.exit != nil {
				w.stepExit(e.exit)
				return nil
			}
		}
		if e.scripted {
			w.message("You touch the %s. %s", e.name, e.description)
			return nil
		}
	}
	return fmt.Errorf("%w: nothing to do with %s", sim.ErrInvalid, e.name)
}

func (w *World) stepExit(to *sim.ExitGrid) {
	if to.Map < 0 {
		w.enterWorldMap()
		return
	}
	w.transition(to.Map, to.MapName, to.Elevation, to.Tile)
}

func (w *World) OpenDoor(id types.EntityID) error {
	e, ok := w.get(id)
	if !ok {
		return fmt.Errorf("object %s: %w", id, sim.ErrNotFound)
	}
	if e.kind != enums.KindScenery || e.scenery != enums.SceneryDoor {
		return fmt.Errorf("%w: %s is not a door", sim.ErrInvalid, e.name)
	}
	if e.locked {
		return fmt.Errorf("%w: %s is locked", sim.ErrBlocked, e.name)
	}
	e.open = true
	return nil
}

// PickUp: предмет с земли целиком, вместе с содержимым сумки.
func (w *World) PickUp(id types.EntityID) error {
	e, err := w.reach(id)
	if err != nil {
		return err
	}
	if e.kind != enums.KindItem {
		return fmt.Errorf("%w: cannot pick up %s", sim.ErrInvalid, e.name)
	}
	if w.proto(e.pid).Weapon != nil {
		for i := 0; i < e.quantity; i++ {
			w.inv = w.addStack(w.inv, e.pid, 1)
		}
	} else {
		w.stow(stack{pid: e.pid, qty: e.quantity})
	}
	for _, s := range e.items {
		w.stow(s)
	}
	w.message("You pick up %s.", e.name)
	w.remove(e.id)
	return nil
}

// UseSkill: взлом замков, первая помощь и описание остальных навыков.
func (w *World) UseSkill(skill enums.Skill, target types.EntityID) error {
	e, err := w.reach(target)
	if err != nil {
		return err
	}
	level := w.sheet.skill(skill)
	switch skill {
	case enums.SkillLockpick:
		if !e.locked {
			return fmt.Errorf("%w: %s is not locked", sim.ErrInvalid, e.name)
		}
		if w.rng.Intn(100) >= level {
			w.message("You fail to pick the lock.")
			return nil
		}
		e.locked = false
		w.message("You pick the lock of %s.", e.name)
		return nil
	case enums.SkillFirstAid, enums.SkillDoctor:
		if e.kind != enums.KindCritter || e.dead {
			return fmt.Errorf("%w: cannot heal %s", sim.ErrInvalid, e.name)
		}
		heal := max(level/10, 1)
		e.hp = min(e.hp+heal, e.maxHP)
		w.message("You heal %d HP.", heal)
		return nil
	case enums.SkillSteal:
		if e.kind != enums.KindCritter || e.dead {
			return fmt.Errorf("%w: cannot steal from %s", sim.ErrInvalid, e.name)
		}
		return w.openLoot(e)
	}
	w.message("You use %s on %s. Nothing happens.", skill, e.name)
	return nil
}

func (w *World) TalkTo(id types.EntityID) error {
	e, err := w.reach(id)
	if err != nil {
		return err
	}
	if e.kind != enums.KindCritter || e.dead {
		return fmt.Errorf("%w: %s cannot talk", sim.ErrInvalid, e.name)
	}
	if w.combat != nil {
		return fmt.Errorf("%w: in combat", sim.ErrBlocked)
	}
	if len(e.talk) == 0 {
		w.message("%s has nothing to say.", e.name)
		return nil
	}
	w.startDialogue(e)
	return nil
}

// UseItemOn: ключ отпирает, лекарство лечит, остальное бесполезно.
func (w *World) UseItemOn(pid int, target types.EntityID) error {
	e, err := w.reach(target)
	if err != nil {
		return err
	}
	if w.carried(pid) == 0 {
		return fmt.Errorf("pid %d: %w", pid, sim.ErrNotFound)
	}
	p := w.proto(pid)
	switch p.Type {
	case enums.ItemKey:
		if !e.locked {
			return fmt.Errorf("%w: %s is not locked", sim.ErrInvalid, e.name)
		}
		e.locked = false
		w.message("You unlock %s.", e.name)
		return nil
	case enums.ItemDrug:
		if e.kind != enums.KindCritter || e.dead {
			return fmt.Errorf("%w: cannot use %s on %s", sim.ErrInvalid, p.Name, e.name)
		}
		w.unstow(pid)
		e.hp = min(e.hp+p.Heal, e.maxHP)
		return nil
	}
	return fmt.Errorf("%w: %s has no effect on %s", sim.ErrInvalid, p.Name, e.name)
}

// LookAt - описание без требования подойти.
func (w *World) LookAt(id types.EntityID) (string, error) {
	e, ok := w.get(id)
	if !ok {
		return "", fmt.Errorf("object %s: %w", id, sim.ErrNotFound)
	}
	text := e.description
	if text == "" {
		text = "You see " + e.name + "."
	}
	if e.kind == enums.KindCritter {
		switch {
		case e.dead:
			text += " It is dead."
		case e.hp*2 < e.maxHP:
			text += " It looks badly wounded."
		}
	}
	if e.locked {
		text += " It is locked."
	}
	return text, nil
}

// OpenContainer открывает окно обыска для контейнера или трупа.
func (w *World) OpenContainer(id types.EntityID) error {
	e, err := w.reach(id)
	if err != nil {
		return err
	}
	switch {
	case e.kind == enums.KindScenery && e.scenery == enums.SceneryContainer:
		if e.locked {
			return fmt.Errorf("%w: %s is locked", sim.ErrBlocked, e.name)
		}
		e.open = true
	case e.kind == enums.KindCritter && e.dead:
	default:
		return fmt.Errorf("%w: %s is not a container", sim.ErrInvalid, e.name)
	}
	return w.openLoot(e)
}

func (w *World) Contents(id types.EntityID) ([]sim.Item, bool) {
	e, ok := w.get(id)
	if !ok {
		return nil, false
	}
	container := (e.kind == enums.KindScenery && e.scenery == enums.SceneryContainer) ||
		(e.kind == enums.KindItem && e.itemType == enums.ItemContainer) ||
		(e.kind == enums.KindCritter && e.dead)
	if !container {
		return nil, false
	}
	return w.items(e.items), true
}

func (w *World) Holodisks() []sim.Holodisk {
	return append([]sim.Holodisk(nil), w.disks...)
}
