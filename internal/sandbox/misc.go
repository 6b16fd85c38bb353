package sandbox

import (
	"fmt"
	"time"

	"agent-bridge/internal/core/types"
	"agent-bridge/internal/sim"
)

// Начало игрового календаря.
var epoch = time.Date(2241, time.July, 25, 8, 0, 0, 0, time.UTC)

const (
	// ExplosionRadius - кто ближе, получает урон от взрыва.
	ExplosionRadius = 2
	// TicksPerHour - игровых тиков в часе.
	TicksPerHour = 3600 * TicksPerSecond
)

// --- Оверлеи ---

func (w *World) ShowStatus(text string) { w.status = text }
func (w *World) HideStatus()            { w.status = "" }

func (w *World) ShowDialogueThought(text string) { w.thought = text }
func (w *World) HideDialogueThought()            { w.thought = "" }

// FloatText пишет всплывающий текст в журнал сообщений.
func (w *World) FloatText(target types.EntityID, text string) {
	name := "Someone"
	if e, ok := w.get(target); ok {
		name = e.name
	}
	w.message("%s: %s", name, text)
}

// --- Время ---

func (w *World) GameTime() sim.GameTime {
	t := epoch.Add(time.Duration(w.ticks/TicksPerSecond) * time.Second)
	return sim.GameTime{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), Hour: t.Hour(), Ticks: w.ticks}
}

// Rest прерывается, если рядом есть враг в прямой видимости.
func (w *World) Rest(hours int) (bool, error) {
	if hours <= 0 {
		return false, fmt.Errorf("%w: hours %d", sim.ErrInvalid, hours)
	}
	if w.screen != screenGameplay || w.combat != nil {
		return false, fmt.Errorf("%w: cannot rest now", sim.ErrBlocked)
	}
	p := w.me()
	for _, e := range w.hostiles() {
		if w.TileDistance(p.tile, e.tile) <= AggroRadius && w.lineOfSight(p.elevation, e.tile, p.tile) {
			w.message("You cannot rest with enemies nearby.")
			return true, nil
		}
	}
	w.ticks += uint64(hours) * TicksPerHour
	p.hp = min(p.hp+w.sheet.derived().HealingRate*hours, p.maxHP)
	w.message("You rest for %d hours.", hours)
	return false, nil
}

// --- Журналы ---

func (w *World) Settings() sim.Settings {
	return sim.Settings{GameDifficulty: "normal", CombatDifficulty: "normal"}
}

func (w *World) Quests() []sim.Quest { return append([]sim.Quest(nil), w.quests...) }

// MessageLog - последние limit строк; limit <= 0 - все.
func (w *World) MessageLog(limit int) []string {
	msgs := w.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]string(nil), msgs...)
}

// --- Читы ---

func (w *World) MapTransition(mapIndex, elevation, tile, rotation int) error {
	if !w.inBounds(tile) {
		return fmt.Errorf("%w: tile %d out of map", sim.ErrInvalid, tile)
	}
	if w.screen != screenGameplay {
		return fmt.Errorf("%w: not in gameplay", sim.ErrBlocked)
	}
	w.world.active = false
	w.transition(mapIndex, "", elevation, tile)
	w.me().rotation = rotation
	return nil
}

func (w *World) Teleport(tile, elevation int) error {
	if !w.inBounds(tile) {
		return fmt.Errorf("%w: tile %d out of map", sim.ErrInvalid, tile)
	}
	if w.wall(elevation, tile) {
		return fmt.Errorf("%w: tile %d is a wall", sim.ErrBlocked, tile)
	}
	w.transition(w.mapIndex, w.mapName, elevation, tile)
	return nil
}

func (w *World) Detonate(tile, pid int) error {
	if !w.inBounds(tile) {
		return fmt.Errorf("%w: tile %d out of map", sim.ErrInvalid, tile)
	}
	w.explode(pid, w.me().elevation, tile)
	return nil
}

// explode ранит всех существ в радиусе взрыва.
func (w *World) explode(pid, elevation, tile int) {
	dmg := 20
	if wp := w.proto(pid).Weapon; wp != nil && wp.DamageMax > 0 {
		dmg = wp.DamageMin + w.rng.Intn(wp.DamageMax-wp.DamageMin+1)
	}
	var hit []*entity
	w.ents.Each(func(_ types.EntityID, e *entity) bool {
		if e.alive() && e.mapIndex == w.mapIndex && e.elevation == elevation &&
			w.TileDistance(e.tile, tile) <= ExplosionRadius {
			hit = append(hit, e)
		}
		return true
	})
	w.message("An explosion at tile %d.", tile)
	for _, e := range hit {
		w.hurt(nil, e, dmg)
	}
	w.emit(sim.EventContainerChange, true)
}

// Nudge переставляет игрока на соседнюю клетку без анимации.
func (w *World) Nudge(tile int) error {
	p := w.me()
	if w.TileDistance(p.tile, tile) != 1 {
		return fmt.Errorf("%w: tile %d is not adjacent", sim.ErrInvalid, tile)
	}
	if !w.passable(p.elevation, tile, p) {
		return fmt.Errorf("%w: tile %d is occupied", sim.ErrBlocked, tile)
	}
	p.rotation = w.rotation(p.tile, tile)
	p.tile = tile
	return nil
}

var _ sim.Simulation = (*World)(nil)
