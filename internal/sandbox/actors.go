package sandbox

import (
	"fmt"

	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
)

// MaxPathSteps - бюджет поиска пути для собственных перемещений песочницы.
const MaxPathSteps = 2000

func (w *World) GameMode() enums.GameMode {
	m := w.mode
	if w.screen == screenEditor {
		m |= enums.ModeEditor
	}
	if w.combat != nil {
		m |= enums.ModeCombat
		if w.combat.playerTurn() {
			m |= enums.ModePlayerTurn
		}
	}
	if w.dialogue != nil {
		m |= enums.ModeDialog
	}
	if w.loot != nil {
		m |= enums.ModeLoot
	}
	if w.barter != nil {
		m |= enums.ModeBarter
	}
	if w.world.active {
		m |= enums.ModeWorldmap
	}
	return m
}

func (w *World) GameState() int { return int(w.screen) }

func (w *World) MoviePlaying() bool { return w.screen == screenMovie }

func (w *World) Screen() sim.Screen { return sim.Screen{Width: 640, Height: 480} }

func (w *World) Mouse() sim.Mouse { return w.mouse }

func (w *World) Player() (sim.Player, bool) {
	if w.screen != screenGameplay && w.screen != screenDeath {
		return sim.Player{}, false
	}
	e := w.me()
	return sim.Player{
		ID:        e.id,
		Tile:      e.tile,
		Elevation: e.elevation,
		Rotation:  e.rotation,
		HP:        e.hp,
		MaxHP:     e.maxHP,
		AP:        e.ap,
		MaxAP:     e.maxAP,
		Sneaking:  w.sneaking,
		Dead:      e.dead,
	}, true
}

func (w *World) Resolve(id types.EntityID) (sim.Object, bool) {
	e, ok := w.get(id)
	if !ok {
		return sim.Object{}, false
	}
	return e.object(), true
}

func (w *World) Objects(q sim.ObjectQuery) []sim.Object {
	kinds := make(map[enums.ObjectKind]bool, len(q.Kinds))
	for _, k := range q.Kinds {
		kinds[k] = true
	}

	var out []sim.Object
	w.ents.Each(func(_ types.EntityID, e *entity) bool {
		if e.mapIndex != w.mapIndex {
			return true
		}
		if len(kinds) > 0 && !kinds[e.kind] {
			return true
		}
		if q.Radius >= 0 && w.TileDistance(q.Center, e.tile) > q.Radius {
			return true
		}
		out = append(out, e.object())
		return true
	})
	return out
}

func (w *World) PartyMembers() []sim.Object {
	out := []sim.Object{w.me().object()}
	w.ents.Each(func(_ types.EntityID, e *entity) bool {
		if e.party && e.mapIndex == w.mapIndex {
			out = append(out, e.object())
		}
		return true
	})
	return out
}

func (w *World) Map() (sim.MapInfo, bool) {
	if w.screen != screenGameplay {
		return sim.MapInfo{}, false
	}
	return sim.MapInfo{Index: w.mapIndex, Name: w.mapName, Elevation: w.me().elevation}, true
}

func (w *World) IsAnimating() bool { return w.anim > 0 || len(w.path) > 0 }

func (w *World) ForceIdle() {
	w.anim = 0
	w.path = nil
}

// --- Перемещение ---

func (w *World) MoveTo(tile int, run bool, apLimit int) error {
	if w.screen != screenGameplay {
		return fmt.Errorf("%w: not in gameplay", sim.ErrBlocked)
	}
	p := w.me()
	if p.dead {
		return fmt.Errorf("%w: player is dead", sim.ErrBlocked)
	}
	if w.combat != nil && !w.combat.playerTurn() {
		return fmt.Errorf("%w: not your turn", sim.ErrBlocked)
	}

	path := w.FindPath(p.tile, tile, p.elevation, MaxPathSteps)
	if len(path) == 0 {
		return fmt.Errorf("no path from %d to %d", p.tile, tile)
	}

	if w.combat != nil {
		budget := p.ap
		if apLimit >= 0 && apLimit < budget {
			budget = apLimit
		}
		if budget <= 0 {
			return fmt.Errorf("%w: no AP left", sim.ErrBlocked)
		}
		if len(path) > budget {
			path = path[:budget]
		}
		p.ap -= len(path)
	}

	w.path = path
	w.run = run
	return nil
}

func (w *World) CenterCamera(tile int) error {
	if !w.inBounds(tile) {
		return fmt.Errorf("%w: tile %d out of map", sim.ErrInvalid, tile)
	}
	return nil
}

func (w *World) ToggleSneak() bool {
	w.sneaking = !w.sneaking
	return w.sneaking
}

// walk продвигает текущее перемещение на один тик.
func (w *World) walk() {
	if len(w.path) == 0 {
		return
	}
	p := w.me()
	steps := 1
	if w.run && !w.sneaking {
		steps = 2
	}
	for i := 0; i < steps && len(w.path) > 0; i++ {
		next := w.path[0]
		if !w.passable(p.elevation, next, p) {
			w.path = nil
			w.message("Your path is blocked.")
			return
		}
		p.rotation = w.rotation(p.tile, next)
		p.tile = next
		w.path = w.path[1:]
		if w.stepOnExit(p) {
			w.path = nil
			return
		}
	}
}

// stepOnExit срабатывает, когда игрок наступил на выходную сетку.
func (w *World) stepOnExit(p *entity) bool {
	var exit *sim.ExitGrid
	w.ents.Each(func(_ types.EntityID, e *entity) bool {
		if e.kind == enums.KindMisc && e.exit != nil && e.mapIndex == w.mapIndex &&
			e.elevation == p.elevation && e.tile == p.tile {
			exit = e.exit
			return false
		}
		return true
	})
	if exit == nil {
		return false
	}
	if exit.Map < 0 {
		w.enterWorldMap()
		return true
	}
	w.transition(exit.Map, exit.MapName, exit.Elevation, exit.Tile)
	return true
}

// transition переносит игрока на другую карту или уровень.
func (w *World) transition(mapIndex int, name string, elevation, tile int) {
	p := w.me()
	changedMap := mapIndex != w.mapIndex
	changedElev := elevation != p.elevation

	w.path = nil
	w.anim = 0
	if changedMap {
		w.mapIndex = mapIndex
		if name != "" {
			w.mapName = name
		} else {
			w.mapName = fmt.Sprintf("map %d", mapIndex)
		}
		p.mapIndex = mapIndex
		w.endCombat("left the map")
	}
	p.elevation = elevation
	p.tile = tile

	switch {
	case changedMap:
		w.emit(sim.EventMapChange, true)
		w.message("You enter %s.", w.mapName)
	case changedElev:
		w.emit(sim.EventElevationChange, true)
	default:
		w.emit(sim.EventTeleport, true)
	}
}
