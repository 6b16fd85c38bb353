package snapshot

import (
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
	"agent-bridge/pkg/api"
)

// NearbyRadius - предметы на земле и декорации дальше этого не выводятся.
const NearbyRadius = 100

// ObjectCache держит последнее перечисление объектов карты. Полный обход
// дорогой, поэтому он делается раз в interval тиков, каждый тик в ход
// игрока в бою и сразу после ForceRefresh.
type ObjectCache struct {
	interval uint64
	last     uint64
	valid    bool
	cached   api.ObjectsView
	scans    int
}

func NewObjectCache(interval int) *ObjectCache {
	if interval < 1 {
		interval = 1
	}
	return &ObjectCache{interval: uint64(interval)}
}

// ForceRefresh - следующий Objects перечислит объекты заново.
func (c *ObjectCache) ForceRefresh() { c.valid = false }

// Scans - сколько раз выполнялся полный обход.
func (c *ObjectCache) Scans() int { return c.scans }

func (c *ObjectCache) stale(tick uint64, playerTurn bool) bool {
	return !c.valid || playerTurn || tick < c.last || tick-c.last >= c.interval
}

// Objects возвращает раскладку объектов вокруг игрока.
func (c *ObjectCache) Objects(s sim.Simulation, p sim.Player, tick uint64, playerTurn bool) api.ObjectsView {
	if !c.stale(tick, playerTurn) {
		return c.cached
	}
	c.cached = enumerate(s, p)
	c.last = tick
	c.valid = true
	c.scans++
	return c.cached
}

func enumerate(s sim.Simulation, p sim.Player) api.ObjectsView {
	out := api.ObjectsView{
		Critters:    []api.ObjectView{},
		GroundItems: []api.ObjectView{},
		Scenery:     []api.ObjectView{},
		ExitGrids:   []api.ObjectView{},
	}

	for _, o := range s.Objects(sim.ObjectQuery{Center: p.Tile, Radius: -1}) {
		if o.Elevation != p.Elevation {
			continue
		}
		dist := s.TileDistance(p.Tile, o.Tile)

		switch o.Kind {
		case enums.KindCritter:
			if o.ID == p.ID {
				continue
			}
			out.Critters = append(out.Critters, critterView(o, dist))
		case enums.KindItem:
			if dist > NearbyRadius {
				continue
			}
			out.GroundItems = append(out.GroundItems, groundItemView(o, dist))
		case enums.KindScenery:
			if dist > NearbyRadius || !interestingScenery(o) {
				continue
			}
			out.Scenery = append(out.Scenery, sceneryView(o, dist))
		case enums.KindMisc:
			if o.Exit == nil {
				continue
			}
			out.ExitGrids = append(out.ExitGrids, exitGridView(o, dist))
		}
	}
	return out
}

// interestingScenery: двери, переходы между уровнями, контейнеры и
// декорации со скриптом. Стены и прочий реквизит в состояние не идут.
func interestingScenery(o sim.Object) bool {
	switch o.SceneryType {
	case enums.SceneryDoor, enums.SceneryStairs, enums.SceneryElevator,
		enums.SceneryLadderUp, enums.SceneryLadderDown, enums.SceneryContainer:
		return true
	case enums.SceneryGeneric:
		return o.Scripted
	}
	return false
}
