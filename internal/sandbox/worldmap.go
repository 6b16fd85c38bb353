package sandbox

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"agent-bridge/internal/sim"
)

// TravelTicksPerUnit - тиков пути на единицу расстояния карты мира.
const TravelTicksPerUnit = 2

type area struct {
	id        int
	name      string
	x, y      int
	known     bool
	visited   bool
	entrances []sim.Entrance
}

type worldMap struct {
	active  bool
	current int
	x, y    int

	walking   bool
	target    int
	remaining int

	areas []area
}

func defaultWorldMap() worldMap {
	return worldMap{
		areas: []area{
			{id: 0, name: "Arroyo", x: 10, y: 10, known: true, visited: true,
				entrances: []sim.Entrance{{Map: 0, Elevation: 0, Tile: 0, Known: true}}},
			{id: 1, name: "Klamath", x: 40, y: 20, known: true,
				entrances: []sim.Entrance{
					{Map: 1, Elevation: 0, Tile: 2020, Known: true},
					{Map: 1, Elevation: 0, Tile: 3030, Known: false},
				}},
			{id: 2, name: "The Den", x: 70, y: 35, known: false,
				entrances: []sim.Entrance{{Map: 2, Elevation: 0, Tile: 1500, Known: true}}},
		},
	}
}

func (m *worldMap) find(id int) (*area, bool) {
	for i := range m.areas {
		if m.areas[i].id == id {
			return &m.areas[i], true
		}
	}
	return nil, false
}

// enterWorldMap - игрок ушёл с локальной карты.
func (w *World) enterWorldMap() {
	w.path = nil
	w.endCombat("left the map")
	w.dialogue, w.loot = nil, nil
	w.closeBarter()
	w.world.active = true
	for _, a := range w.world.areas {
		for _, e := range a.entrances {
			if e.Map == w.mapIndex {
				w.world.current, w.world.x, w.world.y = a.id, a.x, a.y
			}
		}
	}
	w.message("You head out into the wasteland.")
}

func (w *World) WorldMap() (sim.WorldMapState, bool) {
	m := &w.world
	if !m.active {
		return sim.WorldMapState{}, false
	}
	st := sim.WorldMapState{CurrentArea: m.current, X: m.x, Y: m.y, Walking: m.walking}
	if a, ok := m.find(m.current); ok {
		st.CurrentAreaName = a.name
	}
	for _, a := range m.areas {
		st.Locations = append(st.Locations, sim.Location{
			AreaID:    a.id,
			Name:      a.name,
			Known:     a.known,
			Visited:   a.visited,
			Entrances: append([]sim.Entrance(nil), a.entrances...),
		})
	}
	return st, true
}

// Travel начинает пешее путешествие к известной локации.
func (w *World) Travel(areaID int) error {
	m := &w.world
	if !m.active {
		return fmt.Errorf("%w: not on world map", sim.ErrBlocked)
	}
	a, ok := m.find(areaID)
	if !ok {
		return fmt.Errorf("%w: area %d", sim.ErrInvalid, areaID)
	}
	if !a.known {
		return fmt.Errorf("%w: %s is not known yet", sim.ErrBlocked, a.name)
	}
	dist := max(abs(a.x-m.x), abs(a.y-m.y))
	m.walking = true
	m.target = areaID
	m.remaining = max(dist*TravelTicksPerUnit, 1)
	w.log.WithFields(logrus.Fields{"area": a.name, "ticks": m.remaining}).Info("World map travel started")
	return nil
}

// travel продвигает путешествие на тик.
func (w *World) travel() {
	m := &w.world
	if !m.active || !m.walking {
		return
	}
	a, _ := m.find(m.target)
	m.remaining--
	if m.remaining > 0 {
		// Движемся к цели по прямой, по единице за TravelTicksPerUnit тиков.
		if m.remaining%TravelTicksPerUnit == 0 {
			m.x += sign(a.x - m.x)
			m.y += sign(a.y - m.y)
		}
		return
	}
	m.walking = false
	m.x, m.y = a.x, a.y
	m.current = a.id
	w.message("You arrive at %s.", a.name)
}

func (w *World) EnterLocation(areaID, entrance int) error {
	m := &w.world
	if !m.active {
		return fmt.Errorf("%w: not on world map", sim.ErrBlocked)
	}
	a, ok := m.find(areaID)
	if !ok {
		return fmt.Errorf("%w: area %d", sim.ErrInvalid, areaID)
	}
	if !a.known {
		return fmt.Errorf("%w: %s is not known yet", sim.ErrBlocked, a.name)
	}
	if entrance < 0 || entrance >= len(a.entrances) {
		return fmt.Errorf("%w: entrance %d of %d", sim.ErrInvalid, entrance, len(a.entrances))
	}
	e := a.entrances[entrance]
	m.active, m.walking = false, false
	m.current, m.x, m.y = a.id, a.x, a.y
	a.visited = true

	if e.Map == w.mapIndex {
		p := w.me()
		p.elevation, p.tile = e.Elevation, e.Tile
		w.emit(sim.EventMapChange, true)
		return nil
	}
	w.transition(e.Map, a.name, e.Elevation, e.Tile)
	return nil
}
