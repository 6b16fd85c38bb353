package telemetry

import (
	"fmt"
	"time"

	"agent-bridge/internal/engine/detect"
)

// Observation - то, что трекер сравнивает от тика к тику.
type Observation struct {
	Tick      uint64
	Context   detect.Context
	HasPlayer bool
	HP        int
	Tile      int
	Map       int
	Elevation int
	InCombat  bool
	Dead      bool
}

// DeltaTracker помнит прошлые значения и превращает изменения в записи
// журнала состояния.
type DeltaTracker struct {
	seen bool
	prev Observation
}

func NewDeltaTracker() *DeltaTracker { return &DeltaTracker{} }

func (t *DeltaTracker) Observe(now time.Time, o Observation) []DeltaRecord {
	ts := now.UnixMilli()
	rec := func(event string, from, to any) DeltaRecord {
		return DeltaRecord{TS: ts, Tick: o.Tick, Event: event, From: from, To: to}
	}

	if !t.seen {
		t.seen = true
		t.prev = o
		return []DeltaRecord{rec("context", nil, o.Context.String())}
	}

	p := t.prev
	t.prev = o
	var out []DeltaRecord

	if p.Context != o.Context {
		out = append(out, rec("context", p.Context.String(), o.Context.String()))
	}
	if p.InCombat != o.InCombat {
		if o.InCombat {
			out = append(out, rec("combat_start", nil, nil))
		} else {
			out = append(out, rec("combat_end", nil, nil))
		}
	}

	// Без игрока (меню, загрузка) сравнивать нечего, а первое появление
	// игрока не считается изменением.
	if !o.HasPlayer || !p.HasPlayer {
		return out
	}

	if p.Map != o.Map {
		out = append(out, rec("map_change", p.Map, o.Map))
	} else if p.Elevation != o.Elevation {
		out = append(out, rec("elevation_change", p.Elevation, o.Elevation))
	}
	if p.HP != o.HP {
		r := rec("hp", p.HP, o.HP)
		r.Detail = fmt.Sprintf("%+d", o.HP-p.HP)
		out = append(out, r)
	}
	if p.Tile != o.Tile && p.Map == o.Map {
		out = append(out, rec("tile", p.Tile, o.Tile))
	}
	if o.Dead && !p.Dead {
		out = append(out, rec("player_death", nil, nil))
	}
	return out
}
