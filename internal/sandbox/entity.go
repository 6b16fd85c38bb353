package sandbox

import (
	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
)

// entity - любой объект карты. Поля заполнены по виду объекта.
type entity struct {
	id          types.EntityID
	kind        enums.ObjectKind
	pid         int
	name        string
	description string
	tile        int
	elevation   int
	mapIndex    int
	rotation    int

	// Существа.
	hp, maxHP int
	ap, maxAP int
	strength  int
	sequence  int
	hostile   bool
	team      int
	party     bool
	dead      bool
	talk      []DialogueNode
	trader    bool
	caps      int

	// Предметы на земле.
	itemType enums.ItemType
	quantity int

	// Декорации.
	scenery  enums.SceneryType
	open     bool
	locked   bool
	scripted bool

	// Содержимое: инвентарь существа, контейнера или предмета-контейнера.
	items []stack

	exit *sim.ExitGrid
}

func (e *entity) alive() bool {
	return e.kind == enums.KindCritter && !e.dead
}

// blocks - непроходимая клетка для поиска пути.
func (e *entity) blocks() bool {
	switch e.kind {
	case enums.KindCritter:
		return !e.dead
	case enums.KindScenery:
		return e.scenery == enums.SceneryDoor && !e.open
	}
	return false
}

func (e *entity) object() sim.Object {
	o := sim.Object{
		ID:        e.id,
		Kind:      e.kind,
		PID:       e.pid,
		Name:      e.name,
		Tile:      e.tile,
		Elevation: e.elevation,
	}
	switch e.kind {
	case enums.KindCritter:
		o.HP = e.hp
		o.MaxHP = e.maxHP
		o.Dead = e.dead
		o.Hostile = e.hostile
		o.Team = e.team
		o.PartyMember = e.party
	case enums.KindItem:
		o.ItemType = e.itemType
		o.Quantity = e.quantity
	case enums.KindScenery:
		o.SceneryType = e.scenery
		o.Open = e.open
		o.Locked = e.locked
		o.ItemCount = countItems(e.items)
		o.Scripted = e.scripted
	}
	if e.exit != nil {
		x := *e.exit
		o.Exit = &x
	}
	return o
}

// stack - пачка одинаковых предметов. ammo - патроны в магазине оружия.
type stack struct {
	pid  int
	qty  int
	ammo int
}

func countItems(items []stack) int {
	n := 0
	for _, s := range items {
		n += s.qty
	}
	return n
}

func findStack(items []stack, pid int) int {
	for i, s := range items {
		if s.pid == pid {
			return i
		}
	}
	return -1
}

func (w *World) addStack(items []stack, pid, qty int) []stack {
	if qty <= 0 {
		return items
	}
	if i := findStack(items, pid); i >= 0 && w.proto(pid).Weapon == nil {
		items[i].qty += qty
		return items
	}
	s := stack{pid: pid, qty: qty}
	if wp := w.proto(pid).Weapon; wp != nil {
		s.ammo = wp.AmmoCapacity
	}
	return append(items, s)
}

// takeStack снимает до qty единиц и возвращает, сколько снято.
func takeStack(items []stack, pid, qty int) ([]stack, int) {
	i := findStack(items, pid)
	if i < 0 || qty <= 0 {
		return items, 0
	}
	if items[i].qty > qty {
		items[i].qty -= qty
		return items, qty
	}
	n := items[i].qty
	return append(items[:i], items[i+1:]...), n
}

func (w *World) item(s stack) sim.Item {
	p := w.proto(s.pid)
	it := sim.Item{
		PID:      s.pid,
		Name:     p.Name,
		Type:     p.Type,
		Quantity: s.qty,
		Weight:   p.Weight * s.qty,
		Cost:     p.Cost,
	}
	if p.Weapon != nil {
		ws := *p.Weapon
		ws.AmmoCount = s.ammo
		it.Weapon = &ws
	}
	return it
}

func (w *World) items(in []stack) []sim.Item {
	out := make([]sim.Item, 0, len(in))
	for _, s := range in {
		out = append(out, w.item(s))
	}
	return out
}

func (w *World) value(in []stack) int {
	v := 0
	for _, s := range in {
		v += w.proto(s.pid).Cost * s.qty
	}
	return v
}
