package sandbox

import (
	"github.com/sirupsen/logrus"

	"agent-bridge/internal/sim"
)

// Константы генерации демонстрационной карты.
const (
	LayoutRooms   = 8
	LayoutMinRoom = 5
	LayoutMaxRoom = 12
)

// room - прямоугольник комнаты в клетках.
type room struct {
	x, y, w, h int
}

func (r room) center() (int, int) { return r.x + r.w/2, r.y + r.h/2 }

func (r room) intersects(o room) bool {
	return r.x <= o.x+o.w && r.x+r.w >= o.x && r.y <= o.y+o.h && r.y+r.h >= o.y
}

// Шаблоны существ демонстрационной карты.
var critterTemplates = map[string]Critter{
	"raider": {
		Name: "Raider", PID: 16777300, HP: 18, Strength: 6, Sequence: 5, Hostile: true,
		Description: "A scarred raider with a mean look.",
		Items:       []Stack{{PID: PIDKnife, Quantity: 1}},
		Caps:        15,
	},
	"rat": {
		Name: "Giant Rat", PID: 16777301, HP: 8, Strength: 3, Sequence: 6, Hostile: true,
		Description: "A rat the size of a dog.",
	},
	"trader": {
		Name: "Trader Jo", PID: 16777302, HP: 30, Strength: 5, Sequence: 3,
		Description: "A wiry merchant with a loaded pack.",
		Items: []Stack{
			{PID: PIDStimpak, Quantity: 3},
			{PID: PIDAmmo10mm, Quantity: 24},
			{PID: PIDLeather, Quantity: 1},
		},
		Caps:   500,
		Trader: true,
		Dialogue: []DialogueNode{
			{Reply: "Welcome, stranger. Looking to trade?", Options: []DialogueOption{
				{Text: "Let's trade.", Barter: true},
				{Text: "What is this place?", Next: 1},
				{Text: "Goodbye.", Next: -1},
			}},
			{Reply: "Just a ruin. Mind the raiders to the east.", Options: []DialogueOption{
				{Text: "Thanks. Let's trade.", Barter: true},
				{Text: "Goodbye.", Next: -1},
			}},
		},
	},
}

// layout - построитель карты из комнат и коридоров.
type layout struct {
	w     *World
	rooms []room
	open  map[int]bool
}

func (l *layout) randRange(lo, hi int) int { return l.w.rng.Intn(hi-lo+1) + lo }

func (l *layout) carve(x, y int) { l.open[l.w.Tile(x, y)] = true }

func (l *layout) carveRoom(r room) {
	for y := r.y + 1; y < r.y+r.h; y++ {
		for x := r.x + 1; x < r.x+r.w; x++ {
			l.carve(x, y)
		}
	}
}

func (l *layout) hCorridor(x1, x2, y int) {
	for x := min(x1, x2); x <= max(x1, x2); x++ {
		l.carve(x, y)
	}
}

func (l *layout) vCorridor(y1, y2, x int) {
	for y := min(y1, y2); y <= max(y1, y2); y++ {
		l.carve(x, y)
	}
}

// rooms режет комнаты без пересечений и соединяет соседние коридорами.
func (l *layout) carveRooms(maxRooms int) {
	w := l.w
	for i := 0; i < maxRooms; i++ {
		rw, rh := l.randRange(LayoutMinRoom, LayoutMaxRoom), l.randRange(LayoutMinRoom, LayoutMaxRoom)
		r := room{x: l.randRange(1, w.width-rw-2), y: l.randRange(1, w.height-rh-2), w: rw, h: rh}

		clash := false
		for _, o := range l.rooms {
			if r.intersects(o) {
				clash = true
				break
			}
		}
		if clash {
			continue
		}
		l.carveRoom(r)
		if n := len(l.rooms); n > 0 {
			px, py := l.rooms[n-1].center()
			cx, cy := r.center()
			if w.rng.Intn(2) == 0 {
				l.hCorridor(px, cx, py)
				l.vCorridor(py, cy, cx)
			} else {
				l.vCorridor(py, cy, px)
				l.hCorridor(px, cx, cy)
			}
		}
		l.rooms = append(l.rooms, r)
	}
}

// walls превращает всё невырезанное в стены.
func (l *layout) walls() {
	var tiles []int
	for t := 0; t < l.w.width*l.w.height; t++ {
		if !l.open[t] {
			tiles = append(tiles, t)
		}
	}
	l.w.Wall(tiles...)
}

// spot - свободная клетка комнаты рядом с центром.
func (l *layout) spot(r room, dx, dy int) int {
	cx, cy := r.center()
	t := l.w.Tile(cx+dx, cy+dy)
	if l.open[t] && !l.w.occupied(0, t, nil) {
		return t
	}
	return l.w.Tile(cx, cy)
}

func (l *layout) spawn(name string, r room, dx, dy int) {
	c, ok := critterTemplates[name]
	if !ok {
		return
	}
	c.Tile = l.spot(r, dx, dy)
	l.w.PlaceCritter(c)
}

// Generate строит демонстрационный мир: комнаты с торговцем, сундуком,
// противниками, лестницей вниз и выходом на карту мира.
func Generate(seed int64) *World {
	w := New(Options{Seed: seed, MapName: "Ruins"})
	l := &layout{w: w, open: make(map[int]bool)}
	l.carveRooms(LayoutRooms)
	for len(l.rooms) < 3 {
		l.carveRooms(LayoutRooms)
	}
	l.walls()

	first, second, last := l.rooms[0], l.rooms[1], l.rooms[len(l.rooms)-1]
	cx, cy := first.center()
	w.SetPlayerTile(w.Tile(cx, cy))

	w.PlaceBag(l.spot(first, 1, 0), Stack{PID: PIDStimpak, Quantity: 2}, Stack{PID: PIDAmmo10mm, Quantity: 12})
	w.PlaceItem(PIDPistol, 1, l.spot(first, -1, 0))
	w.PlaceItem(PIDDoorKey, 1, l.spot(first, 0, 1))
	w.PlaceShrine("Shrine", l.spot(first, 0, -1), "An old shrine covered in offerings.")

	l.spawn("trader", second, 0, 0)
	w.PlaceContainer("Footlocker", l.spot(second, 1, 1), true,
		Stack{PID: PIDDynamite, Quantity: 1}, Stack{PID: PIDCaps, Quantity: 50})

	for i, r := range l.rooms[2:] {
		if i%2 == 0 {
			l.spawn("raider", r, 0, 0)
		} else {
			l.spawn("rat", r, 1, 0)
			l.spawn("rat", r, -1, 0)
		}
	}

	w.PlaceStairs(l.spot(last, 1, 1), 1, l.spot(last, 1, 1))
	w.PlaceExit(l.spot(last, -1, -1), sim.ExitGrid{Map: -1})

	w.AddHolodisk("Vault 13 memo", "The water chip is failing.", true)
	w.AddHolodisk("Raider orders", "Hold the ruins at all costs.", false)

	w.log.WithFields(logrus.Fields{"seed": seed, "rooms": len(l.rooms)}).Info("Sandbox world generated")
	return w
}
