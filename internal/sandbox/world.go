// Package sandbox - простая симуляция в памяти, реализующая sim.Simulation.
//
// Квадратная сетка (tile = y*width + x), сущности в types.Arena, поиск
// пути обходом в ширину, пошаговый бой с очками действия. Правила
// намеренно примитивные: песочница нужна, чтобы мост можно было запустить
// и проверить целиком, без настоящего хоста.
//
// Мир не потокобезопасен. Им владеет цикл хоста: Advance и тик моста
// вызываются по очереди с одной горутины.
package sandbox

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
	"agent-bridge/pkg/logger"
)

// Размеры и темп по умолчанию.
const (
	DefaultWidth  = 80
	DefaultHeight = 60

	// TicksPerSecond - игровых тиков в секунде игрового времени.
	TicksPerSecond = 10
	// AttackTicks - сколько тиков длится анимация атаки.
	AttackTicks = 3
	// MessageLogCap - сколько строк журнала сообщений хранится.
	MessageLogCap = 200
)

type screen uint8

const (
	screenGameplay screen = iota
	screenMovie
	screenMainMenu
	screenSelector
	screenEditor
	screenDeath
)

// Options - параметры нового мира.
type Options struct {
	Width     int
	Height    int
	MapIndex  int
	MapName   string
	Seed      int64
	StartTile int
}

// World - состояние песочницы.
type World struct {
	width, height int
	mapIndex      int
	mapName       string
	walls         map[wallKey]bool

	ents    *types.Arena[*entity]
	player  types.EntityID
	catalog map[int]Proto
	rng     *rand.Rand
	log     *logrus.Entry

	screen     screen
	movieTicks int
	mode       enums.GameMode
	keys       []enums.Key
	quit       bool
	mouse      sim.Mouse
	events     []sim.Event

	anim     int
	path     []int
	run      bool
	sneaking bool

	inv        []stack
	left       *stack
	right      *stack
	armor      *stack
	hand       enums.Hand
	secondary  bool
	autoCombat bool
	aiSettings map[string]string

	combat   *combat
	dialogue *conversation
	loot     *lootSession
	barter   *barterSession
	world    worldMap

	sheet    sheet
	editor   *editorSession
	premades []premade
	selected int

	saves    map[int]save
	lastSave int

	status   string
	thought  string
	messages []string
	ticks    uint64
	disks    []sim.Holodisk
	quests   []sim.Quest
	fuses    []fuse
}

type wallKey struct {
	mapIndex  int
	elevation int
	tile      int
}

// New создает открытую карту с игроком на StartTile.
func New(opts Options) *World {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.MapName == "" {
		opts.MapName = "sandbox"
	}

	w := &World{
		width:      opts.Width,
		height:     opts.Height,
		mapIndex:   opts.MapIndex,
		mapName:    opts.MapName,
		walls:      make(map[wallKey]bool),
		ents:       types.NewArena[*entity](256),
		catalog:    DefaultCatalog(),
		rng:        rand.New(rand.NewSource(opts.Seed)),
		hand:       enums.HandRight,
		aiSettings: map[string]string{},
		sheet:      defaultSheet("Chosen One"),
		premades:   defaultPremades(),
		saves:      make(map[int]save),
		world:      defaultWorldMap(),
		quests: []sim.Quest{
			{Location: "Arroyo", Description: "Find the water chip"},
		},
		log: logger.Component("sandbox"),
	}

	w.player = w.insert(&entity{
		kind:     enums.KindCritter,
		name:     w.sheet.name,
		pid:      PIDPlayer,
		tile:     opts.StartTile,
		mapIndex: opts.MapIndex,
		hp:       w.sheet.derived().MaxHP,
		maxHP:    w.sheet.derived().MaxHP,
		team:     0,
		strength: w.sheet.special[enums.StatStrength],
		sequence: w.sheet.derived().Sequence,
	})
	w.resetAP()
	return w
}

func (w *World) insert(e *entity) types.EntityID {
	id, err := w.ents.Insert(uint8(e.kind), e)
	if err != nil {
		panic(fmt.Sprintf("sandbox: %v", err))
	}
	e.id = id
	return id
}

func (w *World) remove(id types.EntityID) {
	if err := w.ents.Remove(id); err != nil {
		w.log.WithField("id", id.String()).Debug("Remove of stale entity ignored")
	}
}

// get возвращает сущность текущей карты.
func (w *World) get(id types.EntityID) (*entity, bool) {
	e, ok := w.ents.Resolve(id)
	if !ok || e.mapIndex != w.mapIndex {
		return nil, false
	}
	return e, true
}

func (w *World) me() *entity {
	e, _ := w.ents.Resolve(w.player)
	return e
}

func (w *World) message(format string, args ...any) {
	w.messages = append(w.messages, fmt.Sprintf(format, args...))
	if n := len(w.messages); n > MessageLogCap {
		w.messages = w.messages[n-MessageLogCap:]
	}
}

func (w *World) emit(kind sim.EventKind, active bool) {
	w.events = append(w.events, sim.Event{Kind: kind, Active: active})
}

// --- Построение сцен ---

// Tile переводит координаты в номер клетки.
func (w *World) Tile(x, y int) int { return y*w.width + x }

// Wall ставит стены на текущем уровне.
func (w *World) Wall(tiles ...int) {
	elev := w.me().elevation
	for _, t := range tiles {
		w.walls[wallKey{w.mapIndex, elev, t}] = true
	}
}

// Critter - описание существа для PlaceCritter.
type Critter struct {
	Name        string
	PID         int
	Tile        int
	Elevation   int
	HP          int
	Strength    int
	Sequence    int
	Hostile     bool
	Team        int
	Party       bool
	Description string
	Items       []Stack
	Caps        int
	// Dialogue - корень разговора; nil - с существом не поговорить.
	Dialogue []DialogueNode
	Trader   bool
}

// Stack - предмет с количеством для сборки сцен.
type Stack struct {
	PID      int
	Quantity int
}

func (w *World) stacks(in []Stack) []stack {
	out := make([]stack, 0, len(in))
	for _, s := range in {
		out = w.addStack(out, s.PID, s.Quantity)
	}
	return out
}

func (w *World) PlaceCritter(c Critter) types.EntityID {
	if c.HP <= 0 {
		c.HP = 20
	}
	if c.Strength <= 0 {
		c.Strength = 5
	}
	if c.Sequence <= 0 {
		c.Sequence = 4
	}
	team := c.Team
	if c.Hostile && team == 0 {
		team = 1
	}
	return w.insert(&entity{
		kind:        enums.KindCritter,
		name:        c.Name,
		pid:         c.PID,
		tile:        c.Tile,
		elevation:   c.Elevation,
		mapIndex:    w.mapIndex,
		hp:          c.HP,
		maxHP:       c.HP,
		strength:    c.Strength,
		sequence:    c.Sequence,
		hostile:     c.Hostile,
		team:        team,
		party:       c.Party,
		description: c.Description,
		items:       w.stacks(c.Items),
		caps:        c.Caps,
		talk:        c.Dialogue,
		trader:      c.Trader,
	})
}

// PlaceItem кладёт предмет на землю текущего уровня.
func (w *World) PlaceItem(pid, quantity, tile int) types.EntityID {
	proto := w.proto(pid)
	if quantity <= 0 {
		quantity = 1
	}
	return w.insert(&entity{
		kind:        enums.KindItem,
		name:        proto.Name,
		pid:         pid,
		tile:        tile,
		elevation:   w.me().elevation,
		mapIndex:    w.mapIndex,
		itemType:    proto.Type,
		quantity:    quantity,
		description: proto.Description,
	})
}

// PlaceBag кладёт на землю предмет-контейнер с содержимым.
func (w *World) PlaceBag(tile int, items ...Stack) types.EntityID {
	id := w.PlaceItem(PIDBag, 1, tile)
	e, _ := w.get(id)
	e.items = w.stacks(items)
	return id
}

func (w *World) PlaceDoor(tile int, locked bool) types.EntityID {
	return w.insert(&entity{
		kind:        enums.KindScenery,
		name:        "Door",
		pid:         PIDDoor,
		tile:        tile,
		elevation:   w.me().elevation,
		mapIndex:    w.mapIndex,
		scenery:     enums.SceneryDoor,
		locked:      locked,
		description: "A sturdy wooden door.",
	})
}

func (w *World) PlaceContainer(name string, tile int, locked bool, items ...Stack) types.EntityID {
	return w.insert(&entity{
		kind:        enums.KindScenery,
		name:        name,
		pid:         PIDFootlocker,
		tile:        tile,
		elevation:   w.me().elevation,
		mapIndex:    w.mapIndex,
		scenery:     enums.SceneryContainer,
		locked:      locked,
		items:       w.stacks(items),
		description: "It might hold something useful.",
	})
}

// PlaceStairs - переход на другой уровень той же карты.
func (w *World) PlaceStairs(tile, toElevation, toTile int) types.EntityID {
	return w.insert(&entity{
		kind:        enums.KindScenery,
		name:        "Stairs",
		pid:         PIDStairs,
		tile:        tile,
		elevation:   w.me().elevation,
		mapIndex:    w.mapIndex,
		scenery:     enums.SceneryStairs,
		exit:        &sim.ExitGrid{Map: w.mapIndex, MapName: w.mapName, Elevation: toElevation, Tile: toTile},
		description: "Stairs leading to another level.",
	})
}

// PlaceExit ставит выходную сетку. Map < 0 ведёт на карту мира.
func (w *World) PlaceExit(tile int, to sim.ExitGrid) types.EntityID {
	dest := to
	return w.insert(&entity{
		kind:      enums.KindMisc,
		name:      "Exit grid",
		pid:       PIDExitGrid,
		tile:      tile,
		elevation: w.me().elevation,
		mapIndex:  w.mapIndex,
		exit:      &dest,
	})
}

// PlaceShrine - декорация со скриптом.
func (w *World) PlaceShrine(name string, tile int, description string) types.EntityID {
	return w.insert(&entity{
		kind:        enums.KindScenery,
		name:        name,
		pid:         PIDShrine,
		tile:        tile,
		elevation:   w.me().elevation,
		mapIndex:    w.mapIndex,
		scenery:     enums.SceneryGeneric,
		scripted:    true,
		description: description,
	})
}

// AddHolodisk добавляет голодиск в Pip-Boy.
func (w *World) AddHolodisk(name, text string, acquired bool) {
	w.disks = append(w.disks, sim.Holodisk{Name: name, Text: text, Acquired: acquired})
}

// SetPlayerTile переставляет игрока без событий.
func (w *World) SetPlayerTile(tile int) {
	w.me().tile = tile
}

// SetPlayerHP - для сцен с ранениями.
func (w *World) SetPlayerHP(hp int) {
	w.me().hp = hp
}

// PlayerID - ссылка на персонажа игрока.
func (w *World) PlayerID() types.EntityID { return w.player }

// Damage наносит урон существу в обход боя.
func (w *World) Damage(id types.EntityID, amount int) {
	if e, ok := w.get(id); ok {
		w.hurt(nil, e, amount)
	}
}

// Kill - существо умирает сразу.
func (w *World) Kill(id types.EntityID) {
	if e, ok := w.get(id); ok {
		w.hurt(nil, e, e.hp)
	}
}

// Despawn убирает объект с карты, его ссылки становятся устаревшими.
func (w *World) Despawn(id types.EntityID) {
	w.remove(id)
	w.emit(sim.EventContainerChange, true)
}

// --- Экраны ---

// StartAtMovie включает вступительный ролик.
func (w *World) StartAtMovie(ticks int) {
	w.screen = screenMovie
	w.movieTicks = ticks
}

// StartAtMainMenu - мир ждёт в главном меню.
func (w *World) StartAtMainMenu() {
	w.screen = screenMainMenu
}

// Quit - в главном меню выбрали выход.
func (w *World) Quit() bool { return w.quit }

// ManualContext - грубая подсказка хоста, как её передают мосту.
func (w *World) ManualContext() string {
	switch w.screen {
	case screenMainMenu:
		return "main_menu"
	case screenSelector:
		return "character_selector"
	case screenEditor:
		return "character_editor"
	case screenGameplay:
		return "gameplay"
	}
	return "none"
}

// DeathScreen - игрок погиб и хост показывает экран смерти.
func (w *World) DeathScreen() bool { return w.screen == screenDeath }

// TakeEvents отдаёт накопленные уведомления хоста и очищает их.
func (w *World) TakeEvents() []sim.Event {
	out := w.events
	w.events = nil
	return out
}

// Status и Thought - текущие оверлеи, для проверок.
func (w *World) Status() string  { return w.status }
func (w *World) Thought() string { return w.thought }

// Destination - конечная клетка текущего перемещения, -1 если стоим.
func (w *World) Destination() int {
	if len(w.path) == 0 {
		return -1
	}
	return w.path[len(w.path)-1]
}

// SetAnimating держит игрока занятым n тиков.
func (w *World) SetAnimating(n int) { w.anim = n }
