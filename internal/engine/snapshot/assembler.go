package snapshot

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"agent-bridge/internal/config"
	"agent-bridge/internal/engine/detect"
	"agent-bridge/internal/sim"
	"agent-bridge/pkg/api"
	"agent-bridge/pkg/logger"
)

// MessageLogLimit - сколько последних строк журнала сообщений попадает в состояние.
const MessageLogLimit = 20

var (
	movieActions    = []string{"skip"}
	mainMenuActions = []string{"new_game", "load_game", "options", "credits", "intro", "exit"}
	selectorActions = []string{"create_custom", "take_premade", "modify_premade", "next", "previous", "back"}
	editorActions   = []string{
		"set_special", "select_traits", "tag_skills", "set_name", "finish_character_creation",
		"adjust_stat", "toggle_trait", "toggle_skill_tag", "editor_done",
		"skill_add", "skill_sub", "perk_add",
	}
)

// Frame - то, что мост знает о тике помимо симуляции.
type Frame struct {
	Tick       uint64
	Context    detect.Context
	TestMode   bool
	AutoCombat bool
	LastDebug  string
	Failures   map[string]int
	Pending    api.PendingView
	LookAt     string
	Query      json.RawMessage
	Selection  *api.DialogueSelectionView
}

// Assembler собирает StateSnapshot. Каждый блок пишется отдельно: если
// блок паникует, он просто отсутствует в документе, остальное остаётся.
type Assembler struct {
	sim   sim.Simulation
	cfg   config.Config
	cache *ObjectCache
	log   *logrus.Entry

	// Now подменяется в тестах.
	Now func() time.Time
}

func NewAssembler(s sim.Simulation, cfg config.Config) *Assembler {
	return &Assembler{
		sim:   s,
		cfg:   cfg,
		cache: NewObjectCache(cfg.ObjectEnumInterval),
		log:   logger.Component("snapshot"),
		Now:   time.Now,
	}
}

// Cache - кэш объектов, чтобы мост мог сбросить его после смены карты.
func (a *Assembler) Cache() *ObjectCache { return a.cache }

func (a *Assembler) section(name string, tick uint64, fn func()) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			a.log.WithFields(logrus.Fields{"section": name, "tick": tick}).Warnf("Snapshot section failed: %v", p)
		}
	}()
	fn()
	return true
}

func (a *Assembler) Build(f Frame) api.StateSnapshot {
	failures := f.Failures
	if failures == nil {
		failures = map[string]int{}
	}

	st := api.StateSnapshot{
		Tick:              f.Tick,
		TimestampMs:       a.Now().UnixMilli(),
		GameModeFlags:     []string{},
		TestMode:          f.TestMode,
		Context:           f.Context.String(),
		LastCommandDebug:  f.LastDebug,
		CommandFailures:   failures,
		Pending:           f.Pending,
		LookAtResult:      f.LookAt,
		QueryResult:       f.Query,
		DialogueSelection: f.Selection,
	}

	a.section("header", f.Tick, func() {
		mode := a.sim.GameMode()
		st.GameMode = uint32(mode)
		st.GameModeFlags = mode.Decode()
		st.GameState = a.sim.GameState()
		m := a.sim.Mouse()
		st.Mouse = api.MouseView{X: m.X, Y: m.Y, Buttons: m.Buttons, Visible: m.Visible}
		sc := a.sim.Screen()
		st.Screen = api.ScreenView{Width: sc.Width, Height: sc.Height}
		if p, ok := a.sim.Player(); ok && p.Dead {
			st.PlayerDead = true
		}
	})

	switch {
	case f.Context == detect.DeathScreen:
		st.PlayerDead = true
	case f.Context == detect.Movie:
		st.AvailableActions = movieActions
	case f.Context == detect.MainMenu:
		st.AvailableActions = mainMenuActions
		a.section("save_games", f.Tick, func() { st.SaveGames = a.saveGames() })
	case f.Context == detect.CharacterSelector:
		st.AvailableActions = selectorActions
		a.section("premade_characters", f.Tick, func() { st.PremadeCharacters = a.premades() })
	case f.Context == detect.CharacterEditor:
		st.AvailableActions = editorActions
		a.section("character", f.Tick, func() {
			v := characterView(a.sim.Character())
			if e, ok := a.sim.Editor(); ok {
				withEditor(v, e)
			}
			st.Character = v
		})
	case f.Context.IsGameplay():
		a.gameplay(&st, f)
	}
	return st
}

func (a *Assembler) saveGames() []api.SaveGameView {
	out := make([]api.SaveGameView, 0, a.cfg.SaveSlots)
	for slot := 1; slot <= a.cfg.SaveSlots; slot++ {
		info := a.sim.ProbeSaveSlot(slot)
		out = append(out, api.SaveGameView{
			Slot:          slot,
			Exists:        info.Exists,
			CharacterName: info.CharacterName,
			Description:   info.Description,
		})
	}
	return out
}

func (a *Assembler) premades() []api.PremadeView {
	list := a.sim.PremadeCharacters()
	out := make([]api.PremadeView, 0, len(list))
	for i, p := range list {
		out = append(out, api.PremadeView{Index: i, Name: p.Name, Description: p.Description})
	}
	return out
}

// gameplay пишет поля игровых контекстов.
//
// На карте мира выводятся только персонаж, инвентарь, отряд, журнал,
// квесты и сама карта мира. В инвентаре, луте и торговле карта, игрок
// и объекты не выводятся.
func (a *Assembler) gameplay(st *api.StateSnapshot, f Frame) {
	p, ok := a.sim.Player()
	if !ok {
		st.Error = "no player object"
		return
	}

	g := &api.GameplayView{}
	st.GameplayView = g

	a.section("game_time", f.Tick, func() { g.GameTime = gameTimeView(a.sim.GameTime()) })
	a.section("settings", f.Tick, func() {
		s := a.sim.Settings()
		g.Settings = &api.SettingsView{
			GameDifficulty:   s.GameDifficulty,
			CombatDifficulty: s.CombatDifficulty,
			AutoCombat:       f.AutoCombat,
		}
	})
	a.section("character", f.Tick, func() { st.Character = characterView(a.sim.Character()) })
	a.section("inventory", f.Tick, func() { g.Inventory = inventoryView(a.sim) })
	a.section("party_members", f.Tick, func() { g.PartyMembers = partyViews(a.sim, p) })
	a.section("message_log", f.Tick, func() {
		msgs := a.sim.MessageLog(MessageLogLimit)
		if msgs == nil {
			msgs = []string{}
		}
		g.MessageLog = &msgs
	})
	a.section("quests", f.Tick, func() { g.Quests = questViews(a.sim.Quests()) })

	if f.Context == detect.GameplayWorldmap {
		a.section("worldmap", f.Tick, func() {
			if w, ok := a.sim.WorldMap(); ok {
				g.Worldmap = worldmapView(w)
			}
		})
		return
	}

	var objs *api.ObjectsView
	switch f.Context {
	case detect.GameplayInventory, detect.GameplayLoot, detect.GameplayBarter:
	default:
		a.section("map", f.Tick, func() {
			if m, ok := a.sim.Map(); ok {
				g.Map = &api.MapView{MapIndex: m.Index, MapName: m.Name, Elevation: m.Elevation}
			}
		})
		a.section("player", f.Tick, func() {
			g.Player = &api.PlayerView{
				ID:         p.ID,
				Tile:       p.Tile,
				Elevation:  p.Elevation,
				Rotation:   p.Rotation,
				HP:         p.HP,
				MaxHP:      p.MaxHP,
				AP:         p.AP,
				MaxAP:      p.MaxAP,
				Busy:       a.sim.IsAnimating(),
				IsSneaking: p.Sneaking,
				Dead:       p.Dead,
				Neighbors:  a.sim.Neighbors(p.Tile),
			}
		})
		a.section("objects", f.Tick, func() {
			playerTurn := f.Context == detect.GameplayCombat
			v := a.cache.Objects(a.sim, p, f.Tick, playerTurn)
			objs = &v
			g.Objects = objs
		})
	}

	switch f.Context {
	case detect.GameplayCombat, detect.GameplayCombatWait:
		a.section("combat", f.Tick, func() {
			cs := a.sim.CombatState()
			cv := &api.CombatView{
				Round:      cs.Round,
				PlayerTurn: cs.PlayerTurn,
				CurrentAP:  p.AP,
				MaxAP:      p.MaxAP,
				FreeMove:   cs.FreeMove,
				Hostiles:   []api.CombatantView{},
			}
			if objs != nil {
				cv.Hostiles = hostiles(a.sim, *objs)
			}
			g.Combat = cv
		})
	case detect.GameplayDialogue:
		a.section("dialogue", f.Tick, func() {
			if d, ok := a.sim.Dialogue(); ok {
				g.Dialogue = dialogueView(d)
			}
		})
	case detect.GameplayLoot:
		a.section("loot", f.Tick, func() {
			if l, ok := a.sim.Loot(); ok {
				g.Loot = lootView(l)
			}
		})
	case detect.GameplayBarter:
		a.section("barter", f.Tick, func() {
			if b, ok := a.sim.Barter(); ok {
				g.Barter = barterView(b)
			}
		})
	}
}
