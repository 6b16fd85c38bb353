package snapshot

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-bridge/internal/config"
	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/engine/detect"
	"agent-bridge/internal/sim"
	"agent-bridge/pkg/logger"
)

func init() {
	logger.Discard()
}

var (
	playerID = types.PackEntityID(uint8(enums.KindCritter), 1, 0)
	raiderID = types.PackEntityID(uint8(enums.KindCritter), 1, 1)
	corpseID = types.PackEntityID(uint8(enums.KindCritter), 1, 2)
)

// stubSim отвечает только на то, что читает сборщик состояния.
type stubSim struct {
	sim.Simulation

	mode      enums.GameMode
	player    sim.Player
	hasPlayer bool
	objects   []sim.Object

	panicInventory bool
	objectCalls    int
}

func (s *stubSim) GameMode() enums.GameMode { return s.mode }
func (s *stubSim) GameState() int           { return 2 }
func (s *stubSim) Mouse() sim.Mouse         { return sim.Mouse{X: 10, Y: 20} }
func (s *stubSim) Screen() sim.Screen       { return sim.Screen{Width: 640, Height: 480} }
func (s *stubSim) Player() (sim.Player, bool) {
	return s.player, s.hasPlayer
}

func (s *stubSim) Objects(sim.ObjectQuery) []sim.Object {
	s.objectCalls++
	return s.objects
}

func (s *stubSim) TileDistance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func (s *stubSim) PartyMembers() []sim.Object       { return nil }
func (s *stubSim) Map() (sim.MapInfo, bool)         { return sim.MapInfo{Index: 4, Name: "arroyo"}, true }
func (s *stubSim) IsAnimating() bool                { return false }
func (s *stubSim) Neighbors(tile int) []int         { return []int{tile + 1} }
func (s *stubSim) GameTime() sim.GameTime           { return sim.GameTime{Year: 2241, Month: 7, Day: 25, Hour: 8} }
func (s *stubSim) Settings() sim.Settings           { return sim.Settings{GameDifficulty: "normal"} }
func (s *stubSim) Character() sim.CharacterSheet    { return sim.CharacterSheet{Name: "Chosen"} }
func (s *stubSim) ActiveHand() enums.Hand           { return enums.HandRight }
func (s *stubSim) CurrentHitMode() enums.HitMode    { return enums.HitModePunch }
func (s *stubSim) HasWeapon(enums.Hand) bool        { return false }
func (s *stubSim) MessageLog(int) []string          { return []string{"You see a raider."} }
func (s *stubSim) Quests() []sim.Quest              { return nil }
func (s *stubSim) CombatState() sim.CombatState     { return sim.CombatState{Round: 1, PlayerTurn: true} }
func (s *stubSim) PremadeCharacters() []sim.Premade { return []sim.Premade{{Name: "Narg"}} }

func (s *stubSim) ProbeSaveSlot(slot int) sim.SaveSlotInfo {
	return sim.SaveSlotInfo{Exists: slot == 2, CharacterName: "Chosen"}
}

func (s *stubSim) WorldMap() (sim.WorldMapState, bool) {
	return sim.WorldMapState{CurrentArea: 0, CurrentAreaName: "Arroyo"}, true
}

func (s *stubSim) HitChance(_ types.EntityID, mode enums.HitMode, loc enums.HitLocation) int {
	if mode != enums.HitModePunch {
		return -1
	}
	if loc == enums.HitLocationEyes {
		return 5
	}
	return 60
}

func (s *stubSim) Inventory() sim.Inventory {
	if s.panicInventory {
		var inv *sim.Inventory
		return *inv
	}
	return sim.Inventory{Items: []sim.Item{{PID: 41, Name: "Caps", Quantity: 50}}}
}

func world() *stubSim {
	return &stubSim{
		player:    sim.Player{ID: playerID, Tile: 1000, AP: 8, MaxAP: 8},
		hasPlayer: true,
		objects: []sim.Object{
			{ID: playerID, Kind: enums.KindCritter, Tile: 1000},
			{ID: raiderID, Kind: enums.KindCritter, Name: "Raider", Tile: 1005, Hostile: true},
			{ID: corpseID, Kind: enums.KindCritter, Name: "Corpse", Tile: 1002, Hostile: true, Dead: true},
			{Kind: enums.KindItem, Name: "Knife", Tile: 1010},
			{Kind: enums.KindItem, Name: "Far rock", Tile: 1200},
			{Kind: enums.KindItem, Name: "Upstairs", Tile: 1001, Elevation: 1},
			{Kind: enums.KindScenery, SceneryType: enums.SceneryDoor, Name: "Door", Tile: 1020, Locked: true},
			{Kind: enums.KindScenery, SceneryType: enums.SceneryGeneric, Name: "Bush", Tile: 1003},
			{Kind: enums.KindScenery, SceneryType: enums.SceneryGeneric, Name: "Shrine", Tile: 1004, Scripted: true},
			{Kind: enums.KindMisc, Tile: 1500, Exit: &sim.ExitGrid{Map: 5, MapName: "temple", Tile: 300}},
			{Kind: enums.KindMisc, Tile: 1501},
		},
	}
}

func assembler(s sim.Simulation) *Assembler {
	a := NewAssembler(s, config.New())
	a.Now = func() time.Time { return time.UnixMilli(1700000000000) }
	return a
}

func TestMainMenuSnapshot(t *testing.T) {
	st := assembler(world()).Build(Frame{Tick: 3, Context: detect.MainMenu})

	assert.Equal(t, "main_menu", st.Context)
	assert.Equal(t, mainMenuActions, st.AvailableActions)
	require.Len(t, st.SaveGames, 10)
	assert.Equal(t, 1, st.SaveGames[0].Slot)
	assert.True(t, st.SaveGames[1].Exists)
	assert.Nil(t, st.GameplayView)
	assert.Equal(t, int64(1700000000000), st.TimestampMs)
	assert.NotNil(t, st.CommandFailures)
}

func TestSelectorAndMovieSnapshots(t *testing.T) {
	a := assembler(world())

	st := a.Build(Frame{Context: detect.CharacterSelector})
	assert.Equal(t, selectorActions, st.AvailableActions)
	require.Len(t, st.PremadeCharacters, 1)
	assert.Equal(t, "Narg", st.PremadeCharacters[0].Name)

	st = a.Build(Frame{Context: detect.Movie})
	assert.Equal(t, []string{"skip"}, st.AvailableActions)
}

func TestWorldmapOmitsLocalMap(t *testing.T) {
	st := assembler(world()).Build(Frame{Context: detect.GameplayWorldmap})

	require.NotNil(t, st.GameplayView)
	assert.NotNil(t, st.Worldmap)
	assert.NotNil(t, st.Inventory)
	assert.NotNil(t, st.Character)
	assert.Nil(t, st.Map)
	assert.Nil(t, st.Player)
	assert.Nil(t, st.Objects)
}

func TestInventoryScreenOmitsMapAndObjects(t *testing.T) {
	for _, c := range []detect.Context{detect.GameplayInventory, detect.GameplayLoot, detect.GameplayBarter} {
		st := assembler(world()).Build(Frame{Context: c})
		assert.Nil(t, st.Map, c.String())
		assert.Nil(t, st.Objects, c.String())
		assert.NotNil(t, st.Inventory, c.String())
	}
}

func TestExplorationObjects(t *testing.T) {
	st := assembler(world()).Build(Frame{Tick: 1, Context: detect.GameplayExploration})
	require.NotNil(t, st.Objects)

	var critters, items, scenery []string
	for _, o := range st.Objects.Critters {
		critters = append(critters, o.Name)
	}
	for _, o := range st.Objects.GroundItems {
		items = append(items, o.Name)
	}
	for _, o := range st.Objects.Scenery {
		scenery = append(scenery, o.Name)
	}

	assert.Equal(t, []string{"Raider", "Corpse"}, critters)
	assert.Equal(t, []string{"Knife"}, items)
	assert.Equal(t, []string{"Door", "Shrine"}, scenery)
	require.Len(t, st.Objects.ExitGrids, 1)
	assert.Equal(t, "exit_grid", st.Objects.ExitGrids[0].Type)
	assert.Equal(t, 5, *st.Objects.ExitGrids[0].DestinationMap)

	door := st.Objects.Scenery[0]
	require.NotNil(t, door.Locked)
	assert.True(t, *door.Locked)

	require.NotNil(t, st.Player)
	assert.Equal(t, []int{1001}, st.Player.Neighbors)
	assert.Nil(t, st.Combat)
}

func TestCombatHostiles(t *testing.T) {
	st := assembler(world()).Build(Frame{Context: detect.GameplayCombat})
	require.NotNil(t, st.Combat)

	require.Len(t, st.Combat.Hostiles, 1)
	h := st.Combat.Hostiles[0]
	assert.Equal(t, "Raider", h.Name)
	assert.Len(t, h.HitChances, len(enums.HitLocations))
	assert.Equal(t, 5, h.HitChances["eyes"])
	assert.Equal(t, 60, h.HitChances["uncalled"])
	assert.True(t, st.Combat.PlayerTurn)
	assert.Equal(t, 8, st.Combat.CurrentAP)
}

func TestFailingSectionIsOmitted(t *testing.T) {
	s := world()
	s.panicInventory = true

	st := assembler(s).Build(Frame{Context: detect.GameplayExploration})
	require.NotNil(t, st.GameplayView)
	assert.Nil(t, st.Inventory)
	assert.NotNil(t, st.Player)
	assert.NotNil(t, st.GameTime)
}

func TestGameplayWithoutPlayer(t *testing.T) {
	s := world()
	s.hasPlayer = false

	st := assembler(s).Build(Frame{Context: detect.GameplayExploration})
	assert.Equal(t, "no player object", st.Error)
	assert.Nil(t, st.GameplayView)
}

func TestGameplayFieldsAtDocumentRoot(t *testing.T) {
	st := assembler(world()).Build(Frame{Tick: 9, Context: detect.GameplayExploration})

	data, err := json.Marshal(st)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"tick", "context", "pending", "command_failures", "map", "player", "objects", "game_time"} {
		assert.Contains(t, doc, key)
	}
	assert.NotContains(t, doc, "GameplayView")
	assert.NotContains(t, doc, "combat")
}

func TestObjectCacheInterval(t *testing.T) {
	s := world()
	c := NewObjectCache(10)

	c.Objects(s, s.player, 1, false)
	c.Objects(s, s.player, 5, false)
	c.Objects(s, s.player, 10, false)
	assert.Equal(t, 1, s.objectCalls)

	c.Objects(s, s.player, 11, false)
	assert.Equal(t, 2, s.objectCalls)

	c.ForceRefresh()
	c.Objects(s, s.player, 12, false)
	assert.Equal(t, 3, s.objectCalls)

	c.Objects(s, s.player, 13, true)
	c.Objects(s, s.player, 14, true)
	assert.Equal(t, 5, s.objectCalls)
	assert.Equal(t, 5, c.Scans())
}
