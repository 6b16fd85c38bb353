package actions

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-bridge/internal/config"
	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/engine/detect"
	"agent-bridge/internal/engine/handlers"
	"agent-bridge/internal/engine/handlers/admin"
	"agent-bridge/internal/engine/queue"
	"agent-bridge/internal/sim"
	"agent-bridge/pkg/api"
	"agent-bridge/pkg/logger"
)

func init() {
	logger.Discard()
}

var (
	heroID  = types.PackEntityID(uint8(enums.KindCritter), 1, 0)
	ratID   = types.PackEntityID(uint8(enums.KindCritter), 1, 1)
	doorID  = types.PackEntityID(uint8(enums.KindScenery), 1, 2)
	crateID = types.PackEntityID(uint8(enums.KindScenery), 1, 3)
)

// fakeSim записывает вызовы; неиспользуемые методы паникуют через
// встроенный nil-интерфейс.
type fakeSim struct {
	sim.Simulation

	player    sim.Player
	objects   map[types.EntityID]sim.Object
	contents  map[types.EntityID][]sim.Item
	inventory []sim.Item
	combat    bool
	animating bool
	path      []int
	looting   bool
	fullMag   bool
	disks     []sim.Holodisk

	droppable int
	keys      []enums.Key
	codes     []int
	attacks   int
	moves     []int
	autoAI    map[string]string
	doors     []types.EntityID
	cameraErr error
}

func newFake() *fakeSim {
	return &fakeSim{
		player: sim.Player{ID: heroID, Tile: 500, AP: 6, MaxAP: 8, HP: 20, MaxHP: 30},
		objects: map[types.EntityID]sim.Object{
			heroID:  {ID: heroID, Kind: enums.KindCritter, Name: "Hero", Tile: 500},
			ratID:   {ID: ratID, Kind: enums.KindCritter, Name: "Rat", Tile: 503, Hostile: true},
			doorID:  {ID: doorID, Kind: enums.KindScenery, SceneryType: enums.SceneryDoor, Name: "Door", Tile: 501},
			crateID: {ID: crateID, Kind: enums.KindScenery, SceneryType: enums.SceneryContainer, Name: "Crate", Tile: 520},
		},
		contents: map[types.EntityID][]sim.Item{
			crateID: {{PID: 40, Name: "Stimpak", Quantity: 2}},
		},
		inventory: []sim.Item{{PID: 40, Name: "Stimpak", Quantity: 1}},
	}
}

func (f *fakeSim) Player() (sim.Player, bool)      { return f.player, true }
func (f *fakeSim) IsAnimating() bool               { return f.animating }
func (f *fakeSim) InCombat() bool                  { return f.combat }
func (f *fakeSim) RequestCombat() error            { f.combat = true; return nil }
func (f *fakeSim) CurrentHitMode() enums.HitMode   { return enums.HitModePunch }
func (f *fakeSim) ActiveHand() enums.Hand          { return enums.HandRight }
func (f *fakeSim) HasWeapon(enums.Hand) bool       { return false }
func (f *fakeSim) ItemName(pid int) string         { return fmt.Sprintf("item%d", pid) }
func (f *fakeSim) SimulateKey(k enums.Key, _ bool) { f.keys = append(f.keys, k) }
func (f *fakeSim) EnqueueKey(code int)             { f.codes = append(f.codes, code) }
func (f *fakeSim) Holodisks() []sim.Holodisk       { return f.disks }
func (f *fakeSim) SetAutoCombat(bool)              {}
func (f *fakeSim) Map() (sim.MapInfo, bool)        { return sim.MapInfo{Index: 1}, true }
func (f *fakeSim) CenterCamera(int) error          { return f.cameraErr }
func (f *fakeSim) Inventory() sim.Inventory        { return sim.Inventory{Items: f.inventory} }

func (f *fakeSim) Resolve(id types.EntityID) (sim.Object, bool) {
	o, ok := f.objects[id]
	return o, ok
}

func (f *fakeSim) Objects(sim.ObjectQuery) []sim.Object {
	out := make([]sim.Object, 0, len(f.objects))
	for _, id := range []types.EntityID{heroID, ratID, doorID, crateID} {
		if o, ok := f.objects[id]; ok {
			out = append(out, o)
		}
	}
	return out
}

func (f *fakeSim) Contents(id types.EntityID) ([]sim.Item, bool) {
	items, ok := f.contents[id]
	return items, ok
}

func (f *fakeSim) TileDistance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func (f *fakeSim) CheckShot(types.EntityID, enums.HitMode, bool) enums.ShotVerdict {
	return enums.ShotOK
}

func (f *fakeSim) Attack(types.EntityID, enums.HitMode, enums.HitLocation) error {
	f.attacks++
	return nil
}

func (f *fakeSim) DropItem(int) error {
	if f.droppable == 0 {
		return sim.ErrNotFound
	}
	f.droppable--
	return nil
}

func (f *fakeSim) UnequipItem(enums.Hand) (bool, error) { return false, nil }

func (f *fakeSim) ReloadWeapon(enums.Hand, int) (bool, error) { return f.fullMag, nil }

func (f *fakeSim) FindPath(_, _, _, _ int) []int { return f.path }

func (f *fakeSim) MoveTo(tile int, _ bool, _ int) error {
	f.moves = append(f.moves, tile)
	return nil
}

func (f *fakeSim) Loot() (sim.LootState, bool) {
	return sim.LootState{TargetName: "Crate"}, f.looting
}

func (f *fakeSim) ConfigureAI(s map[string]string) error {
	f.autoAI = s
	return nil
}

func (f *fakeSim) OpenDoor(id types.EntityID) error {
	f.doors = append(f.doors, id)
	return nil
}

type harness struct {
	reg *handlers.Registry
	ctx handlers.Context
	sim *fakeSim
}

func newHarness() *harness {
	f := newFake()
	r := handlers.NewRegistry(handlers.CharacterCreationPhases)
	Register(r)
	admin.Register(r)

	cfg := config.New()
	return &harness{
		reg: r,
		sim: f,
		ctx: handlers.Context{
			Sim:       f,
			Tick:      100,
			Config:    cfg,
			Where:     detect.GameplayExploration,
			Session:   handlers.NewSession(false),
			Movement:  queue.NewMovement(cfg.SegmentCap, cfg.WaypointCap, cfg.MaxPathSteps),
			Attacks:   queue.NewAttacks(),
			Selection: queue.NewSelection(cfg.DialogueDwell),
		},
	}
}

func (h *harness) run(t *testing.T, doc string) handlers.Result {
	t.Helper()
	var cmd api.Command
	require.NoError(t, json.Unmarshal([]byte(doc), &cmd))
	return h.reg.Dispatch(h.ctx, cmd)
}

func TestMainMenuActions(t *testing.T) {
	h := newHarness()
	h.ctx.Where = detect.MainMenu

	res := h.run(t, `{"type":"main_menu","action":"load_game","slot":3}`)
	assert.Equal(t, handlers.StatusOk, res.Status, res.Debug)
	a, ok := h.ctx.Session.TakeMenuAction()
	require.True(t, ok)
	assert.Equal(t, enums.MenuLoadGame, a)
	slot, ok := h.ctx.Session.TakePendingLoadSlot()
	require.True(t, ok)
	assert.Equal(t, 3, slot)

	res = h.run(t, `{"type":"main_menu_select","option":"intro"}`)
	assert.Equal(t, handlers.StatusOk, res.Status, res.Debug)
	require.Len(t, h.sim.keys, 1)
	_, ok = h.ctx.Session.TakeMenuAction()
	assert.False(t, ok, "intro is a key press, not a menu action")

	res = h.run(t, `{"type":"main_menu","action":"dance"}`)
	assert.Equal(t, handlers.StatusBadArgs, res.Status)

	res = h.run(t, `{"type":"char_selector_select","option":"sideways"}`)
	assert.Equal(t, handlers.StatusBadArgs, res.Status)

	res = h.run(t, `{"type":"skip"}`)
	assert.Equal(t, handlers.StatusOk, res.Status)
	assert.Equal(t, []int{int(enums.KeyEscape)}, h.sim.codes)
}

func TestIdempotentCommandsReportNoOp(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		setup func(h *harness)
		want  handlers.Status
	}{
		{"drop nothing", `{"type":"drop_item","item_pid":40,"quantity":3}`, nil, handlers.StatusNoOp},
		{"drop partial", `{"type":"drop_item","item_pid":40,"quantity":3}`, func(h *harness) { h.sim.droppable = 2 }, handlers.StatusOk},
		{"unequip empty hand", `{"type":"unequip_item","hand":"left"}`, nil, handlers.StatusNoOp},
		{"reload full", `{"type":"reload_weapon"}`, func(h *harness) { h.sim.fullMag = true }, handlers.StatusNoOp},
		{"reload alias", `{"type":"reload_weapon_with","ammo_pid":29}`, nil, handlers.StatusOk},
		{"loot_close not looting", `{"type":"loot_close"}`, nil, handlers.StatusNoOp},
		{"loot_take not looting", `{"type":"loot_take","item_pid":40}`, nil, handlers.StatusBlocked},
		{"clear_status hidden", `{"type":"clear_status"}`, nil, handlers.StatusNoOp},
		{"enter_combat in combat", `{"type":"enter_combat"}`, func(h *harness) { h.sim.combat = true }, handlers.StatusNoOp},
		{"auto_combat unchanged", `{"type":"auto_combat","enabled":false}`, nil, handlers.StatusNoOp},
		{"configure ai without auto", `{"type":"configure_combat_ai","distance":"charge"}`, nil, handlers.StatusBlocked},
		{"end_turn outside combat", `{"type":"end_turn"}`, nil, handlers.StatusBlocked},
		{"save slot out of range", `{"type":"save_slot","slot":11}`, nil, handlers.StatusBadArgs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			if tt.setup != nil {
				tt.setup(h)
			}
			res := h.run(t, tt.doc)
			assert.Equal(t, tt.want, res.Status, res.Debug)
		})
	}
}

func TestDropPartialRequestsRefresh(t *testing.T) {
	h := newHarness()
	h.sim.droppable = 2

	res := h.run(t, `{"type":"drop_item","item_pid":40,"quantity":5}`)
	assert.Equal(t, "drop_item: pid=40 (item40) dropped 2/5", res.Debug)
	assert.True(t, h.ctx.Session.TakeRefresh())
}

func TestAttackQueuesWhileBusy(t *testing.T) {
	h := newHarness()
	h.sim.combat = true
	h.sim.animating = true

	res := h.run(t, fmt.Sprintf(`{"type":"attack","target_id":"%d","count":4}`, uint64(ratID)))
	assert.Equal(t, handlers.StatusOk, res.Status, res.Debug)
	assert.Equal(t, 4, h.ctx.Attacks.Len())
	assert.Zero(t, h.sim.attacks)

	res = h.run(t, `{"type":"end_turn"}`)
	assert.Zero(t, h.ctx.Attacks.Len())
}

func TestAttackOutsideCombatEntersCombat(t *testing.T) {
	h := newHarness()

	res := h.run(t, fmt.Sprintf(`{"type":"attack","target_id":"%d"}`, uint64(ratID)))
	assert.Equal(t, handlers.StatusBlocked, res.Status)
	assert.True(t, h.sim.combat)
}

func TestFindPathQuery(t *testing.T) {
	h := newHarness()
	for i := 1; i <= 32; i++ {
		h.sim.path = append(h.sim.path, 500+i)
	}

	res := h.run(t, `{"type":"find_path","to":532}`)
	require.Equal(t, handlers.StatusOk, res.Status, res.Debug)
	assert.Empty(t, h.sim.moves, "find_path must not move the player")

	var q pathQuery
	require.NoError(t, json.Unmarshal(h.ctx.Session.Query(), &q))
	assert.True(t, q.PathExists)
	assert.Equal(t, 32, q.PathLength)
	assert.Equal(t, []int{515, 530, 532}, q.Waypoints)

	h.sim.path = nil
	res = h.run(t, `{"type":"find_path","to":900}`)
	assert.Equal(t, handlers.StatusFailed, res.Status)
}

func TestCombatMoveUsesRemainingAP(t *testing.T) {
	h := newHarness()

	res := h.run(t, `{"type":"combat_move","tile":505}`)
	assert.Equal(t, handlers.StatusBlocked, res.Status)

	h.sim.combat = true
	res = h.run(t, `{"type":"combat_move","tile":505}`)
	assert.Equal(t, handlers.StatusOk, res.Status, res.Debug)
	assert.Equal(t, []int{505}, h.sim.moves)

	res = h.run(t, `{"type":"move_to","tile":505}`)
	assert.Equal(t, handlers.StatusBlocked, res.Status)
}

func TestCombatMoveLogsCameraFailure(t *testing.T) {
	hook := logtest.NewLocal(logger.Log)
	level := logger.Log.GetLevel()
	logger.Log.SetLevel(logrus.DebugLevel)
	defer logger.Log.SetLevel(level)

	h := newHarness()
	h.sim.combat = true
	h.sim.cameraErr = errors.New("tile off screen")

	res := h.run(t, `{"type":"combat_move","tile":505}`)
	assert.Equal(t, handlers.StatusOk, res.Status, "camera is cosmetic, the move still counts")

	var found *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Data["component"] == "combat_move_handler" {
			found = e
		}
	}
	require.NotNil(t, found, "camera failure not logged")
	assert.Equal(t, logrus.DebugLevel, found.Level)
	err, _ := found.Data[logrus.ErrorKey].(error)
	assert.EqualError(t, err, "tile off screen")
}

func TestReadHolodisk(t *testing.T) {
	h := newHarness()
	h.sim.disks = []sim.Holodisk{{Name: "Vault log", Text: "day one", Acquired: true}, {Name: "Secret"}}

	assert.Equal(t, handlers.StatusFailed, h.run(t, `{"type":"read_holodisk","index":1}`).Status)

	res := h.run(t, `{"type":"read_holodisk","index":0}`)
	require.Equal(t, handlers.StatusOk, res.Status)
	var q holodiskQuery
	require.NoError(t, json.Unmarshal(h.ctx.Session.Query(), &q))
	assert.Equal(t, "day one", q.Text)

	// BadArgs не трогает состояние: прошлый результат остаётся на месте.
	before := string(h.ctx.Session.Query())
	res = h.run(t, `{"type":"read_holodisk","index":5}`)
	assert.Equal(t, handlers.StatusBadArgs, res.Status)
	assert.Contains(t, res.Debug, "index 5 out of range (0-1)")
	assert.Equal(t, before, string(h.ctx.Session.Query()))
}

func TestFindItemSearchesContainersAndInventory(t *testing.T) {
	h := newHarness()

	res := h.run(t, `{"type":"find_item","pid":40}`)
	require.Equal(t, handlers.StatusOk, res.Status)

	var q findItemQuery
	require.NoError(t, json.Unmarshal(h.ctx.Session.Query(), &q))
	require.Equal(t, 2, q.MatchCount)
	assert.Equal(t, "container", q.Matches[0].Location)
	assert.Equal(t, 2, q.Matches[0].Quantity)
	assert.Equal(t, "player_inventory", q.Matches[1].Location)
}

func TestAutoCombatAppliesDefaults(t *testing.T) {
	h := newHarness()

	res := h.run(t, `{"type":"auto_combat","enabled":true}`)
	require.Equal(t, handlers.StatusOk, res.Status)
	assert.True(t, h.ctx.Session.AutoCombat)
	assert.Equal(t, "charge", h.sim.autoAI["distance"])

	res = h.run(t, `{"type":"configure_combat_ai","distance":"stay_close","disposition":""}`)
	require.Equal(t, handlers.StatusOk, res.Status)
	assert.Equal(t, map[string]string{"distance": "stay_close"}, h.sim.autoAI)
}

func TestCheatsRequireTestMode(t *testing.T) {
	h := newHarness()
	open := fmt.Sprintf(`{"type":"open_door","object_id":"%d"}`, uint64(doorID))

	assert.Equal(t, handlers.StatusBlocked, h.run(t, open).Status)
	assert.Equal(t, handlers.StatusBlocked, h.run(t, `{"type":"teleport"}`).Status,
		"disabled test mode wins over missing args")

	assert.Equal(t, handlers.StatusOk, h.run(t, `{"type":"set_test_mode","enabled":true}`).Status)
	assert.True(t, h.ctx.Session.TestMode)

	res := h.run(t, open)
	assert.Equal(t, handlers.StatusOk, res.Status, res.Debug)
	assert.Equal(t, []types.EntityID{doorID}, h.sim.doors)

	d := h.sim.objects[doorID]
	d.Open = true
	h.sim.objects[doorID] = d
	assert.Equal(t, handlers.StatusNoOp, h.run(t, open).Status)

	assert.Equal(t, handlers.StatusNoOp, h.run(t, `{"type":"force_end_combat"}`).Status)
	assert.Equal(t, handlers.StatusBadArgs, h.run(t, `{"type":"teleport"}`).Status)
}
