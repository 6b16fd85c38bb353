package engine

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-bridge/internal/config"
	"agent-bridge/internal/core/types"
	"agent-bridge/internal/engine/detect"
	"agent-bridge/internal/infrastructure/storage"
	"agent-bridge/internal/sandbox"
	"agent-bridge/internal/telemetry"
	"agent-bridge/internal/transport"
	"agent-bridge/pkg/logger"
)

func init() {
	logger.Discard()
}

var epoch = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

// rig - мост поверх песочницы 40x40 с игроком в (5,5).
type rig struct {
	t       *testing.T
	cfg     config.Config
	world   *sandbox.World
	bridge  *Bridge
	channel *transport.Channel
}

func newRig(t *testing.T, opts ...Option) *rig {
	t.Helper()
	cfg := config.New()
	cfg.Dir = t.TempDir()

	w := sandbox.New(sandbox.Options{Width: 40, Height: 40, Seed: 1})
	w.SetPlayerTile(w.Tile(5, 5))

	opts = append([]Option{WithClock(func() time.Time { return epoch })}, opts...)
	b := New(cfg, w, opts...)
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Exit() })

	b.SetManualContext(detect.ManualGameplay)
	return &rig{t: t, cfg: cfg, world: w, bridge: b, channel: transport.NewChannel(cfg.Dir)}
}

func (r *rig) send(cmds ...string) {
	r.t.Helper()
	doc := `{"commands":[`
	for i, c := range cmds {
		if i > 0 {
			doc += ","
		}
		doc += c
	}
	doc += `]}`
	require.NoError(r.t, r.channel.WriteCommands([]byte(doc)))
}

// view - поля состояния, которые проверяют тесты.
type view struct {
	Tick             uint64         `json:"tick"`
	Context          string         `json:"context"`
	LastCommandDebug string         `json:"last_command_debug"`
	CommandFailures  map[string]int `json:"command_failures"`
	Pending          struct {
		Movement int  `json:"movement_waypoints_remaining"`
		Attacks  int  `json:"pending_attacks"`
		Dialogue bool `json:"dialogue_selection"`
	} `json:"pending"`
	AvailableActions []string `json:"available_actions"`
	LookAtResult     string   `json:"look_at_result"`
}

func (r *rig) state() view {
	r.t.Helper()
	data, ok, err := r.channel.ReadState()
	require.NoError(r.t, err)
	require.True(r.t, ok, "state file missing")
	var v view
	require.NoError(r.t, json.Unmarshal(data, &v))
	return v
}

func (r *rig) commandLog() []telemetry.CommandRecord {
	r.t.Helper()
	f, err := os.Open(filepath.Join(r.cfg.TelemetryPath(), telemetry.CommandLogName+".ndjson"))
	require.NoError(r.t, err)
	defer f.Close()

	var out []telemetry.CommandRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec telemetry.CommandRecord
		require.NoError(r.t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(r.t, sc.Err())
	return out
}

func idArg(id types.EntityID) string {
	return strconv.Quote(strconv.FormatUint(uint64(id), 10))
}

func TestInitCleansStaleFiles(t *testing.T) {
	dir := t.TempDir()
	stale := transport.NewChannel(dir)
	require.NoError(t, stale.WriteCommands([]byte(`{"commands":[{"type":"skip"}]}`)))
	require.NoError(t, stale.WriteState([]byte(`{}`)))

	cfg := config.New()
	cfg.Dir = dir
	b := New(cfg, sandbox.New(sandbox.Options{Seed: 1}))
	require.NoError(t, b.Init())

	assert.False(t, stale.PendingCommands())
	_, ok, err := stale.ReadState()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = os.Stat(filepath.Join(cfg.TelemetryPath(), "session.json"))
	assert.NoError(t, err, "session descriptor written on init")

	require.NoError(t, b.Exit())
}

func TestTickWritesStateEveryTick(t *testing.T) {
	r := newRig(t)
	r.bridge.Tick()
	r.bridge.Tick()

	v := r.state()
	assert.Equal(t, uint64(2), v.Tick)
	assert.Equal(t, "gameplay_exploration", v.Context)
	assert.Empty(t, v.CommandFailures)
}

// Сценарий A: короткий путь - одно перемещение без очереди точек.
func TestMoveWithinSegmentCap(t *testing.T) {
	r := newRig(t)
	dest := r.world.Tile(10, 5)
	r.send(fmt.Sprintf(`{"type":"move_to","tile":%d}`, dest))
	r.bridge.Tick()

	v := r.state()
	assert.Contains(t, v.LastCommandDebug, "move_to: tile=")
	assert.NotContains(t, v.LastCommandDebug, "waypoints")
	assert.Equal(t, 0, v.Pending.Movement)
	assert.Equal(t, dest, r.world.Destination())

	log := r.commandLog()
	require.Len(t, log, 1)
	assert.Equal(t, "ok", log[0].Status)
	assert.False(t, log[0].Failure)
}

// Сценарий B: длинный путь режется на ceil(30/16) = 2 точки, первая
// выдаётся в том же тике.
func TestMoveBeyondSegmentCap(t *testing.T) {
	r := newRig(t)
	dest := r.world.Tile(35, 5)
	r.send(fmt.Sprintf(`{"type":"move_to","tile":%d}`, dest))
	r.bridge.Tick()

	v := r.state()
	assert.Contains(t, v.LastCommandDebug, "steps=30 waypoints=2")
	assert.Equal(t, 1, v.Pending.Movement)
	assert.True(t, r.world.IsAnimating(), "first segment issued")
	assert.NotEqual(t, dest, r.world.Destination())
}

func TestMapChangeCancelsMovement(t *testing.T) {
	r := newRig(t)
	r.send(fmt.Sprintf(`{"type":"move_to","tile":%d}`, r.world.Tile(35, 5)))
	r.bridge.Tick()
	require.Equal(t, 1, r.state().Pending.Movement)

	r.bridge.Notify(Event{Kind: EventMapChange, Active: true})
	r.bridge.Tick()
	assert.Equal(t, 0, r.state().Pending.Movement)
}

// Сценарий C: игрок занят анимацией, все пять атак уходят в очередь.
func TestAttackWhileBusyQueuesAll(t *testing.T) {
	r := newRig(t)
	rat := r.world.PlaceCritter(sandbox.Critter{Name: "Rat", Tile: r.world.Tile(6, 5), HP: 50, Hostile: true})
	require.NoError(t, r.world.RequestCombat())
	r.world.SetAnimating(5)

	r.send(fmt.Sprintf(`{"type":"attack","target_id":%s,"count":5}`, idArg(rat)))
	r.bridge.Tick()

	v := r.state()
	assert.Equal(t, "attack: queued 5 attacks (animation busy)", v.LastCommandDebug)
	assert.Equal(t, 5, v.Pending.Attacks)
	assert.Empty(t, v.CommandFailures)

	// Цель погибла: очередь сбрасывается и больше не оживает.
	r.world.Kill(rat)
	r.world.SetAnimating(0)
	r.bridge.Tick()
	assert.Equal(t, 0, r.state().Pending.Attacks)
	r.bridge.Tick()
	assert.Equal(t, 0, r.state().Pending.Attacks)
}

// Сценарий D: неизвестный тип не копит счётчик, но попадает в журнал
// с флагом неудачи.
func TestUnknownCommand(t *testing.T) {
	r := newRig(t)
	r.send(`{"type":"dance"}`)
	r.bridge.Tick()

	v := r.state()
	assert.Equal(t, "unknown_cmd: dance", v.LastCommandDebug)
	assert.NotContains(t, v.CommandFailures, "dance")

	log := r.commandLog()
	require.Len(t, log, 1)
	assert.Equal(t, "dance", log[0].Type)
	assert.Equal(t, "unknown_command", log[0].Status)
	assert.True(t, log[0].Failure)
}

// Сценарий E: три неудачи подряд дают 3, успех сбрасывает счётчик.
func TestFailureCounterResetsOnSuccess(t *testing.T) {
	r := newRig(t)
	for i := 0; i < 3; i++ {
		r.send(`{"type":"look_at","object_id":"999999"}`)
		r.bridge.Tick()
	}
	v := r.state()
	assert.Equal(t, 3, v.CommandFailures["look_at"])

	log := r.commandLog()
	require.Len(t, log, 3)
	assert.Equal(t, "failed", log[2].Status)
	assert.Equal(t, 3, log[2].ConsecutiveFailures)

	r.send(fmt.Sprintf(`{"type":"look_at","object_id":%s}`, idArg(r.world.PlayerID())))
	r.bridge.Tick()
	v = r.state()
	assert.NotContains(t, v.CommandFailures, "look_at")
	assert.NotEmpty(t, v.LookAtResult)
}

func TestMalformedBatchIsDeletedBeforeParse(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.channel.WriteCommands([]byte(`{"commands":[{"type":`)))
	r.bridge.Tick()

	assert.False(t, r.channel.PendingCommands(), "command file consumed")
	v := r.state()
	assert.Contains(t, v.LastCommandDebug, "batch discarded")
	assert.Empty(t, r.commandLog())

	// Тот же мусор не переигрывается на следующем тике.
	r.bridge.Tick()
	assert.Contains(t, r.state().LastCommandDebug, "batch discarded")
	assert.Equal(t, uint64(2), r.state().Tick)
}

func TestStatusOverlayExpires(t *testing.T) {
	r := newRig(t)
	r.bridge.cfg.StatusTTL = 3

	r.send(`{"type":"set_status","text":"thinking"}`)
	r.bridge.Tick()
	require.Equal(t, "thinking", r.world.Status())

	for i := 0; i < 3; i++ {
		r.bridge.Tick()
	}
	assert.Empty(t, r.world.Status())
}

func TestDeathScreenOverridesContext(t *testing.T) {
	r := newRig(t)
	r.send(fmt.Sprintf(`{"type":"move_to","tile":%d}`, r.world.Tile(35, 5)))
	r.bridge.Tick()

	r.bridge.Notify(Event{Kind: EventDeathScreen, Active: true})
	r.bridge.Tick()
	v := r.state()
	assert.Equal(t, "death_screen", v.Context)
	assert.Equal(t, 0, v.Pending.Movement)

	r.bridge.Notify(Event{Kind: EventDeathScreen, Active: false})
	r.bridge.Tick()
	assert.Equal(t, "gameplay_exploration", r.state().Context)
}

type framesSeen struct{ frames [][]byte }

func (f *framesSeen) Publish(frame []byte) { f.frames = append(f.frames, frame) }

func TestPublisherGetsEveryFrame(t *testing.T) {
	pub := &framesSeen{}
	r := newRig(t, WithPublisher(pub))
	r.bridge.Tick()
	r.bridge.Tick()

	require.Len(t, pub.frames, 2)
	data, _, err := r.channel.ReadState()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(pub.frames[1]))
}

func TestArchiveMirrorsCommandLog(t *testing.T) {
	archive, err := storage.Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })

	r := newRig(t, WithArchive(archive))
	desc, ok := r.bridge.Session()
	require.True(t, ok)

	r.send(`{"type":"dance"}`, `{"type":"set_status","text":"hi"}`)
	r.bridge.Tick()
	require.NoError(t, r.bridge.Exit())

	cmds, err := archive.Commands(desc.SessionID)
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, "dance", cmds[0].Type)
	assert.True(t, cmds[0].Failure)
	assert.Equal(t, "set_status", cmds[1].Type)
	assert.JSONEq(t, `{"text":"hi"}`, cmds[1].Args)

	sessions, err := archive.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].EndTick)
	assert.Equal(t, uint64(1), *sessions[0].EndTick)
}
