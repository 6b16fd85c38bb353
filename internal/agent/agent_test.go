package agent

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-bridge/internal/config"
	"agent-bridge/internal/core/types"
	"agent-bridge/internal/engine"
	"agent-bridge/internal/sandbox"
	"agent-bridge/pkg/api"
	"agent-bridge/pkg/logger"
)

func init() {
	logger.Discard()
}

func TestClientSendRefusesToOverwrite(t *testing.T) {
	c := NewClient(t.TempDir())
	cmd, err := api.NewCommand("skip", nil)
	require.NoError(t, err)

	require.NoError(t, c.Send(cmd))
	assert.ErrorIs(t, c.Send(cmd), ErrPending)

	data, ok, err := c.Channel().PollCommands()
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"commands":[{"type":"skip"}]}`, string(data))

	assert.NoError(t, c.Send(cmd), "file consumed, next batch allowed")
}

func TestClientState(t *testing.T) {
	c := NewClient(t.TempDir())
	_, err := c.State()
	assert.ErrorIs(t, err, ErrNoState)

	require.NoError(t, c.Channel().WriteState([]byte(`{"tick":4,"context":"main_menu","pending":{}}`)))
	st, err := c.State()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), st.Tick)
	assert.Equal(t, "main_menu", st.Context)
}

func onlyType(t *testing.T, cmds []api.Command) string {
	t.Helper()
	require.Len(t, cmds, 1)
	return cmds[0].Type
}

func boolp(v bool) *bool { return &v }

func TestDecideByContext(t *testing.T) {
	b := NewBot(nil)
	tests := []struct {
		context string
		want    string
	}{
		{"movie", "skip"},
		{"death_screen", "skip"},
		{"main_menu", "main_menu"},
		{"character_selector", "char_selector_select"},
		{"character_editor", "finish_character_creation"},
		{"gameplay_barter", "barter_cancel"},
		{"gameplay_loot", "loot_close"},
	}
	for _, tt := range tests {
		if got := onlyType(t, b.Decide(api.StateSnapshot{Context: tt.context})); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.context, got, tt.want)
		}
	}
	assert.Empty(t, b.Decide(api.StateSnapshot{Context: "gameplay_combat_wait"}))
}

func TestExploreAttacksNearestHostile(t *testing.T) {
	far := types.PackEntityID(1, 0, 3)
	near := types.PackEntityID(1, 0, 4)
	st := api.StateSnapshot{
		Context: "gameplay_exploration",
		GameplayView: &api.GameplayView{
			Player: &api.PlayerView{Tile: 100, AP: 8},
			Objects: &api.ObjectsView{Critters: []api.ObjectView{
				{ID: far, Distance: 9, Hostile: boolp(true)},
				{ID: near, Distance: 2, Hostile: boolp(true)},
				{ID: types.PackEntityID(1, 0, 5), Distance: 1, Hostile: boolp(true), Dead: boolp(true)},
			}},
		},
	}

	b := NewBot(nil)
	cmds := b.Decide(st)
	require.Len(t, cmds, 2)
	assert.Equal(t, "set_status", cmds[0].Type)
	assert.Equal(t, "attack", cmds[1].Type)

	var p api.AttackPayload
	require.NoError(t, json.Unmarshal(cmds[1].Raw, &p))
	assert.Equal(t, near, p.TargetID)

	// Статус ставится один раз за жизнь бота.
	assert.Equal(t, "attack", onlyType(t, b.Decide(st)))
}

func TestCombatEndsTurnWithoutAP(t *testing.T) {
	st := api.StateSnapshot{
		Context: "gameplay_combat",
		GameplayView: &api.GameplayView{
			Player: &api.PlayerView{AP: 2},
			Objects: &api.ObjectsView{Critters: []api.ObjectView{
				{ID: types.PackEntityID(1, 0, 3), Distance: 1, Hostile: boolp(true)},
			}},
		},
	}
	assert.Equal(t, "end_turn", onlyType(t, NewBot(nil).Decide(st)))

	st.Pending.PendingAttacks = 2
	assert.Empty(t, NewBot(nil).Decide(st))
}

func TestDialoguePicksLastOption(t *testing.T) {
	st := api.StateSnapshot{
		Context: "gameplay_dialogue",
		GameplayView: &api.GameplayView{
			Dialogue: &api.DialogueView{Options: []api.DialogueOptionView{{Index: 0}, {Index: 1}, {Index: 2}}},
		},
	}
	cmds := NewBot(nil).Decide(st)
	require.Len(t, cmds, 1)
	assert.True(t, strings.Contains(string(cmds[0].Raw), `"index":2`))

	st.Pending.DialogueSelection = true
	assert.Empty(t, NewBot(nil).Decide(st))
}

// Автопилот проходит меню и выбор персонажа через настоящий мост.
func TestAutopilotReachesGameplay(t *testing.T) {
	cfg := config.New()
	cfg.Dir = t.TempDir()

	world := sandbox.New(sandbox.Options{Width: 30, Height: 30, Seed: 3})
	world.StartAtMainMenu()

	bridge := engine.New(cfg, world)
	require.NoError(t, bridge.Init())
	defer bridge.Exit()

	driver := engine.NewDriver(bridge, world)
	bot := NewBot(NewClient(cfg.Dir))

	reached := false
	for i := 0; i < 20 && !reached; i++ {
		driver.Step()
		require.NoError(t, bot.Step())
		reached = bridge.Context().IsGameplay()
	}
	assert.True(t, reached, "stuck in %s", bridge.Context())
}
