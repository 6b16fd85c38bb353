package agent

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"agent-bridge/internal/core/types"
	"agent-bridge/pkg/api"
	"agent-bridge/pkg/logger"
)

// Bot - автопилот для прогона цикла без настоящего агента.
//
// Жизненный цикл:
//  1. Step читает состояние. Повтор того же тика пропускается.
//  2. Если прошлый батч ещё не забран, бот ждёт.
//  3. Decide выбирает команды по контексту, Send пишет батч.
type Bot struct {
	Client *Client

	lastTick  uint64
	statusSet bool
	log       *logrus.Entry
}

func NewBot(c *Client) *Bot {
	return &Bot{Client: c, log: logger.Component("autopilot")}
}

// Run шагает, пока не отменят ctx.
func (b *Bot) Run(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := b.Step(); err != nil {
				b.log.WithError(err).Warn("Autopilot step failed")
			}
		}
	}
}

// Step - одно решение. Возвращает nil, если решать пока нечего.
func (b *Bot) Step() error {
	st, err := b.Client.State()
	if errors.Is(err, ErrNoState) {
		return nil
	}
	if err != nil {
		return err
	}
	if st.Tick == b.lastTick {
		return nil
	}

	cmds := b.Decide(st)
	if len(cmds) == 0 {
		b.lastTick = st.Tick
		return nil
	}
	if err := b.Client.Send(cmds...); err != nil {
		if errors.Is(err, ErrPending) {
			return nil
		}
		return err
	}
	b.lastTick = st.Tick

	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Type
	}
	b.log.WithFields(logrus.Fields{"tick": st.Tick, "context": st.Context, "commands": names}).Debug("Autopilot sent batch")
	return nil
}

// Decide - это мозг бота. Решение принимается только по снимку состояния.
func (b *Bot) Decide(st api.StateSnapshot) []api.Command {
	switch st.Context {
	case "movie", "death_screen", "gameplay_inventory":
		return commands("skip", nil)
	case "main_menu":
		return commands("main_menu", map[string]any{"action": "new_game"})
	case "character_selector":
		return commands("char_selector_select", map[string]any{"option": "take_premade"})
	case "character_editor":
		return commands("finish_character_creation", nil)
	case "gameplay_exploration":
		return b.explore(st)
	case "gameplay_combat":
		return fight(st)
	case "gameplay_dialogue":
		return talk(st)
	case "gameplay_loot":
		if st.GameplayView != nil && st.Loot != nil && len(st.Loot.Items) > 0 {
			return commands("loot_take_all", nil)
		}
		return commands("loot_close", nil)
	case "gameplay_barter":
		return commands("barter_cancel", nil)
	}
	return nil
}

func (b *Bot) explore(st api.StateSnapshot) []api.Command {
	var out []api.Command
	if !b.statusSet {
		b.statusSet = true
		out = append(out, commands("set_status", map[string]any{"text": "autopilot"})...)
	}

	g := st.GameplayView
	if g == nil || g.Player == nil || g.Objects == nil {
		return out
	}
	if id, ok := nearestHostile(g.Objects.Critters); ok {
		return append(out, commands("attack", map[string]any{"target_id": id})...)
	}
	if g.Player.Busy || st.Pending.MovementWaypointsRemaining > 0 {
		return out
	}

	item, ok := nearest(g.Objects.GroundItems)
	if !ok {
		return out
	}
	if item.Distance <= 1 {
		return append(out, commands("pick_up", map[string]any{"object_id": item.ID})...)
	}
	return append(out, commands("move_to", map[string]any{"tile": item.Tile})...)
}

func fight(st api.StateSnapshot) []api.Command {
	g := st.GameplayView
	if g == nil || g.Player == nil || g.Objects == nil {
		return nil
	}
	if g.Player.Busy || st.Pending.PendingAttacks > 0 {
		return nil
	}
	id, ok := nearestHostile(g.Objects.Critters)
	if !ok || g.Player.AP < 3 {
		return commands("end_turn", nil)
	}
	return commands("attack", map[string]any{"target_id": id})
}

// talk выбирает последний вариант: обычно это прощание.
func talk(st api.StateSnapshot) []api.Command {
	if st.Pending.DialogueSelection || st.GameplayView == nil || st.Dialogue == nil {
		return nil
	}
	opts := st.Dialogue.Options
	if len(opts) == 0 {
		return commands("skip", nil)
	}
	return commands("select_dialogue", map[string]any{"index": opts[len(opts)-1].Index})
}

func nearestHostile(critters []api.ObjectView) (types.EntityID, bool) {
	var live []api.ObjectView
	for _, c := range critters {
		if c.Hostile != nil && *c.Hostile && (c.Dead == nil || !*c.Dead) {
			live = append(live, c)
		}
	}
	o, ok := nearest(live)
	return o.ID, ok
}

func nearest(objs []api.ObjectView) (api.ObjectView, bool) {
	if len(objs) == 0 {
		return api.ObjectView{}, false
	}
	best := objs[0]
	for _, o := range objs[1:] {
		if o.Distance < best.Distance {
			best = o
		}
	}
	return best, true
}

func commands(cmdType string, payload map[string]any) []api.Command {
	var p any
	if payload != nil {
		p = payload
	}
	c, err := api.NewCommand(cmdType, p)
	if err != nil {
		logger.Component("autopilot").WithError(err).Error("Command build failed")
		return nil
	}
	return []api.Command{c}
}
