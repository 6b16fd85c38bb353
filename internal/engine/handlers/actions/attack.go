package actions

import (
	"fmt"
	"sort"
	"strings"

	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/engine/handlers"
	"agent-bridge/internal/engine/queue"
	"agent-bridge/pkg/api"
)

// HandleAttack ставит атаку в очередь атак. Режим по умолчанию - текущий
// режим интерфейса, чтобы switch_hand и cycle_attack_mode имели эффект.
func HandleAttack(ctx handlers.Context, p api.AttackPayload) (handlers.Result, error) {
	// 1. Режим и зона
	mode := ctx.Sim.CurrentHitMode()
	if p.HitMode != "" {
		hand := ctx.Sim.ActiveHand()
		mode = enums.ResolveHitMode(p.HitMode, ctx.Sim.HasWeapon(hand), hand)
	}
	a := queue.Attack{
		Target:   p.TargetID,
		Mode:     mode,
		Location: enums.ParseHitLocation(p.HitLocation),
	}

	// 2. Очередь сама проверяет бой, цель и выполнимость выстрела
	return handlers.FromQueue(ctx.Attacks.Request(ctx.Sim, a, p.Repeats(ctx.Config.AttackRepeatCap)))
}

// HandleEndTurn сбрасывает отложенные атаки: они относились к этому ходу.
func HandleEndTurn(ctx handlers.Context) (handlers.Result, error) {
	if !ctx.Sim.InCombat() {
		return handlers.Blocked("end_turn: not in combat")
	}
	ap := 0
	if pl, ok := ctx.Sim.Player(); ok {
		ap = pl.AP
	}
	dropped := ctx.Attacks.Len()
	ctx.Attacks.Clear()

	if err := ctx.Sim.EndTurn(); err != nil {
		return handlers.Result{}, fmt.Errorf("end_turn: %w", err)
	}
	if dropped > 0 {
		return handlers.Ok("end_turn: ap=%d (%d queued attacks dropped)", ap, dropped)
	}
	return handlers.Ok("end_turn: ap=%d", ap)
}

func HandleEnterCombat(ctx handlers.Context) (handlers.Result, error) {
	if ctx.Sim.InCombat() {
		return handlers.NoOp("enter_combat: already in combat")
	}
	if err := ctx.Sim.RequestCombat(); err != nil {
		return handlers.Result{}, fmt.Errorf("enter_combat: %w", err)
	}
	return handlers.Ok("enter_combat: initiated")
}

// HandleFleeCombat - Enter в бою: хост завершает бой, если рядом нет врагов.
func HandleFleeCombat(ctx handlers.Context) (handlers.Result, error) {
	if !ctx.Sim.InCombat() {
		return handlers.Blocked("flee_combat: not in combat")
	}
	inject(ctx, enums.KeyReturn)
	return handlers.Ok("flee_combat: attempted")
}

// defaultAI - настройки боевого ИИ игрока при включении автобоя.
var defaultAI = map[string]string{
	"attack_who":       "strongest",
	"distance":         "charge",
	"best_weapon":      "no_pref",
	"chem_use":         "stims_when_hurt_lots",
	"run_away_mode":    "none",
	"area_attack_mode": "be_careful",
	"disposition":      "aggressive",
}

func HandleAutoCombat(ctx handlers.Context, p api.EnabledPayload) (handlers.Result, error) {
	s := ctx.Session
	switch {
	case p.Enabled == s.AutoCombat:
		if s.AutoCombat {
			return handlers.NoOp("auto_combat: already ON")
		}
		return handlers.NoOp("auto_combat: already OFF")
	case p.Enabled && !inGameplay(ctx):
		return handlers.Blocked("auto_combat: not in gameplay")
	}

	ctx.Sim.SetAutoCombat(p.Enabled)
	s.AutoCombat = p.Enabled
	if !p.Enabled {
		return handlers.Ok("auto_combat: OFF")
	}
	if err := ctx.Sim.ConfigureAI(defaultAI); err != nil {
		handlerLog("auto_combat", ctx).WithError(err).Warn("Default AI settings rejected")
	}
	return handlers.Ok("auto_combat: ON")
}

// HandleConfigureAI передаёт только заданные поля; значения проверяет хост.
func HandleConfigureAI(ctx handlers.Context, p api.CombatAIPayload) (handlers.Result, error) {
	if !ctx.Session.AutoCombat {
		return handlers.Blocked("configure_combat_ai: auto_combat not enabled")
	}

	settings := map[string]string{}
	for k, v := range map[string]string{
		"attack_who":       p.AttackWho,
		"distance":         p.Distance,
		"best_weapon":      p.BestWeapon,
		"chem_use":         p.ChemUse,
		"run_away_mode":    p.RunAwayMode,
		"area_attack_mode": p.AreaAttackMode,
		"disposition":      p.Disposition,
	} {
		if v != "" {
			settings[k] = v
		}
	}
	if len(settings) == 0 {
		return handlers.NoOp("configure_combat_ai: nothing to change")
	}

	if err := ctx.Sim.ConfigureAI(settings); err != nil {
		return handlers.Result{}, fmt.Errorf("configure_combat_ai: %w", err)
	}

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k+"="+settings[k])
	}
	sort.Strings(keys)
	return handlers.Ok("configure_combat_ai: %s", strings.Join(keys, " "))
}
