package actions

import (
	"fmt"

	"agent-bridge/internal/engine/handlers"
	"agent-bridge/pkg/api"
)

func HandleUseItem(ctx handlers.Context, p api.PIDPayload) (handlers.Result, error) {
	pid := *p.ItemPID
	if err := idle(ctx, "use_item"); err != nil {
		return handlers.Result{}, err
	}
	if err := ctx.Sim.UseItem(pid); err != nil {
		return handlers.Result{}, fmt.Errorf("use_item pid=%d: %w", pid, err)
	}
	return handlers.Ok("use_item: pid=%d (%s)", pid, ctx.Sim.ItemName(pid))
}

// HandleUseEquipped применяет предмет в активной руке. Для взрывчатки
// таймер нормализуется в 10..180 секунд.
func HandleUseEquipped(ctx handlers.Context, p api.UseEquippedPayload) (handlers.Result, error) {
	if err := idle(ctx, "use_equipped_item"); err != nil {
		return handlers.Result{}, err
	}
	timer := p.Timer()
	if err := ctx.Sim.UseEquippedItem(timer); err != nil {
		return handlers.Result{}, fmt.Errorf("use_equipped_item: %w", err)
	}
	return handlers.Ok("use_equipped_item: %s hand timer=%ds", ctx.Sim.ActiveHand(), timer)
}

func HandleUseCombatItem(ctx handlers.Context, p api.PIDPayload) (handlers.Result, error) {
	pid := *p.ItemPID
	if !ctx.Sim.InCombat() {
		return handlers.Blocked("use_combat_item: not in combat (use use_item)")
	}
	if err := idle(ctx, "use_combat_item"); err != nil {
		return handlers.Result{}, err
	}
	if err := ctx.Sim.UseCombatItem(pid); err != nil {
		return handlers.Result{}, fmt.Errorf("use_combat_item pid=%d: %w", pid, err)
	}
	return handlers.Ok("use_combat_item: pid=%d (%s)", pid, ctx.Sim.ItemName(pid))
}
