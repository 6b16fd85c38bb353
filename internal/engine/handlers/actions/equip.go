package actions

import (
	"fmt"

	"agent-bridge/internal/engine/handlers"
	"agent-bridge/pkg/api"
)

func HandleEquip(ctx handlers.Context, p api.EquipPayload) (handlers.Result, error) {
	pid := *p.ItemPID
	hand := p.HandOrDefault(ctx.Sim.ActiveHand())

	if err := ctx.Sim.EquipItem(pid, hand); err != nil {
		return handlers.Result{}, fmt.Errorf("equip_item pid=%d %s: %w", pid, hand, err)
	}
	return handlers.Ok("equip_item: pid=%d (%s) in %s hand", pid, ctx.Sim.ItemName(pid), hand)
}

func HandleUnequip(ctx handlers.Context, p api.HandPayload) (handlers.Result, error) {
	hand := p.HandOrDefault(ctx.Sim.ActiveHand())

	removed, err := ctx.Sim.UnequipItem(hand)
	if err != nil {
		return handlers.Result{}, fmt.Errorf("unequip_item %s: %w", hand, err)
	}
	if !removed {
		return handlers.NoOp("unequip_item: %s hand already empty", hand)
	}
	return handlers.Ok("unequip_item: %s hand", hand)
}

// HandleReload: ammo_pid не указан - подойдут любые подходящие патроны.
// Тот же хендлер отвечает на reload_weapon_with.
func HandleReload(ctx handlers.Context, p api.HandPayload) (handlers.Result, error) {
	hand := p.HandOrDefault(ctx.Sim.ActiveHand())
	ammo := 0
	if p.AmmoPID != nil {
		ammo = *p.AmmoPID
	}

	full, err := ctx.Sim.ReloadWeapon(hand, ammo)
	if err != nil {
		return handlers.Result{}, fmt.Errorf("reload_weapon %s: %w", hand, err)
	}
	if full {
		return handlers.NoOp("reload_weapon: %s weapon already full", hand)
	}
	return handlers.Ok("reload_weapon: %s hand ammo_pid=%d", hand, ammo)
}

func HandleSwitchHand(ctx handlers.Context) (handlers.Result, error) {
	return handlers.Ok("switch_hand: active=%s", ctx.Sim.SwitchHand())
}

func HandleCycleAttackMode(ctx handlers.Context) (handlers.Result, error) {
	return handlers.Ok("cycle_attack_mode: %s", ctx.Sim.CycleAttackMode())
}
