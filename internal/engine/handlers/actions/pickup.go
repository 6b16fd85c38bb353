package actions

import (
	"fmt"

	"agent-bridge/internal/engine/handlers"
	"agent-bridge/pkg/api"
)

// Лут: экран обмена с контейнером или телом уже открыт.

func HandleLootTake(ctx handlers.Context, p api.ItemPayload) (handlers.Result, error) {
	l, ok := ctx.Sim.Loot()
	if !ok {
		return handlers.Blocked("loot_take: no loot target")
	}

	pid, want := *p.ItemPID, p.QuantityOrDefault()
	taken, err := ctx.Sim.LootTake(pid, want)
	if err != nil {
		return handlers.Result{}, fmt.Errorf("loot_take pid=%d from %s: %w", pid, l.TargetName, err)
	}
	ctx.Session.RequestRefresh()
	if taken == 0 {
		return handlers.Failed("loot_take: item pid %d not in container", pid)
	}
	return handlers.Ok("loot_take: pid=%d (%s) qty=%d/%d", pid, ctx.Sim.ItemName(pid), taken, want)
}

func HandleLootTakeAll(ctx handlers.Context) (handlers.Result, error) {
	l, ok := ctx.Sim.Loot()
	if !ok {
		return handlers.Blocked("loot_take_all: no loot target")
	}

	taken, err := ctx.Sim.LootTakeAll()
	if err != nil && taken == 0 {
		return handlers.Result{}, fmt.Errorf("loot_take_all from %s: %w", l.TargetName, err)
	}
	if taken == 0 {
		return handlers.NoOp("loot_take_all: %s is empty", l.TargetName)
	}
	ctx.Session.RequestRefresh()
	if err != nil {
		return handlers.Ok("loot_take_all: took %d from %s, stopped: %v", taken, l.TargetName, err)
	}
	return handlers.Ok("loot_take_all: took %d from %s", taken, l.TargetName)
}

func HandleLootClose(ctx handlers.Context) (handlers.Result, error) {
	if _, ok := ctx.Sim.Loot(); !ok {
		return handlers.NoOp("loot_close: not looting")
	}
	if err := ctx.Sim.LootClose(); err != nil {
		return handlers.Result{}, fmt.Errorf("loot_close: %w", err)
	}
	ctx.Session.RequestRefresh()
	return handlers.Ok("loot_close")
}
