package actions

import (
	"fmt"

	"agent-bridge/internal/engine/handlers"
	"agent-bridge/pkg/api"
)

func HandleRest(ctx handlers.Context, p api.RestPayload) (handlers.Result, error) {
	if ctx.Sim.InCombat() {
		return handlers.Blocked("rest: cannot rest in combat")
	}
	hours := p.HoursClamped()

	interrupted, err := ctx.Sim.Rest(hours)
	if err != nil {
		return handlers.Result{}, fmt.Errorf("rest: %w", err)
	}

	note := ""
	if interrupted {
		note = " (interrupted)"
	}
	if pl, ok := ctx.Sim.Player(); ok {
		return handlers.Ok("rest: %d hours%s hp=%d/%d", hours, note, pl.HP, pl.MaxHP)
	}
	return handlers.Ok("rest: %d hours%s", hours, note)
}

// --- Сохранения ---
//
// Сохраняться и загружаться можно только из игры: в меню и редакторе
// хосту нечего сохранять.

func HandleQuickSave(ctx handlers.Context, p api.QuicksavePayload) (handlers.Result, error) {
	if !inGameplay(ctx) {
		return handlers.Blocked("quicksave: not in gameplay context")
	}
	desc := p.DescriptionOrDefault()
	if err := ctx.Sim.QuickSave(desc); err != nil {
		return handlers.Result{}, fmt.Errorf("quicksave: %w", err)
	}
	return handlers.Ok("quicksave: desc=%s", desc)
}

func HandleQuickLoad(ctx handlers.Context) (handlers.Result, error) {
	if !inGameplay(ctx) {
		return handlers.Blocked("quickload: not in gameplay context")
	}
	if err := ctx.Sim.QuickLoad(); err != nil {
		return handlers.Result{}, fmt.Errorf("quickload: %w", err)
	}
	resetQueues(ctx)
	ctx.Session.RequestRefresh()
	return handlers.Ok("quickload")
}

func HandleSaveSlot(ctx handlers.Context, p api.SaveSlotPayload) (handlers.Result, error) {
	if !inGameplay(ctx) {
		return handlers.Blocked("save_slot: not in gameplay context")
	}
	slot, desc := *p.Slot, p.DescriptionOrDefault()
	if slot > ctx.Config.SaveSlots {
		return handlers.BadArgs("save_slot: slot %d out of range (1..%d)", slot, ctx.Config.SaveSlots)
	}
	if err := ctx.Sim.SaveSlot(slot, desc); err != nil {
		return handlers.Result{}, fmt.Errorf("save_slot %d: %w", slot, err)
	}
	return handlers.Ok("save_slot: slot=%d desc=%s", slot, desc)
}

func HandleLoadSlot(ctx handlers.Context, p api.SaveSlotPayload) (handlers.Result, error) {
	if !inGameplay(ctx) {
		return handlers.Blocked("load_slot: not in gameplay context")
	}
	slot := *p.Slot
	if slot > ctx.Config.SaveSlots {
		return handlers.BadArgs("load_slot: slot %d out of range (1..%d)", slot, ctx.Config.SaveSlots)
	}
	if !ctx.Sim.ProbeSaveSlot(slot).Exists {
		return handlers.Failed("load_slot: slot %d is empty", slot)
	}
	if err := ctx.Sim.LoadSlot(slot); err != nil {
		return handlers.Result{}, fmt.Errorf("load_slot %d: %w", slot, err)
	}
	resetQueues(ctx)
	ctx.Session.RequestRefresh()
	return handlers.Ok("load_slot: slot=%d", slot)
}

// --- Оверлей статуса ---

func HandleSetStatus(ctx handlers.Context, p api.TextPayload) (handlers.Result, error) {
	ctx.Sim.ShowStatus(p.Text)
	ctx.Session.StatusShown(ctx.Tick)
	return handlers.Ok("set_status: %s", p.Text)
}

func HandleClearStatus(ctx handlers.Context) (handlers.Result, error) {
	if !ctx.Session.StatusVisible() {
		return handlers.NoOp("clear_status: no status shown")
	}
	ctx.Sim.HideStatus()
	ctx.Session.StatusHidden()
	return handlers.Ok("clear_status")
}

// HandleForceIdle прерывает анимацию игрока и все отложенные действия.
func HandleForceIdle(ctx handlers.Context) (handlers.Result, error) {
	ctx.Sim.ForceIdle()
	resetQueues(ctx)
	return handlers.Ok("force_idle: animation cleared")
}

func resetQueues(ctx handlers.Context) {
	ctx.Movement.Cancel()
	ctx.Attacks.Clear()
	ctx.Selection.Cancel()
}
