// Package admin - читы тестового режима. Все команды, кроме
// set_test_mode, отклоняются, пока тестовый режим выключен.
package admin

import (
	"encoding/json"
	"fmt"

	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/engine/handlers"
	"agent-bridge/pkg/api"
)

func Register(r *handlers.Registry) {
	r.Register("set_test_mode", handlers.WithPayload(HandleSetTestMode))

	cheat(r, "map_transition", handlers.WithPayload(HandleMapTransition))
	cheat(r, "teleport", handlers.WithPayload(HandleTeleport))
	cheat(r, "detonate_at", handlers.WithPayload(HandleDetonate))
	cheat(r, "nudge", handlers.WithPayload(HandleNudge))
	cheat(r, "give_item", handlers.WithPayload(HandleGiveItem))
	cheat(r, "open_door", handlers.WithPayload(HandleOpenDoor))
	cheat(r, "force_end_combat", handlers.WithEmptyPayload(HandleForceEndCombat))
}

// cheat проверяет тестовый режим до разбора аргументов: выключенный
// режим важнее опечатки в команде.
func cheat(r *handlers.Registry, name string, h handlers.HandlerFunc) {
	r.Register(name, func(ctx handlers.Context, raw json.RawMessage) (handlers.Result, error) {
		if !ctx.Session.TestMode {
			return handlers.Blocked("%s: BLOCKED, test mode disabled (use set_test_mode to enable)", name)
		}
		return h(ctx, raw)
	})
}

func HandleSetTestMode(ctx handlers.Context, p api.EnabledPayload) (handlers.Result, error) {
	ctx.Session.TestMode = p.Enabled
	if p.Enabled {
		return handlers.Ok("set_test_mode: ON")
	}
	return handlers.Ok("set_test_mode: OFF")
}

func HandleMapTransition(ctx handlers.Context, p api.MapTransitionPayload) (handlers.Result, error) {
	m, elev, tile := *p.Map, *p.Elevation, *p.Tile
	if err := ctx.Sim.MapTransition(m, elev, tile, p.Rotation); err != nil {
		return handlers.Result{}, fmt.Errorf("map_transition: map=%d: %w", m, err)
	}
	ctx.Movement.Cancel()
	ctx.Session.RequestRefresh()
	return handlers.Ok("map_transition: map=%d elev=%d tile=%d rot=%d", m, elev, tile, p.Rotation)
}

// HandleTeleport: без elevation игрок остаётся на своём уровне.
func HandleTeleport(ctx handlers.Context, p api.TeleportPayload) (handlers.Result, error) {
	pl, ok := ctx.Sim.Player()
	if !ok {
		return handlers.Blocked("teleport: no player")
	}
	elev := pl.Elevation
	if p.Elevation != nil {
		elev = *p.Elevation
	}

	if err := ctx.Sim.Teleport(*p.Tile, elev); err != nil {
		return handlers.Result{}, fmt.Errorf("teleport: tile=%d elev=%d: %w", *p.Tile, elev, err)
	}
	ctx.Movement.Cancel()
	ctx.Session.RequestRefresh()
	return handlers.Ok("teleport: %d -> %d (elev %d -> %d)", pl.Tile, *p.Tile, pl.Elevation, elev)
}

func HandleDetonate(ctx handlers.Context, p api.DetonatePayload) (handlers.Result, error) {
	pid := p.ExplosivePID()
	if err := ctx.Sim.Detonate(*p.Tile, pid); err != nil {
		return handlers.Result{}, fmt.Errorf("detonate_at: tile=%d: %w", *p.Tile, err)
	}
	ctx.Session.RequestRefresh()
	return handlers.Ok("detonate_at: tile=%d pid=%d (%s)", *p.Tile, pid, ctx.Sim.ItemName(pid))
}

// HandleNudge сдвигает игрока на соседнюю клетку без анимации.
func HandleNudge(ctx handlers.Context, p api.TilePayload) (handlers.Result, error) {
	pl, ok := ctx.Sim.Player()
	if !ok {
		return handlers.Blocked("nudge: no player")
	}
	if d := ctx.Sim.TileDistance(pl.Tile, *p.Tile); d > 1 {
		return handlers.Failed("nudge: too far (dist=%d, max=1)", d)
	}
	if err := ctx.Sim.Nudge(*p.Tile); err != nil {
		return handlers.Result{}, fmt.Errorf("nudge: %w", err)
	}
	return handlers.Ok("nudge: %d -> %d", pl.Tile, *p.Tile)
}

func HandleGiveItem(ctx handlers.Context, p api.ItemPayload) (handlers.Result, error) {
	pid, qty := *p.ItemPID, p.QuantityOrDefault()
	if err := ctx.Sim.GiveItem(pid, qty); err != nil {
		return handlers.Result{}, fmt.Errorf("give_item pid=%d: %w", pid, err)
	}
	return handlers.Ok("give_item: pid=%d (%s) qty=%d", pid, ctx.Sim.ItemName(pid), qty)
}

// HandleOpenDoor открывает соседнюю дверь напрямую, минуя анимацию.
func HandleOpenDoor(ctx handlers.Context, p api.ObjectPayload) (handlers.Result, error) {
	door, ok := ctx.Sim.Resolve(p.ObjectID)
	if !ok {
		return handlers.Failed("open_door: object %s not found", p.ObjectID)
	}
	if door.Kind != enums.KindScenery || door.SceneryType != enums.SceneryDoor {
		return handlers.BadArgs("open_door: %s is not a door", door.Name)
	}
	if pl, ok := ctx.Sim.Player(); ok {
		if d := ctx.Sim.TileDistance(pl.Tile, door.Tile); d > 1 {
			return handlers.Failed("open_door: too far (dist=%d, need <=1)", d)
		}
	}
	if door.Locked {
		return handlers.Blocked("open_door: door is locked")
	}
	if door.Open {
		return handlers.NoOp("open_door: already open")
	}

	if err := ctx.Sim.OpenDoor(door.ID); err != nil {
		return handlers.Result{}, fmt.Errorf("open_door: %w", err)
	}
	ctx.Session.RequestRefresh()
	return handlers.Ok("open_door: %s at tile %d opened", door.Name, door.Tile)
}

func HandleForceEndCombat(ctx handlers.Context) (handlers.Result, error) {
	if !ctx.Sim.InCombat() {
		return handlers.NoOp("force_end_combat: not in combat")
	}
	ctx.Sim.ForceEndCombat()
	ctx.Attacks.Clear()
	return handlers.Ok("force_end_combat: combat ended")
}
