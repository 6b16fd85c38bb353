package actions

import (
	"errors"
	"fmt"

	"agent-bridge/internal/engine/handlers"
	"agent-bridge/internal/sim"
	"agent-bridge/pkg/api"
)

// HandleDrop бросает предметы по одному: хост умеет класть на землю только
// единицу за раз. Бросили часть - Ok, ничего - NoOp.
func HandleDrop(ctx handlers.Context, p api.ItemPayload) (handlers.Result, error) {
	pid, want := *p.ItemPID, p.QuantityOrDefault()
	if err := idle(ctx, "drop_item"); err != nil {
		return handlers.Result{}, err
	}

	dropped := 0
	for dropped < want {
		if err := ctx.Sim.DropItem(pid); err != nil {
			if errors.Is(err, sim.ErrNotFound) {
				break
			}
			if dropped == 0 {
				return handlers.Result{}, fmt.Errorf("drop_item pid=%d: %w", pid, err)
			}
			handlerLog("drop", ctx).WithError(err).Warn("Drop interrupted")
			break
		}
		dropped++
	}

	if dropped == 0 {
		return handlers.NoOp("drop_item: pid=%d not in inventory", pid)
	}
	ctx.Session.RequestRefresh()
	return handlers.Ok("drop_item: pid=%d (%s) dropped %d/%d", pid, ctx.Sim.ItemName(pid), dropped, want)
}
