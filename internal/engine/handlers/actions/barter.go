package actions

import (
	"fmt"

	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/engine/handlers"
	"agent-bridge/internal/sim"
	"agent-bridge/pkg/api"
)

// barterMove - общий хендлер четырёх переносов между столами торговли.
func barterMove(op sim.BarterOp) handlers.TypedHandlerFunc[api.ItemPayload] {
	verb := "barter_" + op.String()
	return func(ctx handlers.Context, p api.ItemPayload) (handlers.Result, error) {
		if _, ok := ctx.Sim.Barter(); !ok {
			return handlers.Blocked("%s: not in barter", verb)
		}
		pid, qty := *p.ItemPID, p.QuantityOrDefault()
		if err := ctx.Sim.BarterMove(op, pid, qty); err != nil {
			return handlers.Result{}, fmt.Errorf("%s pid=%d: %w", verb, pid, err)
		}
		return handlers.Ok("%s: pid=%d (%s) qty=%d", verb, pid, ctx.Sim.ItemName(pid), qty)
	}
}

func HandleBarterConfirm(ctx handlers.Context) (handlers.Result, error) {
	b, ok := ctx.Sim.Barter()
	if !ok {
		return handlers.Blocked("barter_confirm: not in barter")
	}
	if len(b.PlayerOffer) == 0 && len(b.MerchantOffer) == 0 {
		return handlers.NoOp("barter_confirm: nothing on tables")
	}
	if err := ctx.Sim.BarterConfirm(); err != nil {
		return handlers.Result{}, fmt.Errorf("barter_confirm: %w", err)
	}
	return handlers.Ok("barter_confirm: offered %d for %d", b.PlayerOfferValue, b.MerchantOfferValue)
}

// HandleBarterTalk возвращает из торговли в диалог.
func HandleBarterTalk(ctx handlers.Context) (handlers.Result, error) {
	if _, ok := ctx.Sim.Barter(); !ok {
		return handlers.Blocked("barter_talk: not in barter")
	}
	k, _ := enums.KeyForChar('t')
	inject(ctx, k)
	return handlers.Ok("barter_talk")
}

func HandleBarterCancel(ctx handlers.Context) (handlers.Result, error) {
	if _, ok := ctx.Sim.Barter(); !ok {
		return handlers.Blocked("barter_cancel: not in barter")
	}
	inject(ctx, enums.KeyEscape)
	return handlers.Ok("barter_cancel")
}
