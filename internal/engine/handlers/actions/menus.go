package actions

import (
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/engine/handlers"
	"agent-bridge/pkg/api"
)

// menuOption выполняет пункт главного меню. new_game, load_game, options
// и exit хост забирает через TakeMenuAction; intro и credits выбираются
// клавишей.
func menuOption(ctx handlers.Context, name string, slot int) (handlers.Result, error) {
	a, ok := enums.ParseMenuAction(name)
	if !ok {
		return handlers.BadArgs("main_menu: unknown action '%s'", name)
	}
	if k, viaKey := a.KeyFor(); viaKey {
		inject(ctx, k)
		return handlers.Ok("main_menu: %s", a)
	}

	ctx.Session.RequestMenuAction(a, slot)
	if a == enums.MenuLoadGame && slot > 0 {
		return handlers.Ok("main_menu: %s slot=%d", a, slot)
	}
	return handlers.Ok("main_menu: %s", a)
}

func HandleMainMenu(ctx handlers.Context, p api.MainMenuPayload) (handlers.Result, error) {
	slot := 0
	if p.Slot != nil {
		slot = *p.Slot
	}
	return menuOption(ctx, p.Action, slot)
}

func HandleMainMenuSelect(ctx handlers.Context, p api.OptionPayload) (handlers.Result, error) {
	return menuOption(ctx, p.Option, 0)
}

func HandleSelectorSelect(ctx handlers.Context, p api.OptionPayload) (handlers.Result, error) {
	o, ok := enums.ParseSelectorOption(p.Option)
	if !ok {
		return handlers.BadArgs("char_selector_select: unknown option '%s'", p.Option)
	}
	inject(ctx, o.Key())
	return handlers.Ok("char_selector_select: %s", o)
}

// HandleSkip - Escape: пропуск ролика или закрытие текущего экрана.
func HandleSkip(ctx handlers.Context) (handlers.Result, error) {
	ctx.Sim.EnqueueKey(int(enums.KeyEscape))
	return handlers.Ok("skip")
}
