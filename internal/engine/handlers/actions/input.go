package actions

import (
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/engine/handlers"
	"agent-bridge/pkg/api"
)

func HandleMouseMove(ctx handlers.Context, p api.MouseMovePayload) (handlers.Result, error) {
	ctx.Sim.MouseMove(*p.X, *p.Y)
	return handlers.Ok("mouse_move: %d,%d", *p.X, *p.Y)
}

func HandleMouseClick(ctx handlers.Context, p api.MouseClickPayload) (handlers.Result, error) {
	right := p.Button == "right"
	ctx.Sim.MouseClick(*p.X, *p.Y, right)
	return handlers.Ok("mouse_click: %d,%d right=%t", *p.X, *p.Y, right)
}

func HandleKeyPress(ctx handlers.Context, p api.KeyPayload) (handlers.Result, error) {
	k, _ := enums.ParseKey(p.Key)
	ctx.Sim.SimulateKey(k, true)
	return handlers.Ok("key_press: %s", k)
}

func HandleKeyRelease(ctx handlers.Context, p api.KeyPayload) (handlers.Result, error) {
	k, _ := enums.ParseKey(p.Key)
	ctx.Sim.SimulateKey(k, false)
	return handlers.Ok("key_release: %s", k)
}

// HandleInputEvent кладёт сырой код прямо в очередь ввода хоста.
func HandleInputEvent(ctx handlers.Context, p api.InputEventPayload) (handlers.Result, error) {
	ctx.Sim.EnqueueKey(*p.KeyCode)
	return handlers.Ok("input_event: code=%d", *p.KeyCode)
}
