package actions

import (
	"fmt"
	"unicode/utf8"

	"agent-bridge/internal/engine/detect"
	"agent-bridge/internal/engine/handlers"
	"agent-bridge/pkg/api"
)

// HandleSelectDialogue подсвечивает вариант; сам выбор делает очередь
// выбора через DialogueDwell тиков.
func HandleSelectDialogue(ctx handlers.Context, p api.DialoguePayload) (handlers.Result, error) {
	return handlers.FromQueue(ctx.Selection.Request(ctx.Sim, *p.Index, ctx.Tick, ctx.Where))
}

// HandleFloatThought: в диалоге мысль рисуется оверлеем поверх окна
// диалога, иначе - всплывающим текстом над игроком.
func HandleFloatThought(ctx handlers.Context, p api.TextPayload) (handlers.Result, error) {
	pl, err := player(ctx)
	if err != nil {
		return handlers.Result{}, fmt.Errorf("float_thought: %w", err)
	}

	if ctx.Where == detect.GameplayDialogue {
		ctx.Sim.ShowDialogueThought(p.Text)
		return handlers.Ok("float_thought(overlay): %s", clip(p.Text, 40))
	}

	ctx.Sim.HideDialogueThought()
	ctx.Sim.FloatText(pl.ID, p.Text)
	return handlers.Ok("float_thought: %s", clip(p.Text, 40))
}

// clip режет строку по байтам, не разрывая руну.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
