package actions

import (
	"fmt"

	"agent-bridge/internal/engine/detect"
	"agent-bridge/internal/engine/handlers"
	"agent-bridge/pkg/api"
)

// HandleWorldmapTravel запускает пешее путешествие: случайные встречи
// и прибытие обрабатывает хост.
func HandleWorldmapTravel(ctx handlers.Context, p api.AreaPayload) (handlers.Result, error) {
	if ctx.Where != detect.GameplayWorldmap {
		return handlers.Blocked("worldmap_travel: not on world map")
	}
	area := *p.AreaID
	if err := ctx.Sim.Travel(area); err != nil {
		return handlers.Result{}, fmt.Errorf("worldmap_travel: area %d: %w", area, err)
	}
	return handlers.Ok("worldmap_travel: walking to area %d", area)
}

// HandleEnterLocation сразу загружает карту входа в локацию.
func HandleEnterLocation(ctx handlers.Context, p api.AreaPayload) (handlers.Result, error) {
	if ctx.Where != detect.GameplayWorldmap {
		return handlers.Blocked("worldmap_enter_location: not on world map")
	}
	area := *p.AreaID
	if err := ctx.Sim.EnterLocation(area, p.Entrance); err != nil {
		return handlers.Result{}, fmt.Errorf("worldmap_enter_location: area=%d entrance=%d: %w", area, p.Entrance, err)
	}
	ctx.Session.RequestRefresh()
	return handlers.Ok("worldmap_enter_location: area=%d entrance=%d", area, p.Entrance)
}
