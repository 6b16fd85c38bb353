package actions

import (
	"fmt"
	"strconv"
	"strings"

	"agent-bridge/internal/engine/handlers"
	"agent-bridge/pkg/api"
)

// Длинные переходы режутся на сегменты очередью движения; сам хендлер
// только запускает её.

func HandleMoveTo(ctx handlers.Context, p api.TilePayload) (handlers.Result, error) {
	return handlers.FromQueue(ctx.Movement.Start(ctx.Sim, *p.Tile, false))
}

func HandleRunTo(ctx handlers.Context, p api.TilePayload) (handlers.Result, error) {
	return handlers.FromQueue(ctx.Movement.Start(ctx.Sim, *p.Tile, true))
}

// HandleCombatMove - перемещение в бою, ограниченное оставшимися AP.
func HandleCombatMove(ctx handlers.Context, p api.TilePayload) (handlers.Result, error) {
	tile := *p.Tile

	if !ctx.Sim.InCombat() {
		return handlers.Blocked("combat_move: not in combat")
	}
	if ctx.Sim.IsAnimating() {
		return handlers.Blocked("combat_move: animation busy")
	}

	pl, err := player(ctx)
	if err != nil {
		return handlers.Result{}, err
	}
	if pl.AP <= 0 {
		return handlers.Blocked("combat_move: no AP remaining")
	}

	if err := ctx.Sim.MoveTo(tile, false, pl.AP); err != nil {
		return handlers.Result{}, fmt.Errorf("combat_move: tile=%d: %w", tile, err)
	}
	// Камера следует за целью, как при обычном клике по клетке.
	if err := ctx.Sim.CenterCamera(tile); err != nil {
		handlerLog("combat_move", ctx).WithError(err).Debug("Camera not centred")
	}

	return handlers.Ok("combat_move: tile=%d from=%d ap=%d", tile, pl.Tile, pl.AP)
}

// pathQuery - ответ find_path в query_result.
type pathQuery struct {
	Type       string `json:"type"`
	From       int    `json:"from"`
	To         int    `json:"to"`
	PathExists bool   `json:"path_exists"`
	PathLength int    `json:"path_length"`
	Waypoints  []int  `json:"waypoints"`
}

// HandleFindPath ничего не двигает: считает путь и раскладывает его на
// точки, каждую из которых можно пройти одним move_to.
func HandleFindPath(ctx handlers.Context, p api.FindPathPayload) (handlers.Result, error) {
	pl, err := player(ctx)
	if err != nil {
		return handlers.Result{}, err
	}

	from := pl.Tile
	if p.From != nil {
		from = *p.From
	}
	q := pathQuery{Type: "find_path", From: from, To: *p.To, Waypoints: []int{}}

	path := ctx.Sim.FindPath(from, q.To, pl.Elevation, ctx.Config.MaxPathSteps)
	if len(path) == 0 {
		if err := ctx.Session.SetQuery(q, ctx.Tick); err != nil {
			return handlers.Result{}, err
		}
		return handlers.Failed("find_path: no path from %d to %d (len=0)", from, q.To)
	}

	spacing := ctx.Config.FindPathSpacing
	for i, step := range path {
		if (i+1)%spacing == 0 || i == len(path)-1 {
			q.Waypoints = append(q.Waypoints, step)
		}
	}
	q.PathExists = true
	q.PathLength = len(path)

	if err := ctx.Session.SetQuery(q, ctx.Tick); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Ok("find_path: %d -> %d len=%d waypoints=[%s]", from, q.To, len(path), joinInts(q.Waypoints))
}

func HandleCenterCamera(ctx handlers.Context, p api.CameraPayload) (handlers.Result, error) {
	var tile int
	if p.Tile != nil {
		tile = *p.Tile
	} else {
		pl, err := player(ctx)
		if err != nil {
			return handlers.Result{}, err
		}
		tile = pl.Tile
	}
	if err := ctx.Sim.CenterCamera(tile); err != nil {
		return handlers.Result{}, fmt.Errorf("center_camera: %w", err)
	}
	return handlers.Ok("center_camera: tile=%d", tile)
}

func HandleToggleSneak(ctx handlers.Context) (handlers.Result, error) {
	if ctx.Sim.ToggleSneak() {
		return handlers.Ok("toggle_sneak: now sneaking")
	}
	return handlers.Ok("toggle_sneak: now not sneaking")
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
