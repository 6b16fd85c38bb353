package sandbox

import (
	"github.com/sirupsen/logrus"

	"agent-bridge/internal/core/types"
)

// Восемь направлений; порядок задаёт поворот персонажа.
var directions = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

func (w *World) xy(tile int) (int, int) { return tile % w.width, tile / w.width }

func (w *World) inBounds(tile int) bool {
	return tile >= 0 && tile < w.width*w.height
}

func (w *World) wall(elevation, tile int) bool {
	return w.walls[wallKey{w.mapIndex, elevation, tile}]
}

// TileDistance - расстояние Чебышёва: диагональный шаг стоит как прямой.
func (w *World) TileDistance(a, b int) int {
	ax, ay := w.xy(a)
	bx, by := w.xy(b)
	return max(abs(ax-bx), abs(ay-by))
}

func (w *World) step(tile, dir int) (int, bool) {
	x, y := w.xy(tile)
	x += directions[dir][0]
	y += directions[dir][1]
	if x < 0 || x >= w.width || y < 0 || y >= w.height {
		return 0, false
	}
	return w.Tile(x, y), true
}

// Neighbors - соседние клетки без стен на уровне игрока.
func (w *World) Neighbors(tile int) []int {
	elev := w.me().elevation
	out := make([]int, 0, len(directions))
	for d := range directions {
		n, ok := w.step(tile, d)
		if !ok || w.wall(elev, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// occupied - клетка занята живым существом или закрытой дверью.
func (w *World) occupied(elevation, tile int, self *entity) bool {
	blocked := false
	w.ents.Each(func(_ types.EntityID, e *entity) bool {
		if e == self || e.mapIndex != w.mapIndex || e.elevation != elevation || e.tile != tile {
			return true
		}
		if e.blocks() {
			blocked = true
			return false
		}
		return true
	})
	return blocked
}

// blockers - все занятые клетки уровня одним обходом арены.
func (w *World) blockers(elevation int, self *entity) map[int]bool {
	out := make(map[int]bool)
	w.ents.Each(func(_ types.EntityID, e *entity) bool {
		if e != self && e.mapIndex == w.mapIndex && e.elevation == elevation && e.blocks() {
			out[e.tile] = true
		}
		return true
	})
	return out
}

func (w *World) passable(elevation, tile int, self *entity) bool {
	return w.inBounds(tile) && !w.wall(elevation, tile) && !w.occupied(elevation, tile, self)
}

// FindPath - обход в ширину. Путь без стартовой клетки; пусто, если цель
// недостижима или дальше maxSteps шагов. Занятая цель недостижима.
func (w *World) FindPath(from, to, elevation, maxSteps int) []int {
	if from == to || !w.inBounds(from) || !w.inBounds(to) {
		return nil
	}
	blocked := w.blockers(elevation, w.me())
	free := func(t int) bool { return !w.wall(elevation, t) && !blocked[t] }
	if !free(to) {
		return nil
	}

	prev := map[int]int{from: from}
	depth := map[int]int{from: 0}
	frontier := []int{from}

	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		if depth[cur] >= maxSteps {
			continue
		}
		for d := range directions {
			n, ok := w.step(cur, d)
			if !ok {
				continue
			}
			if _, seen := prev[n]; seen {
				continue
			}
			if !free(n) {
				continue
			}
			prev[n] = cur
			depth[n] = depth[cur] + 1
			if n == to {
				return unwind(prev, from, to)
			}
			frontier = append(frontier, n)
		}
	}
	return nil
}

func unwind(prev map[int]int, from, to int) []int {
	var path []int
	for t := to; t != from; t = prev[t] {
		path = append(path, t)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// lineOfSight - прямая видимость по Брезенхэму. Стартовая и конечная
// клетки не проверяются, мешают только стены и границы.
func (w *World) lineOfSight(elevation, from, to int) bool {
	if from == to {
		return true
	}
	x0, y0 := w.xy(from)
	x1, y1 := w.xy(to)

	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx - dy

	for {
		t := w.Tile(x0, y0)
		if t != from && t != to && w.wall(elevation, t) {
			w.log.WithFields(logrus.Fields{"from": from, "to": to, "blocked_at": t}).Debug("Line of sight blocked by wall")
			return false
		}
		if x0 == x1 && y0 == y1 {
			return true
		}
		e2 := err * 2
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// towards - шаг к цели со скольжением вдоль препятствия: сначала прямо,
// затем по более длинной оси, затем по другой.
func (w *World) towards(e *entity, target int) (int, bool) {
	ex, ey := w.xy(e.tile)
	tx, ty := w.xy(target)
	dx, dy := tx-ex, ty-ey
	stepX, stepY := sign(dx), sign(dy)

	try := func(sx, sy int) (int, bool) {
		if sx == 0 && sy == 0 {
			return 0, false
		}
		nx, ny := ex+sx, ey+sy
		if nx < 0 || nx >= w.width || ny < 0 || ny >= w.height {
			return 0, false
		}
		n := w.Tile(nx, ny)
		if !w.passable(e.elevation, n, e) {
			return 0, false
		}
		return n, true
	}

	if n, ok := try(stepX, stepY); ok {
		return n, true
	}
	if abs(dx) > abs(dy) {
		if n, ok := try(stepX, 0); ok {
			return n, true
		}
		return try(0, stepY)
	}
	if n, ok := try(0, stepY); ok {
		return n, true
	}
	return try(stepX, 0)
}

// rotation - направление взгляда при шаге from -> to.
func (w *World) rotation(from, to int) int {
	fx, fy := w.xy(from)
	tx, ty := w.xy(to)
	d := [2]int{sign(tx - fx), sign(ty - fy)}
	for i, dir := range directions {
		if dir == d {
			return i
		}
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
