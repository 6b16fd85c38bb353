// Package queue - отложенные механизмы, которые растягивают одну команду
// агента на несколько тиков: движение по точкам маршрута, очередь атак и
// отложенный выбор реплики. Каждый механизм обслуживается раз в тик.
package queue

import (
	"fmt"

	"agent-bridge/internal/sim"
)

// MoveSim - то, что нужно очереди движения от симуляции.
type MoveSim interface {
	InCombat() bool
	IsAnimating() bool
	Player() (sim.Player, bool)
	Map() (sim.MapInfo, bool)
	FindPath(from, to, elevation, maxSteps int) []int
	MoveTo(tile int, run bool, apLimit int) error
}

// Movement - очередь точек маршрута для длинных переходов.
//
// Путь длиннее сегмента режется на точки через каждые segmentCap шагов
// плюс конечная клетка. Первая точка выдаётся сразу, следующие - по одной
// за тик, когда игрок не анимирован. Смена карты, уровня или начало боя
// сбрасывают очередь целиком.
type Movement struct {
	segmentCap  int
	waypointCap int
	maxSteps    int

	waypoints []int
	next      int
	run       bool
	mapIndex  int
	elevation int
}

func NewMovement(segmentCap, waypointCap, maxSteps int) *Movement {
	return &Movement{
		segmentCap:  segmentCap,
		waypointCap: waypointCap,
		maxSteps:    maxSteps,
	}
}

// Remaining - сколько точек ещё не выдано.
func (m *Movement) Remaining() int {
	return len(m.waypoints) - m.next
}

// Waypoints - копия оставшихся точек.
func (m *Movement) Waypoints() []int {
	return append([]int(nil), m.waypoints[m.next:]...)
}

func (m *Movement) Cancel() {
	m.waypoints = nil
	m.next = 0
}

// Start обрабатывает move_to/run_to.
//
// Ошибки оборачивают sim.ErrBlocked для недопустимых сейчас команд;
// остальные ошибки означают неудачу операции.
func (m *Movement) Start(s MoveSim, tile int, run bool) (string, error) {
	verb := "move_to"
	if run {
		verb = "run_to"
	}

	if s.InCombat() {
		return "", fmt.Errorf("%w: %s tile=%d rejected (in combat, use combat_move)", sim.ErrBlocked, verb, tile)
	}

	// Новая команда движения заменяет старый маршрут, а не встаёт за ним.
	m.Cancel()

	if s.IsAnimating() {
		return "", fmt.Errorf("%w: %s tile=%d rejected (player is animating)", sim.ErrBlocked, verb, tile)
	}

	p, ok := s.Player()
	if !ok {
		return "", fmt.Errorf("%w: %s: no active player", sim.ErrBlocked, verb)
	}

	path := s.FindPath(p.Tile, tile, p.Elevation, m.maxSteps)
	if len(path) == 0 {
		return "", fmt.Errorf("%s: no path from %d to %d", verb, p.Tile, tile)
	}

	if len(path) <= m.segmentCap {
		if err := s.MoveTo(tile, run, -1); err != nil {
			return "", fmt.Errorf("%s: tile=%d: %w", verb, tile, err)
		}
		return fmt.Sprintf("%s: tile=%d steps=%d", verb, tile, len(path)), nil
	}

	waypoints := make([]int, 0, len(path)/m.segmentCap+1)
	for i, step := range path {
		if (i+1)%m.segmentCap == 0 || i == len(path)-1 {
			waypoints = append(waypoints, step)
			if len(waypoints) >= m.waypointCap {
				break
			}
		}
	}

	m.waypoints = waypoints
	m.next = 0
	m.run = run
	m.elevation = p.Elevation
	m.mapIndex = -1
	if info, ok := s.Map(); ok {
		m.mapIndex = info.Index
	}

	if err := m.issue(s); err != nil {
		m.Cancel()
		return "", fmt.Errorf("%s: first segment to %d: %w", verb, waypoints[0], err)
	}

	return fmt.Sprintf("%s: tile=%d steps=%d waypoints=%d", verb, tile, len(path), len(waypoints)), nil
}

// Service продвигает очередь на один шаг. Возвращает описание события,
// если очередь сброшена или завершена; пустая строка - ничего заметного.
func (m *Movement) Service(s MoveSim) string {
	if m.Remaining() <= 0 {
		return ""
	}

	p, ok := s.Player()
	info, mapOK := s.Map()
	if !ok || !mapOK || info.Index != m.mapIndex || p.Elevation != m.elevation {
		m.Cancel()
		return "movement aborted: map/elevation changed"
	}

	if s.InCombat() {
		m.Cancel()
		return "movement aborted: combat started"
	}

	if s.IsAnimating() {
		return ""
	}

	target := m.waypoints[m.next]
	if err := m.issue(s); err != nil {
		m.Cancel()
		return fmt.Sprintf("movement aborted: segment to %d failed: %v", target, err)
	}
	if m.Remaining() == 0 {
		return fmt.Sprintf("movement: final segment to %d issued", target)
	}
	return ""
}

func (m *Movement) issue(s MoveSim) error {
	target := m.waypoints[m.next]
	m.next++
	if err := s.MoveTo(target, m.run, -1); err != nil {
		return err
	}
	if m.Remaining() == 0 {
		m.Cancel()
	}
	return nil
}
