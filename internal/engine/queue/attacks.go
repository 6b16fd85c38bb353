package queue

import (
	"fmt"

	"agent-bridge/internal/core/types"
	"agent-bridge/internal/core/types/enums"
	"agent-bridge/internal/sim"
)

// AttackSim - то, что нужно очереди атак от симуляции.
type AttackSim interface {
	InCombat() bool
	RequestCombat() error
	IsAnimating() bool
	Player() (sim.Player, bool)
	Resolve(id types.EntityID) (sim.Object, bool)
	CheckShot(target types.EntityID, mode enums.HitMode, aimed bool) enums.ShotVerdict
	Attack(target types.EntityID, mode enums.HitMode, loc enums.HitLocation) error
}

// Attack - одна отложенная атака. Идентичности нет, только позиция в очереди.
type Attack struct {
	Target   types.EntityID
	Mode     enums.HitMode
	Location enums.HitLocation
}

// Attacks - FIFO повторных атак. За тик обслуживается не больше одной.
// Любое нарушенное предусловие сбрасывает всю очередь.
type Attacks struct {
	pending []Attack
}

func NewAttacks() *Attacks {
	return &Attacks{}
}

func (q *Attacks) Len() int { return len(q.pending) }

func (q *Attacks) Clear() { q.pending = nil }

// Request проверяет атаку и либо выполняет первую сразу, либо ставит все
// count в очередь, если игрок занят анимацией. count уже зажат вызывающим.
func (q *Attacks) Request(s AttackSim, a Attack, count int) (string, error) {
	if !s.InCombat() {
		if err := s.RequestCombat(); err != nil {
			return "", fmt.Errorf("attack: cannot enter combat: %w", err)
		}
		return "", fmt.Errorf("%w: attack: entering combat first (send attack again next tick)", sim.ErrBlocked)
	}

	if _, ok := s.Resolve(a.Target); !ok {
		return "", fmt.Errorf("attack: target %s: %w", a.Target, sim.ErrNotFound)
	}

	aimed := a.Location != enums.HitLocationUncalled
	if v := s.CheckShot(a.Target, a.Mode, aimed); v != enums.ShotOK {
		return "", fmt.Errorf("attack: rejected, %s", v.Reason())
	}

	if s.IsAnimating() {
		q.push(a, count)
		return fmt.Sprintf("attack: queued %d attacks (animation busy)", count), nil
	}

	err := s.Attack(a.Target, a.Mode, a.Location)
	q.push(a, count-1)
	if err != nil {
		return "", fmt.Errorf("attack: target=%s mode=%s: %w", a.Target, a.Mode, err)
	}
	return fmt.Sprintf("attack: target=%s mode=%s loc=%s queued=%d", a.Target, a.Mode, a.Location, count-1), nil
}

func (q *Attacks) push(a Attack, n int) {
	for i := 0; i < n; i++ {
		q.pending = append(q.pending, a)
	}
}

// Service выполняет не больше одной атаки из очереди.
func (q *Attacks) Service(s AttackSim) string {
	if len(q.pending) == 0 {
		return ""
	}

	if !s.InCombat() {
		q.Clear()
		return "pending attacks cleared: combat ended"
	}

	if s.IsAnimating() {
		return ""
	}

	p, ok := s.Player()
	if !ok || p.AP <= 0 {
		q.Clear()
		return "pending attacks cleared: out of AP"
	}

	a := q.pending[0]
	q.pending = q.pending[1:]

	target, ok := s.Resolve(a.Target)
	if !ok || target.Dead {
		q.Clear()
		return fmt.Sprintf("pending attacks cleared: target %s gone", a.Target)
	}

	if err := s.Attack(a.Target, a.Mode, a.Location); err != nil {
		q.Clear()
		return fmt.Sprintf("pending attacks cleared: attack failed: %v", err)
	}
	return fmt.Sprintf("attack(queued %d left): target=%s mode=%s ap=%d", len(q.pending), a.Target, a.Mode, p.AP)
}
