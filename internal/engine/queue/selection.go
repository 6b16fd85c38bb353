package queue

import (
	"fmt"

	"agent-bridge/internal/engine/detect"
	"agent-bridge/internal/sim"
)

// SelectionSim - диалоговая часть симуляции.
type SelectionSim interface {
	Dialogue() (sim.DialogueState, bool)
	HighlightDialogueOption(index int) error
	SelectDialogueOption(index int) error
}

// Исходы отложенного выбора.
const (
	OutcomeCommitted = "committed"
	OutcomeDiscarded = "discarded"
	OutcomeFailed    = "failed"
)

// SelectionOutcome - чем закончился последний отложенный выбор.
type SelectionOutcome struct {
	Index   int
	Outcome string
	Tick    uint64
	Err     string
}

type pendingSelection struct {
	index  int
	issued uint64
	where  detect.Context
}

// Selection - слот отложенного выбора реплики.
//
// Вариант сначала подсвечивается, и только через dwell тиков выбирается на
// самом деле. Если к этому моменту диалог закрылся или сменился контекст,
// выбор отбрасывается.
type Selection struct {
	dwell   uint64
	pending *pendingSelection
	last    *SelectionOutcome
}

func NewSelection(dwell uint64) *Selection {
	return &Selection{dwell: dwell}
}

func (q *Selection) Pending() bool { return q.pending != nil }

// Last возвращает исход последнего завершённого выбора.
func (q *Selection) Last() (SelectionOutcome, bool) {
	if q.last == nil {
		return SelectionOutcome{}, false
	}
	return *q.last, true
}

func (q *Selection) Cancel() { q.pending = nil }

// Request подсвечивает вариант и занимает слот. Новый выбор заменяет
// ещё не выполненный.
func (q *Selection) Request(s SelectionSim, index int, tick uint64, where detect.Context) (string, error) {
	if where != detect.GameplayDialogue {
		return "", fmt.Errorf("%w: select_dialogue: context is %s", sim.ErrBlocked, where)
	}
	d, ok := s.Dialogue()
	if !ok {
		return "", fmt.Errorf("%w: select_dialogue: not in dialogue", sim.ErrBlocked)
	}
	if index < 0 || index >= len(d.Options) {
		return "", fmt.Errorf("%w: select_dialogue: index %d out of range (0..%d)", sim.ErrInvalid, index, len(d.Options)-1)
	}
	if err := s.HighlightDialogueOption(index); err != nil {
		return "", fmt.Errorf("select_dialogue: highlight %d: %w", index, err)
	}

	q.pending = &pendingSelection{index: index, issued: tick, where: where}
	return fmt.Sprintf("select_dialogue: index=%d highlighted, commit in %d ticks", index, q.dwell), nil
}

// Service выполняет выбор, когда истекла выдержка. where - контекст на
// момент обслуживания. Возвращает исход, если слот освободился на этом тике.
func (q *Selection) Service(s SelectionSim, tick uint64, where detect.Context) (SelectionOutcome, bool) {
	if q.pending == nil || tick-q.pending.issued < q.dwell {
		return SelectionOutcome{}, false
	}

	p := q.pending
	q.pending = nil
	out := SelectionOutcome{Index: p.index, Tick: tick}

	d, ok := s.Dialogue()
	switch {
	case !ok || where != p.where || p.index >= len(d.Options):
		out.Outcome = OutcomeDiscarded
	default:
		if err := s.SelectDialogueOption(p.index); err != nil {
			out.Outcome = OutcomeFailed
			out.Err = err.Error()
		} else {
			out.Outcome = OutcomeCommitted
		}
	}

	q.last = &out
	return out, true
}
