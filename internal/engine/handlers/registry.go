package handlers

import (
	"fmt"
	"runtime/debug"
	"sort"

	"github.com/sirupsen/logrus"

	"agent-bridge/pkg/api"
	"agent-bridge/pkg/logger"
)

// PhaseTable - упорядоченный список наборов типов. Команды из фаз
// выполняются первыми, в порядке фаз, остальные - следом в порядке батча.
type PhaseTable [][]string

// CharacterCreationPhases - многошаговая настройка персонажа в одном батче:
// сначала характеристики, затем черты, навыки, имя и только потом подтверждение.
var CharacterCreationPhases = PhaseTable{
	{"set_special"},
	{"select_traits"},
	{"tag_skills"},
	{"set_name"},
	{"finish_character_creation"},
}

func (p PhaseTable) phaseOf(cmdType string) int {
	for i, set := range p {
		for _, t := range set {
			if t == cmdType {
				return i
			}
		}
	}
	return len(p)
}

// Order возвращает позиции команд в порядке выполнения. Стабильно: внутри
// фазы и среди прочих команд сохраняется порядок батча.
func (p PhaseTable) Order(cmds []api.Command) []int {
	idx := make([]int, len(cmds))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return p.phaseOf(cmds[idx[a]].Type) < p.phaseOf(cmds[idx[b]].Type)
	})
	return idx
}

// Registry - отображение типа команды в хендлер.
type Registry struct {
	handlers map[string]HandlerFunc
	phases   PhaseTable
}

func NewRegistry(phases PhaseTable) *Registry {
	return &Registry{
		handlers: make(map[string]HandlerFunc),
		phases:   phases,
	}
}

// Register регистрирует хендлер. Повторная регистрация типа - ошибка
// программиста, поэтому паника.
func (r *Registry) Register(cmdType string, h HandlerFunc) {
	if _, dup := r.handlers[cmdType]; dup {
		panic(fmt.Sprintf("handlers: duplicate registration of %q", cmdType))
	}
	r.handlers[cmdType] = h
}

func (r *Registry) Has(cmdType string) bool {
	_, ok := r.handlers[cmdType]
	return ok
}

// Types - зарегистрированные типы по алфавиту.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Dispatch выполняет одну команду. Паника хендлера перехватывается и
// становится Failed: ни одна ошибка не должна прервать тик хоста.
func (r *Registry) Dispatch(ctx Context, cmd api.Command) (res Result) {
	h, ok := r.handlers[cmd.Type]
	if !ok {
		return Result{Status: StatusUnknownCommand, Debug: "unknown_cmd: " + cmd.Type}
	}

	defer func() {
		if p := recover(); p != nil {
			logger.Log.WithFields(logrus.Fields{
				"component": "dispatch",
				"type":      cmd.Type,
				"tick":      ctx.Tick,
				"stack":     string(debug.Stack()),
			}).Errorf("Handler panic: %v", p)
			res = Result{Status: StatusFailed, Debug: fmt.Sprintf("%s: panic: %v", cmd.Type, p)}
		}
	}()

	result, err := h(ctx, cmd.Raw)
	if err != nil {
		return FromError(err)
	}
	return result
}

// Outcome - результат одной команды батча.
type Outcome struct {
	Index   int // позиция в исходном батче
	Command api.Command
	Result  Result
}

// Execute выполняет батч в порядке фаз и сообщает каждый исход в observe.
//
// Записи без строкового type пропускаются и не считаются. Любая команда,
// кроме set_status/clear_status, сначала гасит видимый оверлей статуса.
func (r *Registry) Execute(ctx Context, batch api.CommandBatch, observe func(Outcome)) {
	log := logger.Component("dispatch")

	for _, pos := range r.phases.Order(batch.Commands) {
		cmd := batch.Commands[pos]
		if cmd.Type == "" {
			log.WithFields(logrus.Fields{"index": pos, "tick": ctx.Tick}).Warn("Command without type skipped")
			continue
		}

		if cmd.Type != "set_status" && cmd.Type != "clear_status" && ctx.Session.StatusVisible() {
			ctx.Sim.HideStatus()
			ctx.Session.StatusHidden()
		}

		res := r.Dispatch(ctx, cmd)
		if observe != nil {
			observe(Outcome{Index: pos, Command: cmd, Result: res})
		}
	}
}
