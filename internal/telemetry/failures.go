package telemetry

import "agent-bridge/internal/engine/handlers"

// FailureCounters - подряд идущие неудачи по типу команды. Живут только в
// памяти процесса.
type FailureCounters struct {
	m map[string]int
}

func NewFailureCounters() *FailureCounters {
	return &FailureCounters{m: make(map[string]int)}
}

// Record учитывает исход и возвращает текущий счётчик типа.
// Ok и NoOp сбрасывают счётчик, UnknownCommand его не трогает.
func (c *FailureCounters) Record(cmdType string, st handlers.Status) int {
	switch {
	case st.IsFailure():
		c.m[cmdType]++
	case st == handlers.StatusOk, st == handlers.StatusNoOp:
		delete(c.m, cmdType)
	}
	return c.m[cmdType]
}

func (c *FailureCounters) Get(cmdType string) int { return c.m[cmdType] }

// Snapshot - копия для поля command_failures.
func (c *FailureCounters) Snapshot() map[string]int {
	out := make(map[string]int, len(c.m))
	for k, v := range c.m {
		out[k] = v
	}
	return out
}
