package handlers

import (
	"encoding/json"
	"fmt"

	"agent-bridge/pkg/api"
)

// TypedHandlerFunc получает аргументы команды уже разобранными в T.
type TypedHandlerFunc[T any] func(ctx Context, payload T) (Result, error)

// EmptyHandlerFunc - команда без аргументов (end_turn, skip, loot_take_all).
type EmptyHandlerFunc func(ctx Context) (Result, error)

// WithPayload разбирает аргументы из той же записи батча, где лежит type,
// и прогоняет Validate, если T его реализует. Ошибка любого из шагов
// заворачивается в ErrBadArgs, так что хендлер не вызывается и мир не
// меняется. Лишние поля агента игнорируются.
func WithPayload[T any](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(ctx Context, raw json.RawMessage) (Result, error) {
		payload, err := decode[T](raw)
		if err != nil {
			return Result{}, err
		}
		return handler(ctx, payload)
	}
}

func decode[T any](raw json.RawMessage) (T, error) {
	var payload T
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("%w: invalid payload format: %v", ErrBadArgs, err)
	}
	if v, ok := any(payload).(api.Validator); ok {
		if err := v.Validate(); err != nil {
			return payload, fmt.Errorf("%w: %v", ErrBadArgs, err)
		}
	}
	return payload, nil
}

// WithEmptyPayload: аргументы, если агент их прислал, не читаются.
func WithEmptyPayload(handler EmptyHandlerFunc) HandlerFunc {
	return func(ctx Context, _ json.RawMessage) (Result, error) {
		return handler(ctx)
	}
}
