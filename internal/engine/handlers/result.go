package handlers

import (
	"errors"
	"fmt"

	"agent-bridge/internal/sim"
)

// Status - исход одной команды.
type Status uint8

const (
	StatusOk Status = iota
	StatusBadArgs
	StatusBlocked
	StatusFailed
	StatusNoOp
	StatusUnknownCommand
)

var statusNames = [...]string{
	StatusOk:             "ok",
	StatusBadArgs:        "bad_args",
	StatusBlocked:        "blocked",
	StatusFailed:         "failed",
	StatusNoOp:           "no_op",
	StatusUnknownCommand: "unknown_command",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", s)
}

// IsFailure - статусы, которые считаются в счётчиках подряд идущих неудач.
// UnknownCommand сюда не входит: неизвестный тип не копит счётчик.
func (s Status) IsFailure() bool {
	return s == StatusBadArgs || s == StatusBlocked || s == StatusFailed
}

// ErrBadArgs помечает ошибки разбора и валидации аргументов.
var ErrBadArgs = errors.New("bad args")

// Result - то, что хендлер сообщает диспетчеру. Debug попадает в
// last_command_debug и в лог команд.
type Result struct {
	Status Status
	Debug  string
}

func Ok(format string, args ...any) (Result, error) {
	return Result{Status: StatusOk, Debug: fmt.Sprintf(format, args...)}, nil
}

func NoOp(format string, args ...any) (Result, error) {
	return Result{Status: StatusNoOp, Debug: fmt.Sprintf(format, args...)}, nil
}

func Blocked(format string, args ...any) (Result, error) {
	return Result{Status: StatusBlocked, Debug: fmt.Sprintf(format, args...)}, nil
}

func Failed(format string, args ...any) (Result, error) {
	return Result{Status: StatusFailed, Debug: fmt.Sprintf(format, args...)}, nil
}

func BadArgs(format string, args ...any) (Result, error) {
	return Result{Status: StatusBadArgs, Debug: fmt.Sprintf(format, args...)}, nil
}

// FromError переводит ошибку в статус:
// ErrBadArgs и sim.ErrInvalid - BadArgs, sim.ErrBlocked - Blocked,
// всё прочее - Failed.
func FromError(err error) Result {
	status := StatusFailed
	switch {
	case errors.Is(err, ErrBadArgs), errors.Is(err, sim.ErrInvalid):
		status = StatusBadArgs
	case errors.Is(err, sim.ErrBlocked):
		status = StatusBlocked
	}
	return Result{Status: status, Debug: err.Error()}
}

// FromQueue превращает пару (debug, err) от очередей в результат.
func FromQueue(debug string, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	return Result{Status: StatusOk, Debug: debug}, nil
}
