package handlers

import (
	"encoding/json"

	"agent-bridge/internal/config"
	"agent-bridge/internal/engine/detect"
	"agent-bridge/internal/engine/queue"
	"agent-bridge/internal/sim"
)

// Context передает хендлеру симуляцию и состояние моста.
// Очереди и сессия передаются ссылками: хендлер их мутирует.
type Context struct {
	Sim     sim.Simulation
	Tick    uint64
	Config  config.Config
	Where   detect.Context
	Session *Session

	Movement  *queue.Movement
	Attacks   *queue.Attacks
	Selection *queue.Selection
}

// HandlerFunc - это контракт для любой команды агента.
//
// Ошибка не пересекает границу диспетчера: она превращается в статус
// через FromError. Result без ошибки возвращается как есть.
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)
