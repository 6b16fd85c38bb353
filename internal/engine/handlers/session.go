package handlers

import (
	"encoding/json"
	"fmt"

	"agent-bridge/internal/core/types/enums"
)

// Session - изменяемое состояние моста, которое живёт между командами:
// флаги режимов, одноразовые запросы к хосту, результаты запросов с TTL.
// Принадлежит Bridge, хендлеры получают его через Context.
type Session struct {
	TestMode   bool
	AutoCombat bool

	menuAction  enums.MenuAction
	loadSlot    int
	hasLoadSlot bool

	lookAt     string
	lookAtTick uint64

	query     json.RawMessage
	queryTick uint64

	statusVisible bool
	statusTick    uint64

	refresh bool
}

func NewSession(testMode bool) *Session {
	return &Session{TestMode: testMode}
}

// --- Главное меню ---

// RequestMenuAction запоминает действие главного меню, которое хост
// заберёт через TakeMenuAction. Слот имеет смысл только для load_game.
func (s *Session) RequestMenuAction(a enums.MenuAction, slot int) {
	s.menuAction = a
	if a == enums.MenuLoadGame && slot > 0 {
		s.loadSlot = slot
		s.hasLoadSlot = true
	}
}

func (s *Session) TakeMenuAction() (enums.MenuAction, bool) {
	a := s.menuAction
	s.menuAction = enums.MenuNone
	return a, a != enums.MenuNone
}

func (s *Session) TakePendingLoadSlot() (int, bool) {
	slot, ok := s.loadSlot, s.hasLoadSlot
	s.loadSlot, s.hasLoadSlot = 0, false
	return slot, ok
}

// --- Результаты запросов ---

func (s *Session) SetLookAt(text string, tick uint64) {
	s.lookAt = text
	s.lookAtTick = tick
}

func (s *Session) LookAt() string { return s.lookAt }

// SetQuery сохраняет результат запроса для поля query_result.
func (s *Session) SetQuery(v any, tick uint64) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode query result: %w", err)
	}
	s.query = data
	s.queryTick = tick
	return nil
}

func (s *Session) Query() json.RawMessage { return s.query }

// ExpireResults гасит look_at и query_result, прожившие ttl тиков.
func (s *Session) ExpireResults(tick, ttl uint64) {
	if s.lookAt != "" && tick-s.lookAtTick >= ttl {
		s.lookAt = ""
	}
	if s.query != nil && tick-s.queryTick >= ttl {
		s.query = nil
	}
}

// --- Оверлей статуса ---

func (s *Session) StatusShown(tick uint64) {
	s.statusVisible = true
	s.statusTick = tick
}

func (s *Session) StatusHidden() { s.statusVisible = false }

func (s *Session) StatusVisible() bool { return s.statusVisible }

// StatusExpired - оверлей висит дольше ttl тиков.
func (s *Session) StatusExpired(tick, ttl uint64) bool {
	return s.statusVisible && tick-s.statusTick >= ttl
}

// --- Обновление объектов ---

// RequestRefresh - "мир поменялся": следующий тик перечитает объекты.
func (s *Session) RequestRefresh() { s.refresh = true }

func (s *Session) TakeRefresh() bool {
	r := s.refresh
	s.refresh = false
	return r
}
