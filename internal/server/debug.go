package server

import (
	"encoding/json"
	"net/http"

	"agent-bridge/internal/infrastructure/storage"
	"agent-bridge/internal/network"
)

// DebugHandler отдаёт последний кадр и сводки архива сессий
type DebugHandler struct {
	Hub     *network.Broadcaster
	Archive *storage.Archive
}

func NewDebugHandler(hub *network.Broadcaster, archive *storage.Archive) *DebugHandler {
	return &DebugHandler{Hub: hub, Archive: archive}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/state", h.handleState)
	mux.HandleFunc("/debug/archive", h.handleArchive)
	mux.HandleFunc("/debug/viewers", h.handleViewers)
}

// /debug/state - последний кадр состояния как есть
func (h *DebugHandler) handleState(w http.ResponseWriter, r *http.Request) {
	frame := h.Hub.Last()
	if frame == nil {
		http.Error(w, "No state published yet", http.StatusNotFound)
		return
	}
	setHeaders(w)
	_, _ = w.Write(frame)
}

// /debug/archive - список сессий; ?session=<id> - команды и сводка неудач
func (h *DebugHandler) handleArchive(w http.ResponseWriter, r *http.Request) {
	if h.Archive == nil {
		http.Error(w, "Archive disabled", http.StatusNotFound)
		return
	}

	id := r.URL.Query().Get("session")
	if id == "" {
		sessions, err := h.Archive.Sessions()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if sessions == nil {
			sessions = []storage.Session{}
		}
		writeJSON(w, sessions)
		return
	}

	type SessionView struct {
		Session  string                 `json:"session"`
		Failures []storage.FailureStat  `json:"failures"`
		Commands []storage.CommandEntry `json:"commands"`
	}

	failures, err := h.Archive.FailureSummary(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cmds, err := h.Archive.Commands(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(cmds) == 0 {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, SessionView{Session: id, Failures: failures, Commands: cmds})
}

// /debug/viewers - сколько зрителей подключено и сколько кадров потеряно
func (h *DebugHandler) handleViewers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]int{
		"viewers": h.Hub.SubscriberCount(),
		"dropped": h.Hub.Dropped(),
	})
}

func setHeaders(w http.ResponseWriter) {
	// Разрешаем запросы с любого источника (нужно для локальной страницы монитора)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	setHeaders(w)

	// Пустой список отдаём как [], а не null
	if data == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}

	_ = json.NewEncoder(w).Encode(data)
}
