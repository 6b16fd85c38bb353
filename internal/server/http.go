// Package server - HTTP-монитор моста: поток кадров состояния по WebSocket
// и отладочные эндпоинты. Агент сюда не ходит, его канал - файлы.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"agent-bridge/internal/infrastructure/storage"
	"agent-bridge/internal/network"
	"agent-bridge/internal/version"
	"agent-bridge/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	Hub     *network.Broadcaster
	Archive *storage.Archive // nil - архив выключен
	Addr    string
}

func New(addr string, hub *network.Broadcaster, archive *storage.Archive) *Server {
	return &Server{
		Hub:     hub,
		Archive: archive,
		Addr:    addr,
	}
}

// Handler собирает роуты монитора.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", enableCORS(s.handleWS))
	mux.HandleFunc("/health", enableCORS(s.handleHealth))
	mux.HandleFunc("/version", enableCORS(s.handleVersion))

	debugHandler := NewDebugHandler(s.Hub, s.Archive)
	debugHandler.RegisterRoutes(mux)

	return mux
}

// Run слушает Addr, пока не отменят ctx.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Component("monitor").WithField("addr", s.Addr).Info("Monitor listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Component("monitor").Info("Monitor stopped")
		return nil
	}
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Разрешаем запросы с локальной страницы монитора
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		next(w, r)
	}
}

// handleWS подписывает зрителя на кадры состояния
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		id = uuid.NewString()
	}

	// Подписка до апгрейда: кадры, вышедшие во время рукопожатия, не теряются
	frames := s.Hub.Register(id)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Hub.Release(id, frames)
		logger.Component("monitor").WithError(err).Warn("Upgrade failed")
		return
	}

	client := NewClient(s.Hub, conn, id, frames)

	// Запускаем пампы
	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(version.Info())
}
