package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-bridge/internal/infrastructure/storage"
	"agent-bridge/internal/network"
	"agent-bridge/internal/version"
	"agent-bridge/pkg/logger"
)

func init() {
	logger.Discard()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndVersion(t *testing.T) {
	h := New(":0", network.NewBroadcaster(), nil).Handler()

	rec := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = get(t, h, "/version")
	require.Equal(t, http.StatusOK, rec.Code)
	var info version.VersionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, version.Protocol, info.Protocol)
}

func TestDebugStateServesLastFrame(t *testing.T) {
	hub := network.NewBroadcaster()
	h := New(":0", hub, nil).Handler()

	assert.Equal(t, http.StatusNotFound, get(t, h, "/debug/state").Code)

	hub.Publish([]byte(`{"tick":7}`))
	rec := get(t, h, "/debug/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tick":7}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestDebugArchive(t *testing.T) {
	hub := network.NewBroadcaster()
	assert.Equal(t, http.StatusNotFound, get(t, New(":0", hub, nil).Handler(), "/debug/archive").Code)

	archive, err := storage.Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })

	h := New(":0", hub, archive).Handler()
	rec := get(t, h, "/debug/archive")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, archive.BeginSession(storage.Session{ID: "s1", PID: 1, StartedAt: now, Version: "test"}))
	_, err = archive.RecordCommand(storage.CommandEntry{SessionID: "s1", Tick: 1, Type: "attack", Status: "blocked", Failure: true, CreatedAt: now})
	require.NoError(t, err)
	_, err = archive.RecordCommand(storage.CommandEntry{SessionID: "s1", Tick: 2, Type: "attack", Status: "ok", CreatedAt: now})
	require.NoError(t, err)

	rec = get(t, h, "/debug/archive")
	var sessions []storage.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)

	rec = get(t, h, "/debug/archive?session=s1")
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Failures []storage.FailureStat  `json:"failures"`
		Commands []storage.CommandEntry `json:"commands"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Commands, 2)
	require.Len(t, view.Failures, 1)
	assert.Equal(t, storage.FailureStat{Type: "attack", Total: 2, Failures: 1}, view.Failures[0])

	assert.Equal(t, http.StatusNotFound, get(t, h, "/debug/archive?session=nope").Code)
}

func TestWebSocketStreamsFrames(t *testing.T) {
	hub := network.NewBroadcaster()
	hub.Publish([]byte(`{"tick":1}`))

	srv := httptest.NewServer(New(":0", hub, nil).Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?id=viewer-1"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = resp.Body.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"tick":1}`, string(msg), "late joiner gets the last frame")

	hub.Publish([]byte(`{"tick":2}`))
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"tick":2}`, string(msg))

	rec := get(t, srv.Config.Handler, "/debug/viewers")
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"viewers":1,"dropped":0}`, string(body))
}

func TestFailedUpgradeKeepsReconnectedViewer(t *testing.T) {
	hub := network.NewBroadcaster()
	h := New(":0", hub, nil).Handler()

	// Пока рукопожатие падает, зритель с тем же id успевает переподключиться.
	var fresh chan []byte
	saved := upgrader.Error
	upgrader.Error = func(w http.ResponseWriter, r *http.Request, status int, reason error) {
		fresh = hub.Register("v1")
		http.Error(w, reason.Error(), status)
	}
	defer func() { upgrader.Error = saved }()

	rec := get(t, h, "/ws?id=v1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, fresh)
	assert.True(t, hub.HasSubscriber("v1"), "failed handshake must not drop the newer viewer")

	hub.Publish([]byte(`{"tick":1}`))
	assert.Equal(t, `{"tick":1}`, string(<-fresh))
}
