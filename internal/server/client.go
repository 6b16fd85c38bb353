package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"agent-bridge/internal/network"
	"agent-bridge/pkg/logger"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - один зритель монитора. Кадры идут только от моста к зрителю,
// всё, что зритель присылает, читается и выбрасывается.
type Client struct {
	Hub  *network.Broadcaster
	Conn *websocket.Conn
	ID   string

	frames chan []byte
	log    *logrus.Entry
}

func NewClient(hub *network.Broadcaster, conn *websocket.Conn, id string, frames chan []byte) *Client {
	c := &Client{
		Hub:    hub,
		Conn:   conn,
		ID:     id,
		frames: frames,
		log:    logger.Component("monitor").WithField("viewer", id),
	}
	c.log.WithField("viewers", hub.SubscriberCount()).Info("Viewer connected")
	return c
}

// readPump держит дедлайны ping/pong и ловит закрытие соединения
func (c *Client) readPump() {
	defer func() {
		c.Hub.Release(c.ID, c.frames)
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("Close after read failed")
		}
		c.log.Info("Viewer disconnected")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("Failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("Viewer connection error")
			}
			return
		}
	}
}

// writePump отправляет кадры зрителю + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.frames:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("Failed to set write deadline")
			}
			if !ok {
				// Канал закрыт хабом: зритель переподключился или ушёл
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.WithError(err).Debug("Frame write failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("Failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("Ping failed")
				return
			}
		}
	}
}
