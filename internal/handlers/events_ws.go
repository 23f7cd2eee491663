package handlers

import (
	"net/http"
	"time"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/events"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsWriteWait  = 10 * time.Second
)

type EventsHandler struct {
	hub      *events.Hub
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader
}

// NewEventsHandler accepts WebSocket connections from the given origins.
func NewEventsHandler(hub *events.Hub, allowedOrigins []string, log *zap.SugaredLogger) *EventsHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &EventsHandler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// Stream handles GET /ws/emotions. The connection receives an event each
// time one of the user's entries is written, from any device.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "user_id", user.ID, "error", err)
		return
	}
	defer conn.Close()

	unregister := h.hub.Register(user.ID, deadlineConn{conn})
	defer unregister()
	h.log.Debugw("websocket connected", "user_id", user.ID)

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(conn, done)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// The stream is one-way; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debugw("websocket closed", "user_id", user.ID, "error", err)
			}
			return
		}
	}
}

// deadlineConn bounds every event write so a dead peer frees its writer.
type deadlineConn struct {
	*websocket.Conn
}

func (c deadlineConn) WriteJSON(v interface{}) error {
	if err := c.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return c.Conn.WriteJSON(v)
}

func (h *EventsHandler) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
