package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mealmart/mealmart/internal/logger"
	"github.com/mealmart/mealmart/internal/middleware"
	"github.com/mealmart/mealmart/internal/notifier"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WSHandler upgrades connections and binds them to the notifier hub room
// matching the authenticated actor.
type WSHandler struct {
	hub      *notifier.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler creates new WSHandler instance. Browser connections are only
// accepted from clientOrigin; empty admits every origin.
func NewWSHandler(hub *notifier.Hub, clientOrigin string) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(clientOrigin),
		},
	}
}

// checkOrigin admits requests without an Origin header (non-browser clients)
// and, when an allowed origin is configured, browser requests matching it.
func checkOrigin(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if allowed == "" {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || origin == allowed
	}
}

// Serve subscribes the connection to its owner's room. The subscription lasts
// until the connection drops, whatever the cause; leaving the room is
// guaranteed on every exit path.
func (wh *WSHandler) Serve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := wh.upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Log.Warn("websocket upgrade", zap.Error(err))
			return
		}

		session := wh.hub.Join(payload.Role, payload.ActorID)
		defer wh.hub.Leave(session)

		go writePump(conn, session)
		readPump(conn)
	}
}

// readPump discards inbound frames and returns on disconnect. Clients only
// listen; subscribing is implicit in connecting.
func readPump(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards session events to the connection and keeps it alive with
// pings. It exits when the session channel closes or a write fails.
func writePump(conn *websocket.Conn, session *notifier.Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-session.C():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
