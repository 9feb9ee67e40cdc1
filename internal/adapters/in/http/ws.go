package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"orderflow/internal/notifications"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	maxReadBytes = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// HandleWebSocket handles GET /ws - upgrades the connection and streams
// order events for the requested subscriber groups. Groups are passed as a
// comma-separated `groups` query param; the default is the broadcast group.
func (s *Server) HandleWebSocket(ctx echo.Context) error {
	groupsParam := ctx.QueryParam("groups")
	if groupsParam == "" {
		groupsParam = notifications.GroupAll
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return err
	}

	connID := uuid.NewString()
	logger := s.logger.With("conn_id", connID)

	var events <-chan notifications.Event
	for _, group := range strings.Split(groupsParam, ",") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}

		ch, subErr := s.hub.Subscribe(connID, group)
		if subErr != nil {
			logger.Warn("websocket subscribe failed", "group", group, "error", subErr)
			s.hub.Disconnect(connID)
			_ = conn.Close()
			return nil
		}
		events = ch
	}

	if events == nil {
		_ = conn.Close()
		return nil
	}

	go s.readLoop(conn, connID)
	s.writeLoop(conn, events)
	return nil
}

// readLoop drains client frames so pong handling works and a closed peer is
// noticed. Disconnecting from the hub closes the event channel, which in
// turn stops the write loop.
func (s *Server) readLoop(conn *websocket.Conn, connID string) {
	defer func() {
		s.hub.Disconnect(connID)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxReadBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(conn *websocket.Conn, events <-chan notifications.Event) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				_ = conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait),
				)
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
