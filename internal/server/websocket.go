package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/franckalain/foodrescue/internal/realtime"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const pingInterval = 25 * time.Second

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.originAllowed(r.Header.Get("Origin"))
		},
	}
}

type clientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := s.hub.Register(conn)
	defer s.hub.Unregister(client)

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				// WriteControl is safe alongside the client's serialized writes
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					s.logger.Debug("Ping failed, dropping client", zap.String("client", client.ID), zap.Error(err))
					s.hub.Unregister(client)
					return
				}
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("Error reading message", zap.Error(err))
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.sendError(client, "Invalid message format")
			continue
		}
		s.handleWebSocketMessage(c.Request.Context(), client, msg)
	}
}

func (s *Server) handleWebSocketMessage(ctx context.Context, client *realtime.Client, msg clientMessage) {
	switch msg.Type {
	case "get_recent":
		subs, err := s.db.GetRecentFoodSubmissions(ctx, RecentLimit)
		if err != nil {
			s.logger.Error("Error retrieving recent submissions", zap.Error(err))
			s.sendError(client, "Failed to retrieve recent submissions")
			return
		}
		s.sendMessage(client, "recent", subs)
	case "ping":
		s.sendMessage(client, "pong", nil)
	default:
		s.sendError(client, "Unknown message type")
	}
}

func (s *Server) sendMessage(client *realtime.Client, messageType string, data any) {
	msg := map[string]any{
		"type": messageType,
		"data": data,
	}
	if err := client.Send(msg); err != nil {
		s.logger.Debug("Error sending message", zap.String("type", messageType), zap.Error(err))
	}
}

func (s *Server) sendError(client *realtime.Client, message string) {
	msg := map[string]any{
		"type":    "error",
		"message": message,
	}
	if err := client.Send(msg); err != nil {
		s.logger.Debug("Error sending error message", zap.Error(err))
	}
}
