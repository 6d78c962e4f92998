package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/waqaskhan137/fintips/apperr"
	"github.com/waqaskhan137/fintips/core"
	"github.com/waqaskhan137/fintips/flow"
)

// Client frame types.
const (
	MsgGenerateTips = "generate_tips"
	MsgPing         = "ping"
)

// Server frame types.
const (
	MsgTips  = "tips"
	MsgPong  = "pong"
	MsgError = "error"
)

// ClientMessage is a frame sent by a WebSocket client.
type ClientMessage struct {
	Type string `json:"type"`
	// ID is echoed in the reply so clients can match responses.
	ID      string          `json:"id,omitempty"`
	Request json.RawMessage `json:"request,omitempty"`
}

// ServerMessage is a frame sent to a WebSocket client.
type ServerMessage struct {
	Type      string                 `json:"type"`
	ID        string                 `json:"id,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Data      *flow.Output           `json:"data,omitempty"`
	Code      string                 `json:"code,omitempty"`
	Content   string                 `json:"content,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	logger := slog.With("session_id", sessionID)
	logger.Info("websocket connected")

	ctx := c.Request.Context()
	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket error", "error", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			s.sendError(conn, "", apperr.ErrBadRequest.WithError(err))
			continue
		}

		logger.Debug("received message", "type", msg.Type)

		switch msg.Type {
		case MsgPing:
			s.send(conn, ServerMessage{Type: MsgPong, ID: msg.ID})

		case MsgGenerateTips:
			s.handleGenerateTips(ctx, conn, msg)

		default:
			s.sendError(conn, msg.ID, apperr.ErrBadRequest.WithDetails(map[string]interface{}{
				"type": msg.Type,
			}).WithError(fmt.Errorf("unknown message type: %s", msg.Type)))
		}
	}
	logger.Info("websocket closed")
}

func (s *Server) handleGenerateTips(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	requestID := uuid.NewString()
	ctx = core.WithRequestID(ctx, requestID)

	if len(msg.Request) == 0 {
		s.sendError(conn, msg.ID, apperr.NewValidationError("request", "request is required"))
		return
	}
	in, err := flow.DecodeInput(msg.Request)
	if err != nil {
		s.sendError(conn, msg.ID, err)
		return
	}

	out, err := s.generate(ctx, in)
	if err != nil {
		s.sendError(conn, msg.ID, err)
		return
	}
	s.send(conn, ServerMessage{
		Type:      MsgTips,
		ID:        msg.ID,
		RequestID: requestID,
		Data:      out,
	})
}

func (s *Server) send(conn *websocket.Conn, msg ServerMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		slog.Warn("failed to send message", "error", err)
	}
}

func (s *Server) sendError(conn *websocket.Conn, id string, err error) {
	appErr := apperr.FromError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		slog.Error("websocket request failed", "code", appErr.Code, "error", err)
	}
	msg := ServerMessage{
		Type:    MsgError,
		ID:      id,
		Code:    appErr.Code,
		Content: appErr.Message,
	}
	if len(appErr.Details) > 0 {
		msg.Details = appErr.Details
	}
	s.send(conn, msg)
}
