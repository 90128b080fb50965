// Package ws provides the WebSocket chat surface.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/omnichat/orchestrator/internal/domain"
	"github.com/omnichat/orchestrator/internal/hub"
	"github.com/omnichat/orchestrator/internal/service"
)

const (
	readTimeout    = 60 * time.Second
	writeTimeout   = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 64 * 1024
	chatTimeout    = 30 * time.Second
)

// Message types understood on the socket.
const (
	typeJoin   = "join"
	typeJoined = "joined"
	typeChat   = "chat"
	typeError  = "error"
	typeLeave  = "leave"
)

type inboundMessage struct {
	Type      string         `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Channel   domain.Channel `json:"channel,omitempty"`
	Message   string         `json:"message,omitempty"`
}

type ackMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Server handles WebSocket connections.
type Server struct {
	hub      *hub.Hub
	service  *service.Service
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(h *hub.Hub, svc *service.Service) *Server {
	return &Server{
		hub:     h,
		service: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
// GET /ws
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)

	ws.SetReadLimit(maxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

func (s *Server) readPump(conn *hub.Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, data, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		s.handleMessage(conn, data)
	}
}

func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleMessage(conn *hub.Connection, data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "invalid JSON message")
		return
	}

	switch msg.Type {
	case typeJoin:
		s.handleJoin(conn, msg)
	case typeChat:
		s.handleChat(conn, msg)
	case typeLeave:
		s.hub.Unregister(conn)
		conn.Close()
	default:
		s.sendError(conn, "unknown message type: "+msg.Type)
	}
}

// handleJoin binds the connection to a session so it receives that
// session's chat events. The session must already exist or be created by
// the first chat message.
func (s *Server) handleJoin(conn *hub.Connection, msg inboundMessage) {
	if msg.SessionID == "" {
		s.sendError(conn, "session_id is required to join")
		return
	}
	s.hub.BindSession(conn, msg.SessionID)
	s.hub.SendJSON(conn, ackMessage{Type: typeJoined, SessionID: msg.SessionID})
}

// handleChat feeds the message through the orchestrator. The reply reaches
// this connection through the session fan-out, so the socket read loop is
// never blocked on handling.
func (s *Server) handleChat(conn *hub.Connection, msg inboundMessage) {
	if msg.Message == "" {
		s.sendError(conn, "message is required")
		return
	}

	sessionID := msg.SessionID
	if sessionID == "" {
		sessionID = conn.Session()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()

		resp, err := s.service.HandleMessage(ctx, domain.ChatRequest{
			Message:   msg.Message,
			SessionID: sessionID,
			UserID:    msg.UserID,
			Channel:   msg.Channel,
		})
		if err != nil {
			log.Printf("Chat handling failed: %v", err)
			s.hub.SendJSON(conn, ackMessage{Type: typeError, SessionID: sessionID, Error: err.Error()})
			return
		}

		// A first message can mint the session; bind the connection so the
		// just-published event and future ones reach it.
		if conn.Session() != resp.SessionID {
			s.hub.BindSession(conn, resp.SessionID)
			s.hub.SendJSON(conn, resp)
		}
	}()
}

func (s *Server) sendError(conn *hub.Connection, message string) {
	s.hub.SendJSON(conn, ackMessage{Type: typeError, Error: message})
}
