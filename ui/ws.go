package ui

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"gopitch/internal/errors"
	"gopitch/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	authDeadline = 10 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Browsers cannot set Authorization headers on WebSocket requests, so
	// the token travels in the first frame and origins are not restricted
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEnvelope is the shape of every server→client frame
type wsEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// authFrame is the required first client frame
type authFrame struct {
	Type      string `json:"type"`
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
}

// controlFrame is any later text frame from the client
type controlFrame struct {
	Type    string `json:"type"`
	Persona string `json:"persona"`
}

// handleSession runs one live coaching session over a WebSocket. The
// first frame must authenticate; after that, binary frames carry PCM
// audio and text frames carry control messages. The session is owned by
// this handler's read loop, so chunks are processed in arrival order.
func (s *Server) handleSession(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Writes come from this goroutine and, on disconnect, the deferred
	// close path; the mutex keeps frames whole
	var writeMu sync.Mutex
	emit := func(event string, data interface{}) {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(wsEnvelope{Event: event, Data: data}); err != nil {
			s.logger.Debug("websocket write failed: %v", err)
		}
	}

	conn.SetReadDeadline(time.Now().Add(authDeadline))
	_, first, err := conn.ReadMessage()
	if err != nil {
		return
	}

	var auth authFrame
	if err := json.Unmarshal(first, &auth); err != nil || auth.Type != "auth" {
		emit(session.EventError, gin.H{"code": errors.CodeUnauthorized, "message": "first message must be an auth frame"})
		return
	}

	userID, err := s.auth.VerifyToken(auth.Token)
	if err != nil {
		emit(session.EventError, gin.H{"code": errors.CodeUnauthorized, "message": "invalid or expired token"})
		return
	}
	conn.SetReadDeadline(time.Time{})

	sess, err := s.sessions.Open(userID, auth.SessionID, emit)
	if err != nil {
		emit(session.EventError, gin.H{"code": errors.GetCode(err), "message": err.Error()})
		return
	}
	defer s.sessions.Close(sess, emit)

	ctx := c.Request.Context()
	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("session %s: websocket read failed: %v", sess.ID, err)
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			s.sessions.SubmitChunk(ctx, sess, payload, emit)

		case websocket.TextMessage:
			var control controlFrame
			if err := json.Unmarshal(payload, &control); err != nil {
				emit(session.EventError, gin.H{"code": errors.CodeValidationError, "message": "malformed control message"})
				continue
			}

			switch control.Type {
			case "request_investor_response":
				s.sessions.RequestInvestorResponse(ctx, sess, control.Persona, emit)
			case "end_session":
				return
			default:
				emit(session.EventError, gin.H{"code": errors.CodeValidationError, "message": "unknown control type: " + control.Type})
			}
		}
	}
}
