package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Session wraps a preview WebSocket connection. Reads happen on the
// session goroutine only; writes are serialized.
type Session struct {
	conn *websocket.Conn
	ip   string
	mu   sync.Mutex // Protects writes to conn
}

// NewSession creates a Session and applies the inbound message size limit.
func NewSession(conn *websocket.Conn, ip string, maxMessageSize int64) *Session {
	if maxMessageSize > 0 {
		conn.SetReadLimit(maxMessageSize)
	}
	return &Session{conn: conn, ip: ip}
}

// ReadRequest blocks until the next request arrives.
func (s *Session) ReadRequest() (Request, error) {
	var req Request
	err := s.conn.ReadJSON(&req)
	return req, err
}

// WriteResponse sends resp as a JSON text message.
func (s *Session) WriteResponse(resp Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(resp)
}

// Close sends a close frame and closes the connection.
func (s *Session) Close() error {
	s.mu.Lock()
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(time.Second))
	s.mu.Unlock()
	return s.conn.Close()
}
