package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	apierrors "github.com/taskaboard/realtime-api/internal/errors"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size. Intents are small; descriptions are the
	// only free-form field.
	maxMessageSize = 64 * 1024

	// Outbound buffer per session. A session that falls this far behind is
	// closed instead of stalling the room.
	sendBufferSize = 256
)

// Session is the per-connection gateway between a WebSocket client and the
// sync engine. It decodes inbound intents on its read pump and encodes
// outbound events on its write pump.
type Session struct {
	hub    *Hub
	engine *Engine
	conn   *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession wraps an upgraded connection
func NewSession(hub *Hub, engine *Engine, conn *websocket.Conn) *Session {
	return &Session{
		hub:    hub,
		engine: engine,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Start runs the read and write pumps. It returns when the connection is
// gone; room membership is always cleaned up, whatever the close reason.
func (s *Session) Start() {
	go s.writePump()
	s.readPump()
}

// Deliver implements Client. It never blocks: if the session's buffer is
// full the session is closed as a slow consumer, and messages to a closed
// session are dropped.
func (s *Session) Deliver(msg Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		log.Printf("realtime: failed to encode %s event: %v", msg.Event, err)
		return
	}

	select {
	case <-s.done:
	case s.send <- raw:
	default:
		s.close()
	}
}

func (s *Session) readPump() {
	defer s.close()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("realtime: read error: %v", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Event == "" {
			s.engine.sendError(s, "", apierrors.ErrCodeValidation, "malformed message envelope")
			continue
		}

		s.engine.Dispatch(s, msg)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case raw := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// close transitions the session to its terminal state exactly once: leave
// the room, stop the write pump, drop the connection.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.hub.Leave(s)
		close(s.done)
		s.conn.Close()
	})
}
