package session

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Keepalive defaults. A silently dropped peer is a ghost in its
	// room until the pong deadline expires, so the window is kept to a
	// few seconds.
	defaultPingInterval = 2 * time.Second
	defaultPongWait     = 5 * time.Second
)

// State is the lifecycle position of one participant connection.
// There are no transitions out of Left or Disconnected: a returning
// participant opens a new connection and gets a new session ID.
type State int

const (
	StateConnecting State = iota
	StateJoined
	StateLeft
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	case StateLeft:
		return "left"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ErrNotConnecting is returned when a join is attempted from any state
// other than Connecting.
var ErrNotConnecting = errors.New("session is not in connecting state")

// Session is one participant's connection to the coordination service.
// All of that participant's events are multiplexed over it. Outbound
// frames go through a bounded queue drained by WritePump; a full queue
// means the connection is terminated rather than allowed to stall
// everyone else.
type Session struct {
	ID string

	conn      *websocket.Conn
	logger    *zap.Logger
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	maxMessageBytes int64
	pingInterval    time.Duration
	pongWait        time.Duration

	mu       sync.Mutex
	state    State
	roomID   string
	username string
}

// New wraps an upgraded websocket connection in a Session. Keepalive
// timing falls back to the defaults when pongWait is unset or the ping
// interval would not fit inside it.
func New(id string, conn *websocket.Conn, logger *zap.Logger, queueSize int, maxMessageBytes int64, pingInterval, pongWait time.Duration) *Session {
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	if pingInterval <= 0 || pingInterval >= pongWait {
		pingInterval = defaultPingInterval
		if pingInterval >= pongWait {
			pingInterval = pongWait * 2 / 5
		}
	}
	return &Session{
		ID:              id,
		conn:            conn,
		logger:          logger.With(zap.String("session", id)),
		send:            make(chan []byte, queueSize),
		done:            make(chan struct{}),
		maxMessageBytes: maxMessageBytes,
		pingInterval:    pingInterval,
		pongWait:        pongWait,
		state:           StateConnecting,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Room returns the joined room and display name. roomID is empty
// unless the session is in StateJoined.
func (s *Session) Room() (roomID, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateJoined {
		return "", s.username
	}
	return s.roomID, s.username
}

// SetJoined moves Connecting -> Joined and records the membership.
func (s *Session) SetJoined(roomID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnecting {
		return ErrNotConnecting
	}
	s.state = StateJoined
	s.roomID = roomID
	s.username = username
	return nil
}

// MarkLeft moves Joined -> Left. Terminal.
func (s *Session) MarkLeft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateJoined {
		s.state = StateLeft
	}
}

// MarkDisconnected records transport loss. Treated like Left for
// membership purposes, kept distinct for diagnostics. Terminal.
func (s *Session) MarkDisconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateConnecting || s.state == StateJoined {
		s.state = StateDisconnected
	}
}

// TrySend enqueues a frame without blocking. It returns false only
// when the queue is full; frames for a closing session are dropped
// silently, since delivery is best-effort by contract.
func (s *Session) TrySend(frame []byte) bool {
	select {
	case <-s.done:
		return true
	default:
	}
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

// Close tears down the transport. Safe to call more than once and
// from any goroutine; pumps unwind on their own.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// Done reports closure to anyone selecting on the session.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// ReadPump reads frames and hands them to onFrame in arrival order.
// It owns all reads on the connection. onClose runs exactly once when
// the pump exits, whatever the cause.
func (s *Session) ReadPump(onFrame func(raw []byte), onClose func()) {
	defer func() {
		onClose()
		s.Close()
	}()

	s.conn.SetReadLimit(s.maxMessageBytes)
	s.conn.SetReadDeadline(time.Now().Add(s.pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(s.pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("read failed", zap.Error(err))
			}
			return
		}
		onFrame(raw)
	}
}

// WritePump drains the send queue onto the connection and keeps the
// link alive with pings. It owns all writes on the connection.
func (s *Session) WritePump() {
	ticker := time.NewTicker(s.pingInterval)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case frame := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
