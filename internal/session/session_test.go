package session

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestSession(queueSize int) *Session {
	return New("s1", nil, zap.NewNop(), queueSize, 64*1024, 0, 0)
}

func TestStateMachine(t *testing.T) {
	s := newTestSession(4)
	if s.State() != StateConnecting {
		t.Fatalf("expected connecting, got %s", s.State())
	}

	if err := s.SetJoined("r1", "alice"); err != nil {
		t.Fatalf("join from connecting: %v", err)
	}
	if s.State() != StateJoined {
		t.Fatalf("expected joined, got %s", s.State())
	}
	roomID, username := s.Room()
	if roomID != "r1" || username != "alice" {
		t.Errorf("expected (r1, alice), got (%s, %s)", roomID, username)
	}

	// No second join from Joined.
	if err := s.SetJoined("r2", "alice"); !errors.Is(err, ErrNotConnecting) {
		t.Errorf("expected ErrNotConnecting, got %v", err)
	}

	s.MarkLeft()
	if s.State() != StateLeft {
		t.Fatalf("expected left, got %s", s.State())
	}
	if roomID, _ := s.Room(); roomID != "" {
		t.Errorf("left session still reports room %q", roomID)
	}

	// Left is terminal.
	if err := s.SetJoined("r1", "alice"); !errors.Is(err, ErrNotConnecting) {
		t.Errorf("expected ErrNotConnecting after leave, got %v", err)
	}
	s.MarkDisconnected()
	if s.State() != StateLeft {
		t.Errorf("left must not transition to disconnected, got %s", s.State())
	}
}

func TestMarkDisconnectedFromConnecting(t *testing.T) {
	s := newTestSession(4)
	s.MarkDisconnected()
	if s.State() != StateDisconnected {
		t.Errorf("expected disconnected, got %s", s.State())
	}
	if err := s.SetJoined("r1", "a"); !errors.Is(err, ErrNotConnecting) {
		t.Errorf("disconnected is terminal, got %v", err)
	}
}

func TestMarkLeftOnlyFromJoined(t *testing.T) {
	s := newTestSession(4)
	s.MarkLeft()
	if s.State() != StateConnecting {
		t.Errorf("leave before join must not change state, got %s", s.State())
	}
}

func TestTrySendOverflow(t *testing.T) {
	s := newTestSession(2)
	if !s.TrySend([]byte("one")) || !s.TrySend([]byte("two")) {
		t.Fatal("sends within queue capacity failed")
	}
	// Queue full and nothing draining it.
	if s.TrySend([]byte("three")) {
		t.Error("expected overflow to report false")
	}
}

func TestKeepaliveTiming(t *testing.T) {
	// Unset timings fall back to a detection window of a few seconds,
	// so a silently dropped peer does not linger in its room.
	s := newTestSession(1)
	if s.pongWait != 5*time.Second || s.pingInterval != 2*time.Second {
		t.Errorf("defaults: got ping=%v pong=%v", s.pingInterval, s.pongWait)
	}

	s = New("s2", nil, zap.NewNop(), 1, 1024, 1*time.Second, 3*time.Second)
	if s.pingInterval != 1*time.Second || s.pongWait != 3*time.Second {
		t.Errorf("explicit: got ping=%v pong=%v", s.pingInterval, s.pongWait)
	}

	// A ping interval that does not fit inside the pong window is
	// replaced, never kept.
	s = New("s3", nil, zap.NewNop(), 1, 1024, 10*time.Second, 3*time.Second)
	if s.pingInterval >= s.pongWait {
		t.Errorf("ping %v must be shorter than pong wait %v", s.pingInterval, s.pongWait)
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateConnecting:   "connecting",
		StateJoined:       "joined",
		StateLeft:         "left",
		StateDisconnected: "disconnected",
		State(42):         "unknown",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", st, got, want)
		}
	}
}
