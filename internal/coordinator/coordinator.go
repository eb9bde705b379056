package coordinator

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Mandy077/TaskAssigner-1/internal/config"
	"github.com/Mandy077/TaskAssigner-1/internal/mesh"
	"github.com/Mandy077/TaskAssigner-1/internal/metrics"
	"github.com/Mandy077/TaskAssigner-1/internal/protocol"
	"github.com/Mandy077/TaskAssigner-1/internal/room"
	"github.com/Mandy077/TaskAssigner-1/internal/session"
)

// Coordinator is the client-facing façade of the meeting service. It
// owns the session endpoints and wires the room registry, the mesh
// coordinator, the signal relay, the presence broadcaster, and the
// chat relay to each connection's event stream.
type Coordinator struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *room.Registry
	mesh     *mesh.Coordinator
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// New creates a Coordinator with a full-mesh topology.
func New(cfg *config.Config, logger *zap.Logger) *Coordinator {
	c := &Coordinator{
		cfg:      cfg,
		logger:   logger,
		registry: room.NewRegistry(cfg.MaxRoomSize),
		mesh:     mesh.NewCoordinator(mesh.FullMesh{}),
		sessions: make(map[string]*session.Session),
	}
	c.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return c
}

// Registry exposes the room registry, for the HTTP occupancy endpoint
// and for tests.
func (c *Coordinator) Registry() *room.Registry { return c.registry }

// Mesh exposes the link records, for tests.
func (c *Coordinator) Mesh() *mesh.Coordinator { return c.mesh }

// SessionCount returns the number of open connections.
func (c *Coordinator) SessionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

func (c *Coordinator) addSession(s *session.Session) {
	c.mu.Lock()
	c.sessions[s.ID] = s
	c.mu.Unlock()
	metrics.ActiveConnections.Inc()
}

func (c *Coordinator) sessionByID(id string) (*session.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[id]
	return s, ok
}

// dropSession runs when a session's read pump exits, whatever the
// cause. Transport loss of a joined participant is an implicit leave:
// the registry, the mesh, and the other members all see it exactly as
// if leave-room had been sent.
func (c *Coordinator) dropSession(s *session.Session) {
	c.mu.Lock()
	delete(c.sessions, s.ID)
	c.mu.Unlock()
	metrics.ActiveConnections.Dec()

	if s.State() == session.StateJoined {
		roomID, _ := s.Room()
		s.MarkDisconnected()
		c.finishLeave(s, roomID, "disconnected")
	} else {
		s.MarkDisconnected()
	}
	c.logger.Info("session closed",
		zap.String("session", s.ID),
		zap.String("state", s.State().String()),
	)
}

// finishLeave removes the session from its room, tears down its links,
// and tells the remaining members. Shared by explicit leave, transport
// loss, and overflow termination.
func (c *Coordinator) finishLeave(s *session.Session, roomID, cause string) {
	remaining := c.registry.Leave(roomID, s.ID)
	torn := c.mesh.PeerLeft(roomID, s.ID)

	metrics.LeavesTotal.WithLabelValues(cause).Inc()
	metrics.ActiveParticipants.Dec()
	metrics.ActiveRooms.Set(float64(c.registry.RoomCount()))

	frame, err := protocol.Marshal(protocol.TypeUserLeft, protocol.UserLeft{SessionID: s.ID})
	if err != nil {
		c.logger.Error("marshal user-left", zap.Error(err))
		return
	}
	c.deliverToMembers(remaining, "", frame)

	c.logger.Info("participant left",
		zap.String("session", s.ID),
		zap.String("room", roomID),
		zap.String("cause", cause),
		zap.Int("linksTorn", len(torn)),
		zap.Int("remaining", len(remaining)),
	)
}

// deliverToMembers fans a frame out to the given members, skipping
// excludeID. Delivery is fire-and-forget: a recipient whose queue is
// full is terminated instead of back-pressuring the sender.
func (c *Coordinator) deliverToMembers(members []room.Participant, excludeID string, frame []byte) {
	for _, m := range members {
		if m.SessionID == excludeID {
			continue
		}
		target, ok := c.sessionByID(m.SessionID)
		if !ok {
			continue
		}
		if !target.TrySend(frame) {
			metrics.BroadcastDropsTotal.Inc()
			c.terminateOverflow(target)
		}
	}
}

// broadcastToRoom sends a frame to the room's current members.
func (c *Coordinator) broadcastToRoom(roomID, excludeID string, frame []byte) {
	members, ok := c.registry.Members(roomID)
	if !ok {
		return
	}
	c.deliverToMembers(members, excludeID, frame)
}

// terminateOverflow kills a connection whose send queue is full. Its
// read pump unwinds and runs the normal implicit-leave path, so the
// rest of the room sees a clean departure.
func (c *Coordinator) terminateOverflow(s *session.Session) {
	metrics.OverflowDisconnectsTotal.Inc()
	c.logger.Warn("send queue overflow, terminating session", zap.String("session", s.ID))
	s.Close()
}

// Shutdown closes every open session. Each close drives the usual
// leave path from the session's own read pump.
func (c *Coordinator) Shutdown() {
	c.mu.RLock()
	open := make([]*session.Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		open = append(open, s)
	}
	c.mu.RUnlock()

	for _, s := range open {
		s.Close()
	}
	c.logger.Info("coordinator shutdown complete", zap.Int("closed", len(open)))
}

func toWireParticipant(p room.Participant) protocol.Participant {
	return protocol.Participant{
		SessionID:    p.SessionID,
		Username:     p.Username,
		AudioEnabled: p.AudioEnabled,
		VideoEnabled: p.VideoEnabled,
	}
}

func toWireParticipants(ps []room.Participant) []protocol.Participant {
	out := make([]protocol.Participant, 0, len(ps))
	for _, p := range ps {
		out = append(out, toWireParticipant(p))
	}
	return out
}
