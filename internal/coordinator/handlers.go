package coordinator

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Mandy077/TaskAssigner-1/internal/metrics"
	"github.com/Mandy077/TaskAssigner-1/internal/protocol"
	"github.com/Mandy077/TaskAssigner-1/internal/room"
	"github.com/Mandy077/TaskAssigner-1/internal/session"
)

// buildRouter wires the per-connection event handlers. The router runs
// on the connection's read pump, so every handler for a given session
// executes in arrival order; concurrency only exists across sessions.
func (c *Coordinator) buildRouter(s *session.Session) *protocol.Router {
	r := protocol.NewRouter()
	r.Register(protocol.TypeJoinRoom, func(p json.RawMessage) error { return c.handleJoin(s, p) })
	r.Register(protocol.TypeLeaveRoom, func(p json.RawMessage) error { return c.handleLeave(s) })
	r.Register(protocol.TypeSignal, func(p json.RawMessage) error { return c.handleSignal(s, p) })
	r.Register(protocol.TypeSendMessage, func(p json.RawMessage) error { return c.handleChat(s, p) })
	r.Register(protocol.TypeToggleMedia, func(p json.RawMessage) error { return c.handleToggle(s, p) })
	return r
}

func (c *Coordinator) dispatch(s *session.Session, router *protocol.Router, raw []byte) {
	if err := router.Dispatch(raw); err != nil {
		metrics.BadFramesTotal.Inc()
		c.logger.Warn("dispatch failed",
			zap.String("session", s.ID),
			zap.Error(err),
		)
		c.sendError(s, protocol.CodeBadRequest, err.Error())
	}
}

func (c *Coordinator) handleJoin(s *session.Session, payload json.RawMessage) error {
	var req protocol.JoinRoom
	if err := json.Unmarshal(payload, &req); err != nil {
		return errors.New("invalid join-room payload")
	}
	req.RoomID = strings.TrimSpace(req.RoomID)
	req.Username = strings.TrimSpace(req.Username)
	if req.RoomID == "" || req.Username == "" {
		return errors.New("join-room requires roomId and username")
	}

	switch s.State() {
	case session.StateJoined:
		c.sendError(s, protocol.CodeAlreadyJoined, "already in a room, leave first")
		return nil
	case session.StateLeft, session.StateDisconnected:
		// Terminal states. A returning participant opens a new
		// connection with a new session ID.
		c.sendError(s, protocol.CodeBadRequest, "session has ended")
		return nil
	}

	prior, err := c.registry.Join(req.RoomID, s.ID, req.Username)
	switch {
	case errors.Is(err, room.ErrAlreadyJoined):
		c.sendError(s, protocol.CodeAlreadyJoined, "already in a room, leave first")
		metrics.JoinsRejectedTotal.WithLabelValues("already_joined").Inc()
		return nil
	case errors.Is(err, room.ErrRoomFull):
		c.sendError(s, protocol.CodeRoomFull, "room is full")
		metrics.JoinsRejectedTotal.WithLabelValues("room_full").Inc()
		return nil
	case err != nil:
		return err
	}

	if err := s.SetJoined(req.RoomID, req.Username); err != nil {
		// Unreachable while handlers stay on the read pump, but the
		// registry must not keep a member the session never entered.
		c.registry.Leave(req.RoomID, s.ID)
		return err
	}

	// Join reply: the prior members in join order. The joiner is the
	// initiator for every one of them. Admission is not announced until
	// the reply is queued: a joiner terminated here was never seen by
	// the room, so the others must not get a user-left for it either.
	reply, err := protocol.Marshal(protocol.TypeRoomParticipants, protocol.RoomParticipants{
		Participants: toWireParticipants(prior),
	})
	if err != nil {
		return err
	}
	if !s.TrySend(reply) {
		c.registry.Leave(req.RoomID, s.ID)
		s.MarkDisconnected()
		c.terminateOverflow(s)
		return nil
	}

	existing := make([]string, 0, len(prior))
	for _, p := range prior {
		existing = append(existing, p.SessionID)
	}
	links := c.mesh.PeerJoined(req.RoomID, s.ID, existing)

	metrics.JoinsTotal.Inc()
	metrics.ActiveParticipants.Inc()
	metrics.RoomSize.Observe(float64(len(prior) + 1))
	metrics.ActiveRooms.Set(float64(c.registry.RoomCount()))

	// Notify the prior members; they wait for offers from the joiner.
	joined, err := protocol.Marshal(protocol.TypeUserJoined, protocol.UserJoined{
		Participant: protocol.Participant{
			SessionID:    s.ID,
			Username:     req.Username,
			AudioEnabled: true,
			VideoEnabled: true,
		},
	})
	if err != nil {
		return err
	}
	c.deliverToMembers(prior, "", joined)

	c.logger.Info("participant joined",
		zap.String("session", s.ID),
		zap.String("room", req.RoomID),
		zap.String("username", req.Username),
		zap.Int("peers", len(prior)),
		zap.Int("newLinks", len(links)),
	)
	return nil
}

func (c *Coordinator) handleLeave(s *session.Session) error {
	if s.State() != session.StateJoined {
		// Idempotent: leaving a room you are not in is a no-op.
		return nil
	}
	roomID, _ := s.Room()
	s.MarkLeft()
	c.finishLeave(s, roomID, "explicit")
	return nil
}

func (c *Coordinator) handleSignal(s *session.Session, payload json.RawMessage) error {
	var req protocol.Signal
	if err := json.Unmarshal(payload, &req); err != nil {
		return errors.New("invalid signal payload")
	}
	if req.To == "" {
		return errors.New("signal requires a target session")
	}

	roomID, _ := s.Room()
	if roomID == "" {
		metrics.SignalsDroppedTotal.Inc()
		return nil
	}

	// Deliver only if the target is still a member of the sender's
	// room. A target that already left is an expected race; the
	// payload is dropped without telling anyone.
	targetRoom, ok := c.registry.RoomOf(req.To)
	if !ok || targetRoom != roomID {
		metrics.SignalsDroppedTotal.Inc()
		return nil
	}
	target, ok := c.sessionByID(req.To)
	if !ok {
		metrics.SignalsDroppedTotal.Inc()
		return nil
	}

	frame, err := protocol.Marshal(protocol.TypeSignal, protocol.ForwardedSignal{
		From:    s.ID,
		Payload: req.Payload,
	})
	if err != nil {
		return err
	}
	if !target.TrySend(frame) {
		metrics.BroadcastDropsTotal.Inc()
		c.terminateOverflow(target)
		return nil
	}
	metrics.SignalsRelayedTotal.Inc()
	return nil
}

func (c *Coordinator) handleChat(s *session.Session, payload json.RawMessage) error {
	var req protocol.SendMessage
	if err := json.Unmarshal(payload, &req); err != nil {
		return errors.New("invalid send-message payload")
	}
	if strings.TrimSpace(req.Body) == "" {
		return errors.New("send-message requires a body")
	}

	roomID, username := s.Room()
	if roomID == "" {
		c.sendError(s, protocol.CodeNotInRoom, "join a room before sending messages")
		return nil
	}

	// Echo to everyone including the sender, so every client renders
	// one authoritative stream.
	frame, err := protocol.Marshal(protocol.TypeNewMessage, protocol.NewMessage{
		Sender: username,
		Body:   req.Body,
		SentAt: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	c.broadcastToRoom(roomID, "", frame)
	metrics.ChatMessagesTotal.Inc()
	return nil
}

func (c *Coordinator) handleToggle(s *session.Session, payload json.RawMessage) error {
	var req protocol.ToggleMedia
	if err := json.Unmarshal(payload, &req); err != nil {
		return errors.New("invalid toggle-media payload")
	}
	if !protocol.ValidChannel(req.Channel) {
		return errors.New("toggle-media channel must be audio or video")
	}

	roomID, _ := s.Room()
	if roomID == "" {
		// Stale toggle after leave. Expected race, dropped silently.
		return nil
	}

	p, ok := c.registry.SetMediaState(roomID, s.ID, req.Channel, req.Enabled)
	if !ok {
		return nil
	}

	frame, err := protocol.Marshal(protocol.TypeUserToggleMedia, protocol.UserToggleMedia{
		SessionID: p.SessionID,
		Channel:   req.Channel,
		Enabled:   req.Enabled,
	})
	if err != nil {
		return err
	}
	// The toggling participant already knows its own state.
	c.broadcastToRoom(roomID, s.ID, frame)
	return nil
}

func (c *Coordinator) sendError(s *session.Session, code, message string) {
	frame, err := protocol.Marshal(protocol.TypeError, protocol.Error{Code: code, Message: message})
	if err != nil {
		return
	}
	if !s.TrySend(frame) {
		c.terminateOverflow(s)
	}
}
