package room

import (
	"errors"
	"sync"
)

var (
	// ErrAlreadyJoined is returned when a session joins while it is
	// still a member of some room. Join is not idempotent.
	ErrAlreadyJoined = errors.New("session already joined a room")

	// ErrRoomFull is returned when a room has reached the configured
	// occupancy cap.
	ErrRoomFull = errors.New("room is full")
)

// Registry is the authoritative map from room identifier to the set of
// active participants. Rooms are created lazily on first join and
// destroyed when their last member leaves. A session belongs to at
// most one room at a time.
//
// The registry mutex guards the room table and the session index; each
// Room serializes its own membership mutations. Room mutexes are only
// acquired while holding (or after releasing) the registry mutex,
// never the other way around.
type Registry struct {
	maxRoomSize int

	mu    sync.RWMutex
	rooms map[string]*Room
	index map[string]string // sessionID -> roomID
}

// NewRegistry creates a registry. maxRoomSize of 0 means unbounded.
func NewRegistry(maxRoomSize int) *Registry {
	return &Registry{
		maxRoomSize: maxRoomSize,
		rooms:       make(map[string]*Room),
		index:       make(map[string]string),
	}
}

// Join admits a session into a room and returns the room's prior
// members in join order, excluding the joiner. The joiner starts with
// both media channels enabled.
func (g *Registry) Join(roomID, sessionID, username string) ([]Participant, error) {
	g.mu.Lock()
	if _, joined := g.index[sessionID]; joined {
		g.mu.Unlock()
		return nil, ErrAlreadyJoined
	}
	r, ok := g.rooms[roomID]
	if !ok {
		r = newRoom(roomID)
		g.rooms[roomID] = r
	}
	r.mu.Lock()
	if g.maxRoomSize > 0 && len(r.members) >= g.maxRoomSize {
		r.mu.Unlock()
		g.mu.Unlock()
		return nil, ErrRoomFull
	}
	g.index[sessionID] = roomID
	g.mu.Unlock()

	prior := r.snapshotLocked()
	r.addLocked(&Participant{
		SessionID:    sessionID,
		Username:     username,
		AudioEnabled: true,
		VideoEnabled: true,
	})
	r.mu.Unlock()
	return prior, nil
}

// Leave removes a session from a room and returns the remaining
// members. Leaving a room the session is not in is a no-op, not an
// error. The room is destroyed when it empties.
func (g *Registry) Leave(roomID, sessionID string) []Participant {
	g.mu.Lock()
	r, ok := g.rooms[roomID]
	if !ok {
		// Only drop the index entry when it points at this room; a
		// leave naming some other room must not evict a live session.
		if g.index[sessionID] == roomID {
			delete(g.index, sessionID)
		}
		g.mu.Unlock()
		return nil
	}
	r.mu.Lock()
	removed := r.removeLocked(sessionID)
	if removed {
		delete(g.index, sessionID)
	}
	if len(r.members) == 0 {
		delete(g.rooms, roomID)
	}
	g.mu.Unlock()

	remaining := r.snapshotLocked()
	r.mu.Unlock()
	return remaining
}

// SetMediaState updates one enable-flag of a current member and
// returns the updated participant for broadcast. Stale toggles from a
// session that already left report ok=false and change nothing.
func (g *Registry) SetMediaState(roomID, sessionID, channel string, enabled bool) (Participant, bool) {
	g.mu.RLock()
	r, ok := g.rooms[roomID]
	g.mu.RUnlock()
	if !ok {
		return Participant{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.members[sessionID]
	if !ok {
		return Participant{}, false
	}
	switch channel {
	case "audio":
		p.AudioEnabled = enabled
	case "video":
		p.VideoEnabled = enabled
	default:
		return Participant{}, false
	}
	return *p, true
}

// Members returns the current members of a room in join order, with
// ok=false when the room does not exist.
func (g *Registry) Members(roomID string) ([]Participant, bool) {
	g.mu.RLock()
	r, ok := g.rooms[roomID]
	g.mu.RUnlock()
	if !ok {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(), true
}

// RoomOf returns the room a session is currently joined to.
func (g *Registry) RoomOf(sessionID string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	roomID, ok := g.index[sessionID]
	return roomID, ok
}

// RoomCount returns the number of live rooms.
func (g *Registry) RoomCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
