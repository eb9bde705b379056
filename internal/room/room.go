package room

import "sync"

// Participant is a room member. The registry owns membership; the
// enable-flags belong to the participant itself and are only ever
// toggled through SetMediaState on its own session.
type Participant struct {
	SessionID    string
	Username     string
	AudioEnabled bool
	VideoEnabled bool
}

// Room holds the members of one meeting. Membership mutations for a
// room are serialized on its mutex; rooms mutate independently of each
// other. Join order is preserved so the newcomer-initiates rule has a
// stable member list to work from.
type Room struct {
	id string

	mu      sync.Mutex
	members map[string]*Participant
	order   []string
}

func newRoom(id string) *Room {
	return &Room{
		id:      id,
		members: make(map[string]*Participant),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

func (r *Room) addLocked(p *Participant) {
	r.members[p.SessionID] = p
	r.order = append(r.order, p.SessionID)
}

func (r *Room) removeLocked(sessionID string) bool {
	if _, ok := r.members[sessionID]; !ok {
		return false
	}
	delete(r.members, sessionID)
	for i, id := range r.order {
		if id == sessionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// snapshotLocked returns value copies of the members in join order.
func (r *Room) snapshotLocked() []Participant {
	out := make([]Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.members[id])
	}
	return out
}
