package mesh

import "sync"

// Coordinator tracks the expected pairwise links of every room. It is
// the bookkeeping side of mesh negotiation: clients drive the actual
// offers and answers, the coordinator records which links should exist
// and who initiates each one.
type Coordinator struct {
	topo Topology

	mu    sync.Mutex
	rooms map[string]map[LinkKey]Link
}

// NewCoordinator creates a coordinator using the given topology.
func NewCoordinator(topo Topology) *Coordinator {
	return &Coordinator{
		topo:  topo,
		rooms: make(map[string]map[LinkKey]Link),
	}
}

// PeerJoined records the links a newcomer must establish against the
// existing members and returns them. Existing links are untouched.
func (c *Coordinator) PeerJoined(roomID, sessionID string, existing []string) []Link {
	links := c.topo.LinksFor(sessionID, existing)

	c.mu.Lock()
	defer c.mu.Unlock()
	table, ok := c.rooms[roomID]
	if !ok {
		table = make(map[LinkKey]Link)
		c.rooms[roomID] = table
	}
	for _, l := range links {
		table[l.Key] = l
	}
	return links
}

// PeerLeft tears down every link touching the departed session and
// returns the removed links. The room's table is dropped when no
// links remain.
func (c *Coordinator) PeerLeft(roomID, sessionID string) []Link {
	c.mu.Lock()
	defer c.mu.Unlock()
	table, ok := c.rooms[roomID]
	if !ok {
		return nil
	}
	var removed []Link
	for key, l := range table {
		if l.Touches(sessionID) {
			removed = append(removed, l)
			delete(table, key)
		}
	}
	if len(table) == 0 {
		delete(c.rooms, roomID)
	}
	return removed
}

// Initiator reports which of the two sessions initiates their link,
// with ok=false when no such link is recorded.
func (c *Coordinator) Initiator(roomID, x, y string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	table, ok := c.rooms[roomID]
	if !ok {
		return "", false
	}
	l, ok := table[KeyFor(x, y)]
	if !ok {
		return "", false
	}
	return l.Initiator, true
}

// LinkCount returns the number of recorded links in a room.
func (c *Coordinator) LinkCount(roomID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rooms[roomID])
}
