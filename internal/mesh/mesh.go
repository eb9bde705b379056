package mesh

// LinkKey identifies a PeerLink by its unordered pair of session IDs.
// A sorts before B so the same pair always yields the same key.
type LinkKey struct {
	A, B string
}

// KeyFor builds the canonical key for a pair of sessions.
func KeyFor(x, y string) LinkKey {
	if x < y {
		return LinkKey{A: x, B: y}
	}
	return LinkKey{A: y, B: x}
}

// Link is the coordination-layer record of one pairwise negotiated
// relationship. Initiator is the side that sends the first offer.
type Link struct {
	Key       LinkKey
	Initiator string
	Responder string
}

// Touches reports whether the link has sessionID as an endpoint.
func (l Link) Touches(sessionID string) bool {
	return l.Key.A == sessionID || l.Key.B == sessionID
}

// Topology decides which links a newcomer must establish against the
// existing members of its room. FullMesh is the only policy today; the
// interface leaves the link-count policy swappable for a future
// selective-forwarding deployment without touching the registry or
// relay contracts.
type Topology interface {
	LinksFor(newcomer string, existing []string) []Link
}

// FullMesh links the newcomer to every existing member. The newcomer
// is always the initiator: it is the one side that already knows the
// full member list, so exactly one initiator per pair falls out
// without any election.
type FullMesh struct{}

func (FullMesh) LinksFor(newcomer string, existing []string) []Link {
	links := make([]Link, 0, len(existing))
	for _, peer := range existing {
		links = append(links, Link{
			Key:       KeyFor(newcomer, peer),
			Initiator: newcomer,
			Responder: peer,
		})
	}
	return links
}
