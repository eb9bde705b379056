package mesh

import "testing"

func TestKeyForIsCanonical(t *testing.T) {
	if KeyFor("a", "b") != KeyFor("b", "a") {
		t.Error("key depends on argument order")
	}
	k := KeyFor("b", "a")
	if k.A != "a" || k.B != "b" {
		t.Errorf("expected {a b}, got %+v", k)
	}
}

func TestFullMeshNewcomerInitiates(t *testing.T) {
	links := FullMesh{}.LinksFor("c", []string{"a", "b"})
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	for _, l := range links {
		if l.Initiator != "c" {
			t.Errorf("link %+v: initiator should be the newcomer", l)
		}
		if l.Responder == "c" {
			t.Errorf("link %+v: newcomer cannot respond to itself", l)
		}
	}
}

func TestMeshLinkCountGrowsQuadratically(t *testing.T) {
	c := NewCoordinator(FullMesh{})

	// K joins produce K*(K-1)/2 links.
	members := []string{}
	ids := []string{"a", "b", "c", "d", "e"}
	for i, id := range ids {
		links := c.PeerJoined("r1", id, members)
		if len(links) != i {
			t.Errorf("join %s: expected %d new links, got %d", id, i, len(links))
		}
		members = append(members, id)
		want := (i + 1) * i / 2
		if got := c.LinkCount("r1"); got != want {
			t.Errorf("after %d joins: expected %d links, got %d", i+1, want, got)
		}
	}
}

func TestInitiatorIsLaterJoiner(t *testing.T) {
	c := NewCoordinator(FullMesh{})
	c.PeerJoined("r1", "a", nil)
	c.PeerJoined("r1", "b", []string{"a"})
	c.PeerJoined("r1", "c", []string{"a", "b"})

	cases := []struct{ x, y, want string }{
		{"a", "b", "b"},
		{"a", "c", "c"},
		{"b", "c", "c"},
	}
	for _, tc := range cases {
		got, ok := c.Initiator("r1", tc.x, tc.y)
		if !ok {
			t.Errorf("no link recorded for %s-%s", tc.x, tc.y)
			continue
		}
		if got != tc.want {
			t.Errorf("pair %s-%s: expected initiator %s, got %s", tc.x, tc.y, tc.want, got)
		}
	}
}

func TestPeerLeftTearsDownTouchingLinksOnly(t *testing.T) {
	c := NewCoordinator(FullMesh{})
	c.PeerJoined("r1", "a", nil)
	c.PeerJoined("r1", "b", []string{"a"})
	c.PeerJoined("r1", "c", []string{"a", "b"})

	removed := c.PeerLeft("r1", "b")
	if len(removed) != 2 {
		t.Fatalf("expected 2 torn links, got %d", len(removed))
	}
	for _, l := range removed {
		if !l.Touches("b") {
			t.Errorf("torn link %+v does not touch b", l)
		}
	}
	if got := c.LinkCount("r1"); got != 1 {
		t.Errorf("expected 1 surviving link, got %d", got)
	}
	if _, ok := c.Initiator("r1", "a", "c"); !ok {
		t.Error("a-c link should survive b's departure")
	}
	if _, ok := c.Initiator("r1", "a", "b"); ok {
		t.Error("a-b link should be gone")
	}
}

func TestRoomTableDroppedWhenEmpty(t *testing.T) {
	c := NewCoordinator(FullMesh{})
	c.PeerJoined("r1", "a", nil)
	c.PeerJoined("r1", "b", []string{"a"})

	c.PeerLeft("r1", "a")
	c.PeerLeft("r1", "b")
	if got := c.LinkCount("r1"); got != 0 {
		t.Errorf("expected 0 links, got %d", got)
	}
	if _, ok := c.rooms["r1"]; ok {
		t.Error("empty room table not dropped")
	}

	// Leaving an unknown room is harmless.
	if removed := c.PeerLeft("nope", "x"); removed != nil {
		t.Errorf("unexpected removals: %v", removed)
	}
}

func TestRejoinAfterLeaveRebuildsLinks(t *testing.T) {
	c := NewCoordinator(FullMesh{})
	c.PeerJoined("r1", "a", nil)
	c.PeerJoined("r1", "b", []string{"a"})
	c.PeerLeft("r1", "b")

	// A new connection gets a fresh ID; the new pair's initiator is
	// the rejoiner.
	c.PeerJoined("r1", "b2", []string{"a"})
	got, ok := c.Initiator("r1", "a", "b2")
	if !ok || got != "b2" {
		t.Errorf("expected initiator b2, got (%s, %v)", got, ok)
	}
}
