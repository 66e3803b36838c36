package ws

import "sync"

// member is one connection's seat in a room.
type member struct {
	client       *Client
	role         string
	audioEnabled bool
	videoEnabled bool
}

// roster is the live membership of one room, keyed by connection id.
// Locks are scoped to this room only, broadcasts work on a snapshot so no
// lock is held while events are handed to write pumps.
type roster struct {
	mu      sync.RWMutex
	members map[string]*member
}

func newRoster() *roster {
	return &roster{members: make(map[string]*member)}
}

// addIfBelow inserts the member unless the roster is at capacity.
// Checking and inserting under one lock keeps racing joins from
// overfilling a full room.
func (r *roster) addIfBelow(connID string, m *member, max int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if max > 0 && len(r.members) >= max {
		return false
	}
	r.members[connID] = m
	return true
}

func (r *roster) remove(connID string) *member {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.members[connID]
	delete(r.members, connID)
	return m
}

func (r *roster) get(connID string) *member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.members[connID]
}

func (r *roster) has(connID string) bool {
	return r.get(connID) != nil
}

func (r *roster) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// snapshot returns the membership at call time. Joins or leaves racing
// with a broadcast may miss it, which is accepted.
func (r *roster) snapshot() []*member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	return out
}

func (r *roster) setMedia(connID string, audio, video bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[connID]
	if !ok {
		return false
	}
	m.audioEnabled = audio
	m.videoEnabled = video
	return true
}

// registry maps room ids to rosters with lazy creation, the same shape as
// a hub holding per-room sub-hubs.
type registry struct {
	mu    sync.RWMutex
	rooms map[uint]*roster
}

func newRegistry() *registry {
	return &registry{rooms: make(map[uint]*roster)}
}

func (g *registry) room(roomID uint) *roster {
	g.mu.RLock()
	r := g.rooms[roomID]
	g.mu.RUnlock()
	if r != nil {
		return r
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if r = g.rooms[roomID]; r != nil {
		return r
	}
	r = newRoster()
	g.rooms[roomID] = r
	return r
}

// admit seats the member in the room's roster, creating it if needed.
// dropIfEmpty can delete a roster between room() and the insert, which
// would strand the member in an unregistered roster, so the insert only
// stands once the roster is confirmed still registered. dropIfEmpty holds
// the registry lock across its count check, so a confirmed roster cannot
// be deleted out from under an inserted member.
func (g *registry) admit(roomID uint, connID string, m *member, max int) (*roster, bool) {
	for {
		r := g.room(roomID)
		if !r.addIfBelow(connID, m, max) {
			return nil, false
		}
		if g.lookup(roomID) == r {
			return r, true
		}
		r.remove(connID)
	}
}

// lookup never creates, so stale senders cannot resurrect a room.
func (g *registry) lookup(roomID uint) *roster {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rooms[roomID]
}

func (g *registry) online(roomID uint) int {
	r := g.lookup(roomID)
	if r == nil {
		return 0
	}
	return r.count()
}

func (g *registry) dropIfEmpty(roomID uint) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r := g.rooms[roomID]; r != nil && r.count() == 0 {
		delete(g.rooms, roomID)
	}
}
