package relay

import (
	"sync"

	"github.com/rs/zerolog"
)

// connState tracks one admitted connection: its transport handle, the
// identity it authenticated as, and the rooms it currently subscribes to.
type connState struct {
	conn     Conn
	identity string
	rooms    map[string]struct{}
}

// State is the in-process connection, identity, and room-membership registry.
// All mutation is synchronous and atomic relative to other handlers; the only
// suspension points in the engine are store calls, which happen outside this
// lock. Constructed once at process start and injected everywhere, so tests
// run against isolated instances.
//
// In a multi-process deployment, broadcasts must additionally fan out through
// a shared pub/sub backbone; this registry only covers connections owned by
// the local process.
type State struct {
	mu         sync.RWMutex
	conns      map[string]*connState            // conn ID -> state
	identities map[string]map[string]*connState // identity -> conn ID -> state
	rooms      map[string]map[string]*connState // room ID -> conn ID -> state
	log        zerolog.Logger
}

// NewState creates an empty registry.
func NewState(log zerolog.Logger) *State {
	return &State{
		conns:      make(map[string]*connState),
		identities: make(map[string]map[string]*connState),
		rooms:      make(map[string]map[string]*connState),
		log:        log.With().Str("component", "relay-state").Logger(),
	}
}

// Admit registers a connection under its identity and auto-subscribes it to
// the identity's private channel. Returns true when this is the identity's
// first live connection.
func (s *State) Admit(conn Conn, identity string) (bool, error) {
	if identity == "" {
		return false, ErrMissingIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conns[conn.ID()]; exists {
		return false, ErrConnectionExists
	}

	cs := &connState{
		conn:     conn,
		identity: identity,
		rooms:    make(map[string]struct{}),
	}
	s.conns[conn.ID()] = cs

	peers, ok := s.identities[identity]
	if !ok {
		peers = make(map[string]*connState)
		s.identities[identity] = peers
	}
	first := len(peers) == 0
	peers[conn.ID()] = cs

	return first, nil
}

// Release removes a connection from the registry and from every room it had
// joined, so no dangling subscriptions survive a disconnect. Returns the
// connection's identity and whether it was the identity's last connection.
func (s *State) Release(conn Conn) (identity string, last bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.conns[conn.ID()]
	if !ok {
		return "", false, ErrUnknownConnection
	}

	for room := range cs.rooms {
		s.removeFromRoom(cs, room)
	}
	delete(s.conns, conn.ID())

	peers := s.identities[cs.identity]
	delete(peers, conn.ID())
	if len(peers) == 0 {
		delete(s.identities, cs.identity)
		last = true
	}

	return cs.identity, last, nil
}

// Join subscribes a connection to a room. Idempotent: joining twice leaves a
// single membership entry.
func (s *State) Join(conn Conn, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.conns[conn.ID()]
	if !ok {
		return ErrUnknownConnection
	}

	cs.rooms[roomID] = struct{}{}
	members, ok := s.rooms[roomID]
	if !ok {
		members = make(map[string]*connState)
		s.rooms[roomID] = members
	}
	members[conn.ID()] = cs
	return nil
}

// Leave unsubscribes a connection from a room. Idempotent.
func (s *State) Leave(conn Conn, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.conns[conn.ID()]
	if !ok {
		return ErrUnknownConnection
	}

	delete(cs.rooms, roomID)
	s.removeFromRoom(cs, roomID)
	return nil
}

// removeFromRoom deletes the membership entry and drops the room map once
// empty. Caller holds the write lock.
func (s *State) removeFromRoom(cs *connState, roomID string) {
	members, ok := s.rooms[roomID]
	if !ok {
		return
	}
	delete(members, cs.conn.ID())
	if len(members) == 0 {
		delete(s.rooms, roomID)
	}
}

// Member is a snapshot entry of a room or identity-channel subscription.
type Member struct {
	Conn     Conn
	Identity string
}

// RoomMembers returns a snapshot of the connections currently subscribed to a
// room. Safe to iterate without holding the registry lock.
func (s *State) RoomMembers(roomID string) []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := s.rooms[roomID]
	out := make([]Member, 0, len(members))
	for _, cs := range members {
		out = append(out, Member{Conn: cs.conn, Identity: cs.identity})
	}
	return out
}

// IdentityConns returns a snapshot of every live connection authenticated as
// the given identity (the identity's private channel).
func (s *State) IdentityConns(identity string) []Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	peers := s.identities[identity]
	out := make([]Conn, 0, len(peers))
	for _, cs := range peers {
		out = append(out, cs.conn)
	}
	return out
}

// Identity reports the identity a connection authenticated as.
func (s *State) Identity(conn Conn) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs, ok := s.conns[conn.ID()]
	if !ok {
		return "", false
	}
	return cs.identity, true
}
