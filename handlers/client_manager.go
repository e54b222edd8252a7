package handlers

import (
	"sync"

	"bananarealm/logging"
	"bananarealm/messages"
)

// MaxSessions is the cap on concurrently authenticated sessions.
const MaxSessions = 4

// Session is the outbound half of a client connection, as the manager
// needs it.
type Session interface {
	Send(pkt messages.Packet) error
	Close()
}

type sessionEntry struct {
	conn     Session
	username string
}

// ClientManager is the session roster. Sessions register under a generated
// id on connect and bind a username once their login is accepted. The
// manager is the engine's Notifier: all packet fan-out happens here.
type ClientManager struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewClientManager() *ClientManager {
	return &ClientManager{sessions: make(map[string]*sessionEntry)}
}

// Add registers a connected, not yet authenticated session.
func (m *ClientManager) Add(id string, conn Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &sessionEntry{conn: conn}
	logging.L.Debugw("session added", "id", id, "sessions", len(m.sessions))
}

// TryBind reserves an authenticated slot for a session under one lock: the
// bind fails when the cap is reached or another session already holds the
// username. Callers that reserve a slot and then fail their login must
// Unbind to release it.
func (m *ClientManager) TryBind(id, username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok || e.username != "" {
		return false
	}
	n := 0
	for _, other := range m.sessions {
		if other.username == username {
			return false
		}
		if other.username != "" {
			n++
		}
	}
	if n >= MaxSessions {
		return false
	}
	e.username = username
	return true
}

// Unbind releases a session's authenticated slot.
func (m *ClientManager) Unbind(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.username = ""
	}
}

// Remove drops a session from the roster.
func (m *ClientManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	logging.L.Debugw("session removed", "id", id, "sessions", len(m.sessions))
}

// AuthenticatedCount reports how many sessions hold a bound username.
func (m *ClientManager) AuthenticatedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.sessions {
		if e.username != "" {
			n++
		}
	}
	return n
}

// BroadcastAll delivers a packet to every connected session, authenticated
// or not.
func (m *ClientManager) BroadcastAll(pkt messages.Packet) {
	for _, conn := range m.snapshot(func(e *sessionEntry) bool { return true }) {
		_ = conn.Send(pkt)
	}
}

// ToPlayer delivers a packet to the session bound to username, if any.
func (m *ClientManager) ToPlayer(username string, pkt messages.Packet) {
	for _, conn := range m.snapshot(func(e *sessionEntry) bool { return e.username == username }) {
		_ = conn.Send(pkt)
	}
}

// AllExceptPlayer delivers a packet to every session except the one bound
// to username.
func (m *ClientManager) AllExceptPlayer(username string, pkt messages.Packet) {
	for _, conn := range m.snapshot(func(e *sessionEntry) bool { return e.username != username }) {
		_ = conn.Send(pkt)
	}
}

// snapshot copies the matching sessions out under the read lock so sends
// happen without holding it.
func (m *ClientManager) snapshot(match func(*sessionEntry) bool) []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conns := make([]Session, 0, len(m.sessions))
	for _, e := range m.sessions {
		if match(e) {
			conns = append(conns, e.conn)
		}
	}
	return conns
}
