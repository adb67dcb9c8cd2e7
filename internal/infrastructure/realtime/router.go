package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Router is the session registry and room router in one: it tracks every
// attached connection, maps each logged-in username to the connection that
// currently owns its presence, and fans events out to room subscribers.
// A connection sits in at most one room at a time.
type Router struct {
	mu           sync.RWMutex
	sessions     map[string]*Connection            // sessionID -> connection
	userSessions map[string]string                 // username -> owning sessionID
	rooms        map[string]map[string]*Connection // roomID -> sessionID -> connection
	sessionRoom  map[string]string                 // sessionID -> current roomID
}

// NewRouter constructs an initialized Router.
func NewRouter() *Router {
	return &Router{
		sessions:     make(map[string]*Connection),
		userSessions: make(map[string]string),
		rooms:        make(map[string]map[string]*Connection),
		sessionRoom:  make(map[string]string),
	}
}

// Attach registers an anonymous connection and starts its write loop.
// Presence is tracked only after Bind.
func (r *Router) Attach(conn *Connection) {
	r.mu.Lock()
	r.sessions[conn.ID] = conn
	r.mu.Unlock()

	conn.Start()
}

// Bind records conn as the live handle for its username. A later login for
// the same username overwrites the binding; the superseded connection stays
// attached and keeps receiving room traffic until it disconnects.
func (r *Router) Bind(conn *Connection) {
	if conn.Username == "" {
		return
	}
	r.mu.Lock()
	if _, ok := r.sessions[conn.ID]; ok {
		r.userSessions[conn.Username] = conn.ID
	}
	r.mu.Unlock()
}

// Detach removes the connection from its room and, only when the presence
// entry still points at this connection, clears it. A stale disconnect from
// a superseded login never clobbers the newer session's presence.
func (r *Router) Detach(conn *Connection) {
	r.mu.Lock()
	r.detachLocked(conn)
	r.mu.Unlock()
}

// Join subscribes the connection to roomID, leaving its previous room first.
func (r *Router) Join(roomID string, conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[conn.ID]; !ok {
		return
	}

	r.leaveLocked(conn.ID)

	room := r.rooms[roomID]
	if room == nil {
		room = make(map[string]*Connection)
		r.rooms[roomID] = room
	}
	room[conn.ID] = conn
	r.sessionRoom[conn.ID] = roomID
}

// Leave unsubscribes the connection from its current room.
func (r *Router) Leave(conn *Connection) {
	r.mu.Lock()
	r.leaveLocked(conn.ID)
	r.mu.Unlock()
}

// Broadcast writes payload to every connection subscribed to roomID and
// returns how many deliveries were enqueued.
func (r *Router) Broadcast(roomID string, payload []byte) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, conn := range r.rooms[roomID] {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// BroadcastAll writes payload to every attached connection, logged in or not.
func (r *Router) BroadcastAll(payload []byte) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, conn := range r.sessions {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Online reports whether the username currently owns a live connection.
func (r *Router) Online(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.userSessions[username]
	return ok
}

// Close terminates all tracked connections and clears router state.
func (r *Router) Close() {
	r.mu.Lock()
	sessions := make([]*Connection, 0, len(r.sessions))
	for _, conn := range r.sessions {
		sessions = append(sessions, conn)
	}
	r.sessions = make(map[string]*Connection)
	r.userSessions = make(map[string]string)
	r.rooms = make(map[string]map[string]*Connection)
	r.sessionRoom = make(map[string]string)
	r.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(websocket.CloseGoingAway, "router shutdown")
	}
}

func (r *Router) detachLocked(conn *Connection) {
	if _, ok := r.sessions[conn.ID]; !ok {
		return
	}
	delete(r.sessions, conn.ID)

	if conn.Username != "" {
		if owner, ok := r.userSessions[conn.Username]; ok && owner == conn.ID {
			delete(r.userSessions, conn.Username)
		}
	}

	r.leaveLocked(conn.ID)
}

func (r *Router) leaveLocked(sessionID string) {
	roomID, ok := r.sessionRoom[sessionID]
	if !ok {
		return
	}
	delete(r.sessionRoom, sessionID)

	room := r.rooms[roomID]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
}
