// Package session tracks logged-in players: their connection, avatar,
// current room, stats, and inventory.
package session

import (
	"sync"

	"github.com/tinyplaces/server/internal/item"
	"github.com/tinyplaces/server/internal/world"
)

// Stat indices used by the client.
const (
	StatLife = 0
	StatMana = 1

	StatCount = 8
)

// Stat is one player statistic with its allowed range.
type Stat struct {
	Min   int
	Max   int
	Value int
}

// Session is one logged-in player. Sessions are created on successful HELO
// and removed on GBYE or disconnect. All fields are owned by the command
// dispatcher goroutine after creation.
type Session struct {
	ConnID string
	Name   string

	// Avatar is the player's mob. Nil until the GAME command spawns it.
	Avatar *world.Mob

	// Room is the room the player currently occupies.
	Room *world.Room

	Stats     [StatCount]*Stat
	Inventory *item.Inventory
}

// Table is the session registry keyed by connection id.
type Table struct {
	mu     sync.Mutex
	byConn map[string]*Session
}

func NewTable() *Table {
	return &Table{byConn: map[string]*Session{}}
}

// Add registers a session, replacing any previous session for the same
// connection.
func (t *Table) Add(s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byConn[s.ConnID] = s
}

// Get returns the session for a connection id, or nil.
func (t *Table) Get(connID string) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byConn[connID]
}

// Remove drops a session. Returns the removed session, or nil when the
// connection had none.
func (t *Table) Remove(connID string) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.byConn[connID]
	if !ok {
		return nil
	}
	delete(t.byConn, connID)
	return s
}

// ForEach calls fn for every live session. The callback runs with the
// table locked and must not call back into the table.
func (t *Table) ForEach(fn func(s *Session)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.byConn {
		fn(s)
	}
}

// Len reports the number of live sessions.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byConn)
}
