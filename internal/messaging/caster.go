package messaging

import (
	"log/slog"

	"github.com/tinyplaces/server/internal/session"
	"github.com/tinyplaces/server/internal/world"
)

// ConnSubject returns the NATS subject carrying outbound wire data for one
// connection.
func ConnSubject(connID string) string {
	return "conn." + connID
}

// Caster fans outbound protocol lines out to connections via their NATS
// subjects. Delivery is best effort; a failed publish is logged and never
// propagated to the caller, so one broken connection cannot stall the
// command dispatcher.
type Caster struct {
	server   *NatsServer
	sessions *session.Table
}

func NewCaster(server *NatsServer, sessions *session.Table) *Caster {
	return &Caster{server: server, sessions: sessions}
}

// Singlecast sends data to one connection.
func (c *Caster) Singlecast(connID string, data []byte) {
	if err := c.server.Publish(ConnSubject(connID), data); err != nil {
		slog.Warn("publishing to connection", "conn", connID, "err", err)
	}
}

// Roomcast sends data to every session currently in the given room.
func (c *Caster) Roomcast(room *world.Room, data []byte) {
	c.RoomcastExcept(room, "", data)
}

// RoomcastExcept sends data to every session in the room except the named
// connection.
func (c *Caster) RoomcastExcept(room *world.Room, exclude string, data []byte) {
	c.sessions.ForEach(func(s *session.Session) {
		if s.Room != room || s.ConnID == exclude {
			return
		}
		if err := c.server.Publish(ConnSubject(s.ConnID), data); err != nil {
			slog.Warn("publishing to connection", "conn", s.ConnID, "err", err)
		}
	})
}

// Broadcast sends data to every logged-in session on the server.
func (c *Caster) Broadcast(data []byte) {
	c.sessions.ForEach(func(s *session.Session) {
		if err := c.server.Publish(ConnSubject(s.ConnID), data); err != nil {
			slog.Warn("publishing to connection", "conn", s.ConnID, "err", err)
		}
	})
}
