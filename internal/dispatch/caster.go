package dispatch

import "github.com/tinyplaces/server/internal/world"

// Caster delivers outbound wire lines. Implementations must be safe to
// call from the dispatcher and the simulation engine concurrently, and
// must never block on a slow client.
type Caster interface {
	// Singlecast sends to one connection.
	Singlecast(connID string, data []byte)

	// Roomcast sends to every session currently in the room.
	Roomcast(room *world.Room, data []byte)

	// RoomcastExcept sends to every session in the room except one
	// connection.
	RoomcastExcept(room *world.Room, exclude string, data []byte)

	// Broadcast sends to every logged-in session.
	Broadcast(data []byte)
}
