package dispatch

import (
	"fmt"
	"log/slog"

	"github.com/tinyplaces/server/internal/proto"
	"github.com/tinyplaces/server/internal/session"
	"github.com/tinyplaces/server/internal/world"
)

// Transit moves an avatar through a transition into another room. The
// avatar leaves its source room, the destination is loaded and populated
// on first use, and the avatar gets a fresh object id there since ids are
// only unique per room. The moving player gets the room replay plus an
// ADDP for its own mob; the destination's occupants get an ADDM. Called by
// the simulation engine when a player move ends on a trigger point.
func (d *Dispatcher) Transit(s *session.Session, toMap string, x, y int) error {
	if s.Avatar == nil || s.Room == nil {
		return fmt.Errorf("no avatar in a room")
	}
	mob := s.Avatar
	from := s.Room

	from.RemoveMob(world.LayerMain, mob.ID)
	from.CancelMoves(mob.ID)
	d.caster.RoomcastExcept(from, s.ConnID, proto.DeleteMob(mob.ID, world.LayerMain))

	room, err := d.ensureRoom(toMap, true)
	if err != nil {
		// The avatar is already gone from the source room. Putting it
		// back is the only way to keep the session consistent.
		from.AddMob(world.LayerMain, mob)
		return fmt.Errorf("loading destination %s: %w", toMap, err)
	}

	s.Room = room
	d.caster.Singlecast(s.ConnID, proto.Load(room.Name, room.Backdrop, toMap))
	d.serveRoom(s.ConnID, room)

	mob.ID = room.NextObjectID()
	mob.X = x
	mob.Y = y
	room.AddMob(world.LayerMain, mob)

	d.caster.Singlecast(s.ConnID, proto.AddPlayer(mob.ID, s.Name, world.LayerMain,
		mob.Tile, mob.Frames, mob.Phases, mob.X, mob.Y, mob.Scale, mob.Color))
	d.caster.RoomcastExcept(room, s.ConnID, proto.AddMob(mob.ID, s.Name, world.LayerMain,
		mob.Tile, mob.Frames, mob.Phases, mob.X, mob.Y, mob.Scale, mob.Color, int(mob.Type)))

	slog.Info("player transited", "name", s.Name, "from", from.MapID, "to", toMap)
	return nil
}
