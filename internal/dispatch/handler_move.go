package dispatch

import (
	"fmt"

	"github.com/tinyplaces/server/internal/proto"
	"github.com/tinyplaces/server/internal/session"
	"github.com/tinyplaces/server/internal/world"
)

// playerMoveSpeed is fixed for all player avatars.
const playerMoveSpeed = 120

// handleMove starts a move from MOVE,id,layer,x,y. The speed is
// server-authoritative; the movement pattern is cosmetic and depends on
// the avatar's tile.
func (d *Dispatcher) handleMove(s *session.Session, cmd proto.Command) error {
	if s.Room == nil {
		return fmt.Errorf("no current room")
	}

	id, err := cmd.IntField(0)
	if err != nil {
		return err
	}
	layer, err := cmd.IntField(1)
	if err != nil {
		return err
	}
	x, err := cmd.IntField(2)
	if err != nil {
		return err
	}
	y, err := cmd.IntField(3)
	if err != nil {
		return err
	}

	mob := s.Room.Mob(layer, id)
	if mob == nil {
		return fmt.Errorf("no mob with id %d on layer %d", id, layer)
	}

	pattern := "bounce"
	if mob.Type == world.TypePlayer && glideTile(mob.Tile) {
		// spectres glide
		pattern = "glide"
	}

	d.DoMove(s.ConnID, s.Room, mob, layer, x, y, playerMoveSpeed, pattern)
	return nil
}

func glideTile(tile int) bool {
	return tile == 9 || tile == 20 || tile == 39
}

// DoMove starts or restarts a move for a mob. Any in-flight move for the
// same mob is canceled first; the last command wins, moves never queue.
// The connID is empty for AI moves. Also used by the simulation engine.
func (d *Dispatcher) DoMove(connID string, room *world.Room, mob *world.Mob, layer, x, y, speed int, pattern string) {
	room.CancelMoves(mob.ID)
	room.AddAction(world.NewMove(connID, mob, layer, x, y, speed))
	d.caster.Roomcast(room, proto.Move(mob.ID, layer, x, y, speed, pattern))
}
