package dispatch

import (
	"fmt"

	"github.com/tinyplaces/server/internal/proto"
	"github.com/tinyplaces/server/internal/session"
	"github.com/tinyplaces/server/internal/world"
)

// handleAddMob places a static prop from ADDM,layer,tile,x,y,scale,color
// and announces it to the room in the full server-side form. Used by the
// map editor client.
func (d *Dispatcher) handleAddMob(s *session.Session, cmd proto.Command) error {
	if s.Room == nil {
		return fmt.Errorf("no current room")
	}

	layer, err := cmd.IntField(0)
	if err != nil {
		return err
	}
	tile, err := cmd.IntField(1)
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
	scale, err := cmd.FloatField(4)
	if err != nil {
		return err
	}
	color, err := cmd.Field(5)
	if err != nil {
		return err
	}

	mob := s.Room.MakeMob(layer, tile, 1, 2, x, y, scale, color, world.TypeProp)
	d.caster.Roomcast(s.Room, proto.AddMob(mob.ID, "n", layer, mob.Tile, mob.Frames,
		mob.Phases, mob.X, mob.Y, mob.Scale, mob.Color, int(mob.Type)))
	return nil
}

// handleUpdateMob rewrites a mob's display fields from
// UPDM,id,layer,tile,x,y,scale,color and echoes the change to the room.
func (d *Dispatcher) handleUpdateMob(s *session.Session, cmd proto.Command) error {
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
	tile, err := cmd.IntField(2)
	if err != nil {
		return err
	}
	x, err := cmd.IntField(3)
	if err != nil {
		return err
	}
	y, err := cmd.IntField(4)
	if err != nil {
		return err
	}
	scale, err := cmd.FloatField(5)
	if err != nil {
		return err
	}
	color, err := cmd.Field(6)
	if err != nil {
		return err
	}

	mob := s.Room.Mob(layer, id)
	if mob == nil {
		return fmt.Errorf("no mob with id %d on layer %d", id, layer)
	}

	mob.Tile = tile
	mob.X = x
	mob.Y = y
	mob.Scale = scale
	mob.Color = color

	d.caster.Roomcast(s.Room, proto.UpdateMob(id, layer, tile, x, y, scale, color))
	return nil
}

// updateMob is the server-initiated variant, used by the color chat
// command. Always layer 3.
func (d *Dispatcher) updateMob(s *session.Session, mob *world.Mob, color string) {
	mob.Color = color
	d.caster.Roomcast(s.Room, proto.UpdateMob(mob.ID, world.LayerMain,
		mob.Tile, mob.X, mob.Y, mob.Scale, mob.Color))
}

// handleDeleteMob removes a mob from DELM,id,layer and tells the room.
func (d *Dispatcher) handleDeleteMob(s *session.Session, cmd proto.Command) error {
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

	s.Room.RemoveMob(layer, id)
	s.Room.CancelMoves(id)
	d.caster.Roomcast(s.Room, proto.DeleteMob(id, layer))
	return nil
}

// handleLoadMap switches the session to the map named in LOAD,name,
// loading the room on first use, and replays the room's contents to the
// client. Loading does not populate; creature population belongs to the
// game flow, not the editor.
func (d *Dispatcher) handleLoadMap(s *session.Session, cmd proto.Command) error {
	mapID, err := cmd.Field(0)
	if err != nil {
		return err
	}

	room, err := d.ensureRoom(mapID, false)
	if err != nil {
		return fmt.Errorf("loading map %s: %w", mapID, err)
	}

	s.Room = room
	d.caster.Singlecast(s.ConnID, proto.Load(room.Name, room.Backdrop, mapID))
	d.serveRoom(s.ConnID, room)
	return nil
}

// serveRoom replays every object in the room to one client, layer by
// layer. New joiners need this to see the world as it already is.
func (d *Dispatcher) serveRoom(connID string, room *world.Room) {
	for _, layer := range []int{world.LayerPatches, world.LayerMain, world.LayerClouds} {
		for _, mob := range room.MobsOnLayer(layer) {
			d.caster.Singlecast(connID, proto.AddMob(mob.ID, "n", layer, mob.Tile,
				mob.Frames, mob.Phases, mob.X, mob.Y, mob.Scale, mob.Color, int(mob.Type)))
		}
	}
}

// handleSaveMap writes the current room's static objects to the map file
// named in SAVE,name.
func (d *Dispatcher) handleSaveMap(s *session.Session, cmd proto.Command) error {
	if s.Room == nil {
		return fmt.Errorf("no current room")
	}

	mapID, err := cmd.Field(0)
	if err != nil {
		return err
	}
	return d.rooms.Save(s.Room, mapID)
}
