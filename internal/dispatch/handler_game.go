package dispatch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tinyplaces/server/internal/item"
	"github.com/tinyplaces/server/internal/proto"
	"github.com/tinyplaces/server/internal/session"
	"github.com/tinyplaces/server/internal/world"
)

// Avatar spawn parameters. The client renders tile 39 as the player
// spectre.
const (
	avatarTile   = 39
	avatarFrames = 16
	avatarPhases = 1
	avatarSpawnX = 600
	avatarSpawnY = 400
	avatarScale  = 0.5
	avatarColor  = "1.0 1.0 1.0 1.0"
)

// handleStartGame spawns the player's avatar. The sender gets an ADDP for
// its own mob, everyone else in the room an ADDM, and then the starting
// equipment is handed out.
func (d *Dispatcher) handleStartGame(s *session.Session, cmd proto.Command) error {
	if s.Room == nil {
		room, err := d.ensureRoom(d.startRoom, true)
		if err != nil {
			return fmt.Errorf("entering start room: %w", err)
		}
		s.Room = room
	}
	room := s.Room

	mob := room.MakeMob(world.LayerMain, avatarTile, avatarFrames, avatarPhases,
		avatarSpawnX, avatarSpawnY, avatarScale, avatarColor, world.TypePlayer)
	s.Avatar = mob

	d.caster.Singlecast(s.ConnID, proto.AddPlayer(mob.ID, s.Name, world.LayerMain,
		mob.Tile, mob.Frames, mob.Phases, mob.X, mob.Y, mob.Scale, mob.Color))
	d.caster.RoomcastExcept(room, s.ConnID, proto.AddMob(mob.ID, s.Name, world.LayerMain,
		mob.Tile, mob.Frames, mob.Phases, mob.X, mob.Y, mob.Scale, mob.Color, int(mob.Type)))

	d.equipPlayer(s)

	slog.Info("game started", "conn", s.ConnID, "name", s.Name, "mob", mob.ID)
	return nil
}

// equipPlayer hands out the starting items: a small blaster in the first
// weapon slot plus a spare blaster and two spell cores in the inventory.
func (d *Dispatcher) equipPlayer(s *session.Session) {
	d.giveItem(s, "small_blaster", item.SlotFirst+1)
	d.giveItem(s, "blaster", item.InInventory)
	d.giveItem(s, "firebolt_core", item.InInventory)
	d.giveItem(s, "frostbolt_core", item.InInventory)
}

func (d *Dispatcher) giveItem(s *session.Session, baseID string, where int) {
	base, ok := d.catalogs.BaseItem(baseID)
	if !ok {
		return
	}

	it := d.items.Create(base, d.rng)
	it.Where = where

	if where == item.InInventory {
		x, y, ok := s.Inventory.FindFreePosition(it)
		if !ok {
			slog.Warn("no space for starting item", "name", s.Name, "item", baseID)
			return
		}
		it.X = x
		it.Y = y
	}

	d.AddItem(s, it)
}

// ensureRoom returns the live room for mapID, loading it on first use.
// Newly created rooms are populated from the catalog when populate is set;
// the spawned creatures need no announcement because a fresh room has no
// occupants yet.
func (d *Dispatcher) ensureRoom(mapID string, populate bool) (*world.Room, error) {
	room, created, err := d.rooms.GetOrLoad(mapID)
	if err != nil {
		return nil, err
	}
	if created && populate {
		spawned := room.Populate(d.catalogs, d.rng, time.Now())
		if len(spawned) > 0 {
			slog.Info("room populated", "map", mapID, "creatures", len(spawned))
		}
	}
	return room, nil
}
