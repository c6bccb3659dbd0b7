package dispatch

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tinyplaces/server/internal/item"
	"github.com/tinyplaces/server/internal/proto"
	"github.com/tinyplaces/server/internal/session"
	"github.com/tinyplaces/server/internal/world"
)

// handleUpdateItem moves an item within the player's inventory from
// UPDI,id,where,x,y. The client is the authority on its own inventory
// layout; the server only validates that the spot is free.
func (d *Dispatcher) handleUpdateItem(s *session.Session, cmd proto.Command) error {
	id, err := cmd.IntField(0)
	if err != nil {
		return err
	}
	where, err := cmd.IntField(1)
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

	if s.Inventory.UpdatePlacement(id, where, x, y) != nil {
		return fmt.Errorf("placement %d,%d,%d for item %d is blocked", where, x, y, id)
	}
	return nil
}

// AddItem gives an item to a session, or announces a map drop. Returns the
// obstructing item when an inventory placement is blocked, nil otherwise.
func (d *Dispatcher) AddItem(s *session.Session, it *item.Item) *item.Item {
	if it.Where != item.OnMap {
		if obstruction := s.Inventory.Add(it); obstruction != nil {
			slog.Warn("item placement blocked",
				"name", s.Name, "item", it.DisplayName, "by", obstruction.DisplayName)
			return obstruction
		}
	}

	owner := "-"
	if s.Avatar != nil {
		owner = strconv.Itoa(s.Avatar.ID)
	}
	msg := addItemMessage(owner, it)

	if it.Where == item.OnMap {
		d.caster.Roomcast(s.Room, msg)
	} else {
		d.caster.Singlecast(s.ConnID, msg)
	}
	return nil
}

// DropItem announces an unowned item lying on the map.
func (d *Dispatcher) DropItem(room *world.Room, it *item.Item) {
	d.caster.Roomcast(room, addItemMessage("-", it))
}

func addItemMessage(owner string, it *item.Item) []byte {
	return proto.AddItem(owner, it.Base.ID, it.ID, it.MobID,
		it.DisplayName, it.Base.Class, it.Base.Type, it.Base.BaseValue,
		it.Base.Tile, it.Base.Color, it.Base.Scale, it.Base.Shadow,
		it.Base.ShadowScale, it.Where, it.X, it.Y,
		it.EnergyDamage, it.PhysicalDamage, it.Base.Description)
}

// PickupItem moves a map drop into a player's inventory. If there is no
// free space the item stays where it is. Called by the simulation engine
// when a player move ends near a drop.
func (d *Dispatcher) PickupItem(s *session.Session, room *world.Room, it *item.Item) {
	x, y, ok := s.Inventory.FindFreePosition(it)
	if !ok {
		return
	}

	if room.RemoveItem(it.ID) == nil {
		return
	}
	room.RemoveMob(world.LayerMain, it.MobID)
	d.caster.Roomcast(room, proto.DeleteMob(it.MobID, world.LayerMain))

	it.Where = item.InInventory
	it.X = x
	it.Y = y
	it.MobID = 0
	d.AddItem(s, it)

	slog.Info("item picked up", "name", s.Name, "item", it.DisplayName)
}

// ApplyPowerup consumes a powerup drop: the stat named by the item's type
// is restored by its base value, capped at the stat's maximum, and the
// client gets the one changed stat.
func (d *Dispatcher) ApplyPowerup(s *session.Session, room *world.Room, it *item.Item) {
	if room.RemoveItem(it.ID) == nil {
		return
	}
	room.RemoveMob(world.LayerMain, it.MobID)
	d.caster.Roomcast(room, proto.DeleteMob(it.MobID, world.LayerMain))

	idx := powerupStat(it.Base.Type)
	stat := s.Stats[idx]
	if stat == nil {
		return
	}

	stat.Value += it.Base.BaseValue
	if stat.Value > stat.Max {
		stat.Value = stat.Max
	}

	d.caster.Singlecast(s.ConnID, proto.Stat(proto.StatEntry{
		Index: idx, Min: stat.Min, Max: stat.Max, Value: stat.Value,
	}))

	slog.Info("powerup applied", "name", s.Name, "item", it.DisplayName, "stat", idx)
}

func powerupStat(itemType string) int {
	if itemType == "mana" {
		return session.StatMana
	}
	return session.StatLife
}
