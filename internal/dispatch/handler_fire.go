package dispatch

import (
	"fmt"

	"github.com/tinyplaces/server/internal/catalog"
	"github.com/tinyplaces/server/internal/proto"
	"github.com/tinyplaces/server/internal/session"
	"github.com/tinyplaces/server/internal/world"
)

// Projectiles share one tile; the client picks the visual from the spell
// type announced in the FIRE line.
const (
	projectileTile   = 1
	projectileFrames = 16
	projectilePhases = 1
)

// handleFire casts a spell at a map position from FIRE,layer,ptype,x,y.
func (d *Dispatcher) handleFire(s *session.Session, cmd proto.Command) error {
	if s.Room == nil || s.Avatar == nil {
		return fmt.Errorf("no avatar in a room")
	}

	layer, err := cmd.IntField(0)
	if err != nil {
		return err
	}
	ptype, err := cmd.Field(1)
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

	spell, ok := d.catalogs.Spell(ptype)
	if !ok {
		return fmt.Errorf("unknown spell: %s", ptype)
	}

	d.FireProjectile(s.Room, s.Avatar, layer, spell, x, y)
	return nil
}

// FireProjectile spawns a projectile mob at the shooter and schedules the
// cast. The projectile starts flying once the spell's cast time has
// elapsed. Also used by the creature AI.
func (d *Dispatcher) FireProjectile(room *world.Room, shooter *world.Mob, layer int, spell *catalog.Spell, x, y int) {
	projectile := room.MakeMob(layer, projectileTile, projectileFrames, projectilePhases,
		shooter.X, shooter.Y, 1.0, "1 1 1 1", world.TypeProjectile)

	room.AddAction(world.NewSpellCast(shooter, spell, projectile, layer, x, y))

	d.caster.Roomcast(room, proto.Fire(shooter.ID, projectile.ID, layer,
		spell.PType, spell.CastTime, x, y, spell.Speed))
}
