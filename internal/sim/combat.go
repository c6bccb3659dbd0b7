package sim

import (
	"log/slog"
	"math/rand/v2"

	"github.com/tinyplaces/server/internal/catalog"
	"github.com/tinyplaces/server/internal/item"
	"github.com/tinyplaces/server/internal/proto"
	"github.com/tinyplaces/server/internal/world"
)

// Death animation types, interpreted by the client.
const (
	animCreatureDeath      = 1 // standard explosion
	animCreatureBlackDeath = 2 // black death swirl
)

// handleHit applies a projectile's spell damage to a creature and kills it
// on lethal damage.
func (e *Engine) handleHit(room *world.Room, projectile, target *world.Mob) {
	if projectile.Spell == nil || target.Creature == nil {
		return
	}

	dmg := rollDamage(projectile.Spell, target.Creature.Resistance, e.rng)
	target.Creature.Life -= dmg

	slog.Debug("projectile hit", "target", target.ID, "damage", dmg,
		"life", target.Creature.Life)

	if target.Creature.Life <= 0 {
		e.kill(room, target)
	}
}

// rollDamage rolls each damage type in the spell's range, scales it by the
// target's resistance, sums, and floor-divides once at the end. A fully
// resistant type contributes nothing; negative resistances amplify.
func rollDamage(spell *catalog.Spell, resistance catalog.DamageVector, rng *rand.Rand) int {
	total := 0
	for i := 0; i < catalog.DamageTypeCount; i++ {
		span := spell.Max[i] - spell.Min[i]
		roll := spell.Min[i]
		if span > 0 {
			roll += rng.IntN(span + 1)
		}
		total += roll * (100 - resistance[i])
	}
	return total / 100
}

// kill removes a dead creature, plays its death animation and rolls its
// loot.
func (e *Engine) kill(room *world.Room, target *world.Mob) {
	room.RemoveMob(world.LayerMain, target.ID)
	room.CancelMoves(target.ID)
	e.caster.Roomcast(room, proto.DeleteMob(target.ID, world.LayerMain))

	atype := animCreatureDeath
	zoff := 20
	if target.Tile == 17 {
		atype = animCreatureBlackDeath
		zoff = 0
	}
	e.caster.Roomcast(room, proto.Anim(atype, world.LayerMain, target.X, target.Y-zoff))

	e.rollLoot(room, target)
}

// rollLoot rolls every entry of the creature's treasure class
// independently and drops each success at a small random offset from the
// death position.
func (e *Engine) rollLoot(room *world.Room, target *world.Mob) {
	if target.Creature.TreasureClass == "" {
		return
	}
	tc, ok := e.catalogs.TreasureClass(target.Creature.TreasureClass)
	if !ok {
		return
	}

	for _, entry := range tc.Entries {
		if e.rng.Float64() >= entry.Chance {
			continue
		}
		base, ok := e.catalogs.BaseItem(entry.BaseItemID)
		if !ok {
			continue
		}

		x := target.X + e.rng.IntN(33) - 16
		y := target.Y + e.rng.IntN(33) - 16
		e.dropItem(room, base, x, y)
	}
}

// dropItem creates an item lying on the map, backed by a prop mob so it
// has a position and an id in the room.
func (e *Engine) dropItem(room *world.Room, base *catalog.BaseItem, x, y int) {
	it := e.items.Create(base, e.rng)
	it.Where = item.OnMap
	it.X = x
	it.Y = y

	mob := room.MakeMob(world.LayerMain, base.Tile, 1, 1, x, y, base.Scale, base.Color, world.TypeProp)
	mob.ItemID = it.ID
	it.MobID = mob.ID

	room.AddItem(it)
	e.game.DropItem(room, it)

	slog.Debug("loot dropped", "item", base.ID, "x", x, "y", y)
}
