package world

import (
	"time"

	"github.com/tinyplaces/server/internal/catalog"
)

// MobType discriminates the kinds of placeable map objects.
type MobType int

const (
	TypeProp MobType = iota
	TypeCreature
	TypePlayer
	TypeProjectile
)

// Mob is any placeable map object: decorative prop, creature, player avatar,
// or projectile. Identity is the id within the owning room; mobs are never
// referenced across rooms.
type Mob struct {
	ID     int
	Tile   int
	Frames int
	Phases int
	X      int
	Y      int
	Scale  float64
	Color  string
	Type   MobType

	// Movement properties used by AI-driven mobs.
	Pattern string
	Speed   int
	NextAI  time.Time

	// Creature is set for TypeCreature mobs and carries the rolled stats.
	Creature *catalog.CreatureInstance

	// Spell is set on projectiles once the cast completes, so the hit can
	// be resolved with the firing spell's damage.
	Spell *catalog.Spell

	// ItemID links a map mob to the dropped item it represents.
	ItemID int
}
