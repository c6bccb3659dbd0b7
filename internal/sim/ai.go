package sim

import (
	"time"

	"github.com/tinyplaces/server/internal/world"
)

// Creature AI tuning. Each creature acts when its deadline elapses: it
// fires at a player with fixed probability, then random-walks with a bias
// back toward its group's center.
const (
	aiFireChance = 0.75

	// Walk targets are rejected and resampled while the elliptic distance
	// from the group center exceeds this bound, up to aiWalkRetries tries.
	aiWalkRangeSq  = 100 * 100
	aiWalkRetries  = 5
	aiWalkSpread   = 200
	aiClampSpread  = 100
	aiMovePattern  = "glide"
	aiRescheduleMs = 3000
	aiJitterMs     = 2000
)

// runAI acts every creature whose deadline has elapsed and reschedules it
// with jitter.
func (e *Engine) runAI(room *world.Room, now time.Time) {
	for _, group := range room.Groups() {
		for _, creature := range group.Creatures {
			if creature.NextAI.After(now) {
				continue
			}

			if e.rng.Float64() < aiFireChance {
				e.aiFire(room, creature)
			}
			e.aiWalk(room, group, creature)

			creature.NextAI = now.Add(time.Duration(aiRescheduleMs+e.rng.IntN(aiJitterMs)) * time.Millisecond)
		}
	}
}

// aiFire shoots the creature's spell at a player in the room, if both
// exist.
func (e *Engine) aiFire(room *world.Room, creature *world.Mob) {
	if creature.Creature == nil || creature.Creature.SpellID == "" {
		return
	}
	player := room.FirstPlayer()
	if player == nil {
		return
	}
	spell, ok := e.catalogs.Spell(creature.Creature.SpellID)
	if !ok {
		return
	}
	e.game.FireProjectile(room, creature, world.LayerMain, spell, player.X, player.Y)
}

// aiWalk picks a random walk target near the creature, rejecting targets
// that stray too far from the group center. The y term weighs double to
// keep the group flat on the isometric map. Once the retries run out the
// target is clamped to a center-relative offset instead.
func (e *Engine) aiWalk(room *world.Room, group *world.CreatureGroup, creature *world.Mob) {
	var x, y int
	for try := 0; ; try++ {
		if try >= aiWalkRetries {
			x = group.CX + aiClampSpread/2 - e.rng.IntN(aiClampSpread)
			y = group.CY + aiClampSpread/2 - e.rng.IntN(aiClampSpread)
			break
		}

		x = creature.X + aiWalkSpread/2 - e.rng.IntN(aiWalkSpread)
		y = creature.Y + aiWalkSpread/2 - e.rng.IntN(aiWalkSpread)

		dx := x - group.CX
		dy := y - group.CY
		if dx*dx+4*dy*dy <= aiWalkRangeSq {
			break
		}
	}

	e.game.DoMove("", room, creature, world.LayerMain, x, y, creature.Speed, aiMovePattern)
}
