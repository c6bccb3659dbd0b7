package world

import (
	"time"

	"github.com/tinyplaces/server/internal/catalog"
)

// SpellCast waits out a spell's cast time, then materializes the projectile
// at the caster's position and launches its Move. One-shot.
type SpellCast struct {
	caster     *Mob
	spell      *catalog.Spell
	projectile *Mob
	layer      int
	targetX    int
	targetY    int

	age  time.Duration
	done bool
}

func NewSpellCast(caster *Mob, spell *catalog.Spell, projectile *Mob, layer, targetX, targetY int) *SpellCast {
	return &SpellCast{
		caster:     caster,
		spell:      spell,
		projectile: projectile,
		layer:      layer,
		targetX:    targetX,
		targetY:    targetY,
	}
}

func (s *SpellCast) Mob() *Mob {
	return s.caster
}

func (s *SpellCast) Done() bool {
	return s.done
}

func (s *SpellCast) Process(room *Room, dt time.Duration) {
	s.age += dt

	if !s.done && s.age > time.Duration(s.spell.CastTime)*time.Millisecond {
		s.projectile.X = s.caster.X
		s.projectile.Y = s.caster.Y
		s.projectile.Spell = s.spell

		room.AddAction(NewMove("", s.projectile, s.layer, s.targetX, s.targetY, s.spell.Speed))
		s.done = true
	}
}
