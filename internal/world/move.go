package world

import (
	"math"
	"time"
)

// Move interpolates a mob from its current position toward a target at a
// fixed speed in map units per second.
type Move struct {
	// ConnID identifies the connection that requested the move. Empty for
	// AI and projectile moves.
	ConnID string

	Layer   int
	TargetX int
	TargetY int
	Speed   int

	mob  *Mob
	fx   float64
	fy   float64
	done bool
}

// NewMove snapshots the mob's current position as the interpolation origin.
func NewMove(connID string, mob *Mob, layer, x, y, speed int) *Move {
	return &Move{
		ConnID:  connID,
		Layer:   layer,
		TargetX: x,
		TargetY: y,
		Speed:   speed,
		mob:     mob,
		fx:      float64(mob.X),
		fy:      float64(mob.Y),
	}
}

func (m *Move) Mob() *Mob {
	return m.mob
}

func (m *Move) Done() bool {
	return m.done
}

func (m *Move) Process(room *Room, dt time.Duration) {
	dx := float64(m.TargetX) - m.fx
	dy := float64(m.TargetY) - m.fy
	dist := math.Sqrt(dx*dx + dy*dy)

	step := dt.Seconds() * float64(m.Speed)

	if dist > step {
		m.fx += dx / dist * step
		m.fy += dy / dist * step
		m.mob.X = int(m.fx + 0.5)
		m.mob.Y = int(m.fy + 0.5)
		return
	}

	// Snap to the target so no rounding error remains.
	m.mob.X = m.TargetX
	m.mob.Y = m.TargetY
	m.done = true

	// Expired projectiles leave the map; the hit test runs afterwards on
	// the final position.
	if m.mob.Type == TypeProjectile {
		room.RemoveMob(m.Layer, m.mob.ID)
	}
}
