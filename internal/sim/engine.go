package sim

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/tinyplaces/server/internal/catalog"
	"github.com/tinyplaces/server/internal/dispatch"
	"github.com/tinyplaces/server/internal/item"
	"github.com/tinyplaces/server/internal/session"
	"github.com/tinyplaces/server/internal/world"
)

// pickupRadius bounds both projectile hit tests and item pickups.
const pickupRadius = 20

// transitRadiusSq is the squared trigger distance for room transitions.
const transitRadiusSq = 250

// Engine advances every live room each tick: merges staged actions,
// processes the live ones, retires completed actions with their side
// effects, and runs the creature AI.
type Engine struct {
	rooms    *world.Registry
	catalogs *catalog.Set
	sessions *session.Table
	items    *item.Builder
	caster   dispatch.Caster
	game     *dispatch.Dispatcher
	rng      *rand.Rand
}

func NewEngine(rooms *world.Registry, catalogs *catalog.Set, sessions *session.Table,
	items *item.Builder, caster dispatch.Caster, game *dispatch.Dispatcher) *Engine {

	return &Engine{
		rooms:    rooms,
		catalogs: catalogs,
		sessions: sessions,
		items:    items,
		caster:   caster,
		game:     game,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

func (e *Engine) Tick(ctx context.Context, dt time.Duration) error {
	for _, room := range e.rooms.Rooms() {
		e.tickRoom(room, dt)
	}
	return nil
}

func (e *Engine) tickRoom(room *world.Room, dt time.Duration) {
	room.MergeStagedActions()

	var retired []world.Action
	for _, a := range room.Actions() {
		a.Process(room, dt)
		if a.Done() {
			retired = append(retired, a)
		}
	}

	for _, a := range retired {
		e.processActionResult(room, a)
	}
	room.RemoveActions(retired)

	e.runAI(room, time.Now())
}

func (e *Engine) processActionResult(room *world.Room, a world.Action) {
	move, ok := a.(*world.Move)
	if !ok {
		return
	}
	mob := move.Mob()

	switch mob.Type {
	case world.TypeProjectile:
		e.checkProjectileHit(room, mob)
	case world.TypePlayer:
		e.checkPlayerPickup(room, mob, move)
		e.checkTransitions(room, move)
	}
}

func (e *Engine) checkProjectileHit(room *world.Room, projectile *world.Mob) {
	target := room.NearestTarget(projectile.X, projectile.Y, pickupRadius, projectile.ID)
	if target == nil {
		return
	}

	// for now, don't kill the player
	if target.Type == world.TypePlayer {
		return
	}

	e.handleHit(room, projectile, target)
}

func (e *Engine) checkPlayerPickup(room *world.Room, mob *world.Mob, move *world.Move) {
	drop := room.NearestItem(mob.X, mob.Y, pickupRadius)
	if drop == nil {
		return
	}

	s := e.sessions.Get(move.ConnID)
	if s == nil {
		return
	}

	if drop.Base.Class == catalog.ItemClassPowerup {
		e.game.ApplyPowerup(s, room, drop)
	} else {
		e.game.PickupItem(s, room, drop)
	}
}

func (e *Engine) checkTransitions(room *world.Room, move *world.Move) {
	// Creatures have no session and cannot transit to another room.
	if move.ConnID == "" {
		return
	}

	for _, t := range e.catalogs.Transitions(room.MapID) {
		dx := move.TargetX - t.FromX
		dy := move.TargetY - t.FromY
		if dx*dx+dy*dy >= transitRadiusSq {
			continue
		}

		s := e.sessions.Get(move.ConnID)
		if s == nil {
			return
		}
		if err := e.game.Transit(s, t.ToMap, t.ToX, t.ToY); err != nil {
			slog.Warn("room transition", "name", s.Name, "to", t.ToMap, "error", err)
		}
		return
	}
}
