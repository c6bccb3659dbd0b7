package world

import "time"

// Action is a unit of time-driven behavior attached to a Mob. The only
// implementations are Move and SpellCast; the simulation engine switches
// over them exhaustively.
type Action interface {
	// Mob returns the mob this action belongs to.
	Mob() *Mob

	// Process advances the action by the elapsed tick time. Actions may
	// stage follow-up actions on the room but must not remove actions.
	Process(room *Room, dt time.Duration)

	// Done reports that the action has completed and should be retired
	// after post-processing.
	Done() bool
}
