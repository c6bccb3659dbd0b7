// Package item holds item instances and per-session inventories. The
// immutable template data lives in the catalog package; this package adds
// the mutable, per-instance state.
package item

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/tinyplaces/server/internal/catalog"
)

// Item placement. Values at SlotFirst and above address equipment slots.
const (
	OnMap       = 0
	InInventory = 1
	SlotFirst   = 2
)

// Item is one concrete item in the game world: a catalog template plus the
// state rolled or assigned at creation.
type Item struct {
	ID          int
	Base        *catalog.BaseItem
	DisplayName string

	// Where the item currently lives: OnMap, InInventory, or an equipment
	// slot index offset by SlotFirst.
	Where int

	// Position within the inventory grid, or on the map while Where==OnMap.
	X int
	Y int

	// MobID links a dropped item to the map object representing it.
	MobID int

	// Damage values rolled once at creation from the template's range.
	EnergyDamage   int
	PhysicalDamage int
}

// Builder creates items with process-unique ids.
type Builder struct {
	nextID atomic.Int64
}

func NewBuilder() *Builder {
	b := &Builder{}
	b.nextID.Store(1)
	return b
}

// Create rolls a new item instance from the given template.
func (b *Builder) Create(base *catalog.BaseItem, rng *rand.Rand) *Item {
	return &Item{
		ID:             int(b.nextID.Add(1) - 1),
		Base:           base,
		DisplayName:    base.DisplayName,
		Where:          OnMap,
		EnergyDamage:   rollDamage(base.EnergyDamageMin, base.EnergyDamageMax, rng),
		PhysicalDamage: rollDamage(base.PhysicalDamageMin, base.PhysicalDamageMax, rng),
	}
}

func rollDamage(min, max float64, rng *rand.Rand) int {
	if max <= min {
		return int(min)
	}
	return int(min + rng.Float64()*(max-min) + 0.5)
}
