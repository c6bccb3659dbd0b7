// Package catalog loads the immutable game content tables: spells,
// creatures, items, transitions, populations, and treasure classes. All
// tables are read once at startup and never mutated afterwards.
package catalog

import (
	"fmt"
	"log/slog"
)

// Paths names the table files a Set is loaded from.
type Paths struct {
	Spells          string
	Creatures       string
	Items           string
	Transitions     string
	Populations     string
	TreasureClasses string
}

// Set is the full loaded content catalog. Lookups on a missing entry log a
// warning and report absence; callers skip the operation.
type Set struct {
	spells      map[string]*Spell
	creatures   map[string]*Creature
	items       map[string]*BaseItem
	transitions map[string][]*Transition
	populations map[string][]*Population
	treasures   map[string]*TreasureClass
}

// Load reads every table. A missing or malformed table is a startup failure.
func Load(paths Paths) (*Set, error) {
	var set Set
	var err error

	if set.spells, err = loadSpells(paths.Spells); err != nil {
		return nil, fmt.Errorf("loading spells: %w", err)
	}
	if set.creatures, err = loadCreatures(paths.Creatures); err != nil {
		return nil, fmt.Errorf("loading creatures: %w", err)
	}
	if set.items, err = loadBaseItems(paths.Items); err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	if set.transitions, err = loadTransitions(paths.Transitions); err != nil {
		return nil, fmt.Errorf("loading transitions: %w", err)
	}
	if set.populations, err = loadPopulations(paths.Populations); err != nil {
		return nil, fmt.Errorf("loading populations: %w", err)
	}
	if set.treasures, err = loadTreasureClasses(paths.TreasureClasses); err != nil {
		return nil, fmt.Errorf("loading treasure classes: %w", err)
	}

	slog.Info("catalogs loaded",
		"spells", len(set.spells),
		"creatures", len(set.creatures),
		"items", len(set.items),
		"transition maps", len(set.transitions),
		"population maps", len(set.populations),
		"treasure classes", len(set.treasures))

	return &set, nil
}

func (s *Set) Spell(id string) (*Spell, bool) {
	spell, ok := s.spells[id]
	if !ok {
		slog.Warn("spell not found in catalog", "id", id)
	}
	return spell, ok
}

func (s *Set) Creature(id string) (*Creature, bool) {
	creature, ok := s.creatures[id]
	if !ok {
		slog.Warn("creature not found in catalog", "id", id)
	}
	return creature, ok
}

func (s *Set) BaseItem(id string) (*BaseItem, bool) {
	item, ok := s.items[id]
	if !ok {
		slog.Warn("base item not found in catalog", "id", id)
	}
	return item, ok
}

// Transitions returns all transition triggers leaving the given map.
func (s *Set) Transitions(fromMap string) []*Transition {
	return s.transitions[fromMap]
}

// Populations returns the creature groups to spawn on the given map.
func (s *Set) Populations(mapID string) []*Population {
	return s.populations[mapID]
}

func (s *Set) TreasureClass(id string) (*TreasureClass, bool) {
	tc, ok := s.treasures[id]
	if !ok {
		slog.Warn("treasure class not found in catalog", "id", id)
	}
	return tc, ok
}
