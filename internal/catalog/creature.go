package catalog

import (
	"fmt"
	"math/rand/v2"
)

// Creature is an immutable creature template from the catalog.
type Creature struct {
	ID          string
	DisplayName string
	Tile        int

	MinLife    int
	MaxLife    int
	Resistance DamageVector

	Pattern       string // movement pattern announced with MOVE
	Speed         int
	SpellID       string
	TreasureClass string

	Color string
	Scale float64
}

// CreatureInstance is one live creature: the shared template plus the stats
// rolled for this individual.
type CreatureInstance struct {
	*Creature
	Life int
}

// Instantiate rolls an individual from the template. Life is the only
// randomized stat.
func (c *Creature) Instantiate(rng *rand.Rand) *CreatureInstance {
	return &CreatureInstance{
		Creature: c,
		Life:     c.MinLife + rng.IntN(c.MaxLife-c.MinLife+1),
	}
}

// loadCreatures reads the creature table. Columns: id, name, tile, min life,
// max life, five resistances, pattern, speed, spell, treasure class, color,
// scale.
func loadCreatures(path string) (map[string]*Creature, error) {
	creatures := map[string]*Creature{}

	err := readTable(path, func(r *row) error {
		c := &Creature{
			ID:          r.str(0),
			DisplayName: r.str(1),
			Tile:        r.int(2),
			MinLife:     r.int(3),
			MaxLife:     r.int(4),
		}
		for i := 0; i < DamageTypeCount; i++ {
			c.Resistance[i] = r.int(5 + i)
		}
		c.Pattern = r.str(10)
		c.Speed = r.int(11)
		c.SpellID = r.str(12)
		c.TreasureClass = r.str(13)
		c.Color = r.str(14)
		c.Scale = r.float(15)

		if err := r.Err(); err != nil {
			return err
		}
		if c.ID == "" {
			return fmt.Errorf("%s line %d: creature id is empty", r.source, r.num)
		}
		if c.MaxLife < c.MinLife {
			return fmt.Errorf("%s line %d: creature %s has max life below min life", r.source, r.num, c.ID)
		}
		creatures[c.ID] = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return creatures, nil
}
