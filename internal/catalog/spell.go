package catalog

import "fmt"

// Spell is an immutable spell template. Projectiles carry a reference to the
// spell that fired them so hits can be resolved later.
type Spell struct {
	ID          string
	DisplayName string
	PType       string // projectile visual type, interpreted by the client

	Min DamageVector
	Max DamageVector

	Speed    int // projectile speed in map units per second
	CastTime int // milliseconds before the projectile materializes
}

// loadSpells reads the spell table. Columns: id, name, ptype, then min/max
// pairs per damage type, speed, cast time.
func loadSpells(path string) (map[string]*Spell, error) {
	spells := map[string]*Spell{}

	err := readTable(path, func(r *row) error {
		s := &Spell{
			ID:          r.str(0),
			DisplayName: r.str(1),
			PType:       r.str(2),
		}
		col := 3
		for i := 0; i < DamageTypeCount; i++ {
			s.Min[i] = r.int(col)
			s.Max[i] = r.int(col + 1)
			col += 2
		}
		s.Speed = r.int(col)
		s.CastTime = r.int(col + 1)

		if err := r.Err(); err != nil {
			return err
		}
		if s.ID == "" {
			return fmt.Errorf("%s line %d: spell id is empty", r.source, r.num)
		}
		spells[s.ID] = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	return spells, nil
}
