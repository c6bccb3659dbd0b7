package catalog

import "fmt"

// Population describes one creature group to spawn when a map is first
// populated.
type Population struct {
	CreatureID string
	MinCount   int
	MaxCount   int
	X          int
	Y          int
	Spacing    int
}

// loadPopulations reads the population table, grouped by map name.
func loadPopulations(path string) (map[string][]*Population, error) {
	populations := map[string][]*Population{}

	err := readTable(path, func(r *row) error {
		mapID := r.str(0)
		p := &Population{
			CreatureID: r.str(1),
			MinCount:   r.int(2),
			MaxCount:   r.int(3),
			X:          r.int(4),
			Y:          r.int(5),
			Spacing:    r.int(6),
		}

		if err := r.Err(); err != nil {
			return err
		}
		if mapID == "" || p.CreatureID == "" {
			return fmt.Errorf("%s line %d: population needs map and creature", r.source, r.num)
		}
		if p.MaxCount < p.MinCount {
			return fmt.Errorf("%s line %d: population max count below min count", r.source, r.num)
		}
		populations[mapID] = append(populations[mapID], p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return populations, nil
}
