package catalog

import "fmt"

// Transition is a trigger region that moves a player avatar from one room
// to another.
type Transition struct {
	ID          string
	DisplayName string
	FromMap     string
	FromX       int
	FromY       int
	ToMap       string
	ToX         int
	ToY         int
}

// loadTransitions reads the transition table, grouped by source map.
func loadTransitions(path string) (map[string][]*Transition, error) {
	transitions := map[string][]*Transition{}

	err := readTable(path, func(r *row) error {
		t := &Transition{
			ID:          r.str(0),
			DisplayName: r.str(1),
			FromMap:     r.str(2),
			FromX:       r.int(3),
			FromY:       r.int(4),
			ToMap:       r.str(5),
			ToX:         r.int(6),
			ToY:         r.int(7),
		}

		if err := r.Err(); err != nil {
			return err
		}
		if t.FromMap == "" || t.ToMap == "" {
			return fmt.Errorf("%s line %d: transition %s needs both maps", r.source, r.num, t.ID)
		}
		transitions[t.FromMap] = append(transitions[t.FromMap], t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transitions, nil
}
