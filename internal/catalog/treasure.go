package catalog

import "fmt"

// TreasureEntry is one possible drop, rolled independently of its siblings.
type TreasureEntry struct {
	BaseItemID string
	Chance     float64 // probability in [0,1]
}

// TreasureClass is a named drop table referenced by creature templates.
type TreasureClass struct {
	ID      string
	Entries []TreasureEntry
}

// loadTreasureClasses reads the treasure table. Each line is one entry:
// class id, base item id, drop chance. Classes span multiple lines.
func loadTreasureClasses(path string) (map[string]*TreasureClass, error) {
	classes := map[string]*TreasureClass{}

	err := readTable(path, func(r *row) error {
		classID := r.str(0)
		entry := TreasureEntry{
			BaseItemID: r.str(1),
			Chance:     r.float(2),
		}

		if err := r.Err(); err != nil {
			return err
		}
		if classID == "" || entry.BaseItemID == "" {
			return fmt.Errorf("%s line %d: treasure entry needs class and item", r.source, r.num)
		}
		if entry.Chance < 0 || entry.Chance > 1 {
			return fmt.Errorf("%s line %d: drop chance %g out of range", r.source, r.num, entry.Chance)
		}

		tc, ok := classes[classID]
		if !ok {
			tc = &TreasureClass{ID: classID}
			classes[classID] = tc
		}
		tc.Entries = append(tc.Entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return classes, nil
}
