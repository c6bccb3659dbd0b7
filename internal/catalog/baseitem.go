package catalog

import "fmt"

// Item classes with server-side behavior. Everything else is cosmetic and
// interpreted by the client.
const (
	ItemClassPowerup = "powerup"
)

// BaseItem is an immutable item template. Item instances reference one of
// these and add their own rolled stats.
type BaseItem struct {
	ID          string
	DisplayName string
	Class       string
	Type        string

	Tile        int
	Shadow      int
	ShadowScale float64
	Width       int // inventory footprint
	Height      int
	Color       string
	Scale       float64

	CanDrop   bool
	StackSize int
	BaseValue int

	EnergyDamageMin   float64
	EnergyDamageMax   float64
	PhysicalDamageMin float64
	PhysicalDamageMax float64

	Description string
}

// loadBaseItems reads the item table. Columns follow the resource layout:
// id, name, class, type, tile, shadow, shadow scale, width, height, color,
// scale, can drop, stack size, base value, four damage bounds, description.
func loadBaseItems(path string) (map[string]*BaseItem, error) {
	items := map[string]*BaseItem{}

	err := readTable(path, func(r *row) error {
		b := &BaseItem{
			ID:                r.str(0),
			DisplayName:       r.str(1),
			Class:             r.str(2),
			Type:              r.str(3),
			Tile:              r.int(4),
			Shadow:            r.int(5),
			ShadowScale:       r.float(6),
			Width:             r.int(7),
			Height:            r.int(8),
			Color:             r.str(9),
			Scale:             r.float(10),
			CanDrop:           r.str(11) == "1",
			StackSize:         r.int(12),
			BaseValue:         r.int(13),
			EnergyDamageMin:   r.float(14),
			EnergyDamageMax:   r.float(15),
			PhysicalDamageMin: r.float(16),
			PhysicalDamageMax: r.float(17),
			Description:       r.str(18),
		}

		if err := r.Err(); err != nil {
			return err
		}
		if b.ID == "" {
			return fmt.Errorf("%s line %d: item id is empty", r.source, r.num)
		}
		items[b.ID] = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}
