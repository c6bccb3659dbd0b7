package item

// Inventory grid dimensions, measured in item footprint units.
const (
	gridWidth  = 6
	gridHeight = 4
)

// Inventory holds a session's items, both the inventory grid and the
// equipment slots. Items on the map never appear here.
type Inventory struct {
	items []*Item
}

func NewInventory() *Inventory {
	return &Inventory{}
}

// Items returns the backing list. Callers must not mutate it.
func (inv *Inventory) Items() []*Item {
	return inv.items
}

// Get returns the item with the given id, or nil.
func (inv *Inventory) Get(id int) *Item {
	for _, it := range inv.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Add places the item. For slot placement the slot is taken as-is; for
// inventory placement the item's position must be free. Returns the
// obstructing item when the placement is blocked, nil on success.
func (inv *Inventory) Add(it *Item) *Item {
	if obstruction := inv.obstructionAt(it, it.Where, it.X, it.Y); obstruction != nil {
		return obstruction
	}
	inv.items = append(inv.items, it)
	return nil
}

// Remove takes the item with the given id out of the inventory.
func (inv *Inventory) Remove(id int) *Item {
	for i, it := range inv.items {
		if it.ID == id {
			inv.items = append(inv.items[:i], inv.items[i+1:]...)
			return it
		}
	}
	return nil
}

// UpdatePlacement moves an item within the inventory or between slots.
// Returns the obstructing item if the target placement overlaps another one.
func (inv *Inventory) UpdatePlacement(id, where, x, y int) *Item {
	it := inv.Get(id)
	if it == nil {
		return nil
	}
	if obstruction := inv.obstructionAt(it, where, x, y); obstruction != nil {
		return obstruction
	}
	it.Where = where
	it.X = x
	it.Y = y
	return nil
}

// FindFreePosition scans the grid for a spot where the item's footprint
// fits. Reports false when the inventory is full.
func (inv *Inventory) FindFreePosition(it *Item) (int, int, bool) {
	for y := 0; y+it.Base.Height <= gridHeight; y++ {
		for x := 0; x+it.Base.Width <= gridWidth; x++ {
			if inv.obstructionAt(it, InInventory, x, y) == nil {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

// obstructionAt reports the first item overlapping the given placement,
// ignoring the item being placed itself.
func (inv *Inventory) obstructionAt(it *Item, where, x, y int) *Item {
	for _, other := range inv.items {
		if other.ID == it.ID || other.Where != where {
			continue
		}

		// Equipment slots hold exactly one item each.
		if where >= SlotFirst {
			return other
		}

		if rectsOverlap(x, y, it.Base.Width, it.Base.Height,
			other.X, other.Y, other.Base.Width, other.Base.Height) {
			return other
		}
	}
	return nil
}

func rectsOverlap(ax, ay, aw, ah, bx, by, bw, bh int) bool {
	return ax < bx+bw && bx < ax+aw && ay < by+bh && by < ay+ah
}
