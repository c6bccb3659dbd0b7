package world

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tinyplaces/server/internal/catalog"
	"github.com/tinyplaces/server/internal/item"
)

// Object layers within a room.
const (
	LayerPatches = 1 // background patches
	LayerMain    = 3 // creatures, players, projectiles, dropped items
	LayerClouds  = 5 // overlays
)

// Room is a named map segment. It owns three object layers, the list of
// in-flight actions, the creature groups, and all dropped items. One mutex
// guards every collection; it is held only for structural mutations, never
// across blocking calls.
type Room struct {
	MapID    string // map file name, key for transitions and populations
	Name     string
	Backdrop string

	mu           sync.Mutex
	nextObjectID int
	patches      map[int]*Mob
	mobs         map[int]*Mob
	clouds       map[int]*Mob
	actions      []Action
	staged       []Action
	groups       []*CreatureGroup
	items        map[int]*item.Item
	populated    bool
}

func NewRoom(mapID, name, backdrop string) *Room {
	return &Room{
		MapID:        mapID,
		Name:         name,
		Backdrop:     backdrop,
		nextObjectID: 1,
		patches:      map[int]*Mob{},
		mobs:         map[int]*Mob{},
		clouds:       map[int]*Mob{},
		items:        map[int]*item.Item{},
	}
}

func (r *Room) layerMap(layer int) map[int]*Mob {
	switch layer {
	case LayerPatches:
		return r.patches
	case LayerMain:
		return r.mobs
	case LayerClouds:
		return r.clouds
	default:
		slog.Error("no such layer", "room", r.MapID, "layer", layer)
		return nil
	}
}

// NextObjectID hands out room-unique object ids. Ids are never reused while
// the referencing mob is live.
func (r *Room) NextObjectID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextObjectID
	r.nextObjectID++
	return id
}

// AddMob places an existing mob on the given layer.
func (r *Room) AddMob(layer int, mob *Mob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lmap := r.layerMap(layer); lmap != nil {
		lmap[mob.ID] = mob
	}
}

// Mob looks up a mob by layer and id. Returns nil when not present.
func (r *Room) Mob(layer, id int) *Mob {
	r.mu.Lock()
	defer r.mu.Unlock()
	lmap := r.layerMap(layer)
	if lmap == nil {
		return nil
	}
	return lmap[id]
}

// RemoveMob takes a mob off its layer and out of any creature group.
// Returns the removed mob, or nil when it was not present.
func (r *Room) RemoveMob(layer, id int) *Mob {
	r.mu.Lock()
	defer r.mu.Unlock()

	lmap := r.layerMap(layer)
	if lmap == nil {
		return nil
	}
	mob, ok := lmap[id]
	if !ok {
		return nil
	}
	delete(lmap, id)

	for _, g := range r.groups {
		if g.remove(id) {
			break
		}
	}

	return mob
}

// MakeMob creates a mob with a fresh object id and places it.
func (r *Room) MakeMob(layer, tile, frames, phases, x, y int, scale float64, color string, mobType MobType) *Mob {
	mob := &Mob{
		ID:     r.NextObjectID(),
		Tile:   tile,
		Frames: frames,
		Phases: phases,
		X:      x,
		Y:      y,
		Scale:  scale,
		Color:  color,
		Type:   mobType,
	}
	r.AddMob(layer, mob)
	return mob
}

// MobsOnLayer returns a snapshot of one layer's mobs.
func (r *Room) MobsOnLayer(layer int) []*Mob {
	r.mu.Lock()
	defer r.mu.Unlock()
	lmap := r.layerMap(layer)
	mobs := make([]*Mob, 0, len(lmap))
	for _, m := range lmap {
		mobs = append(mobs, m)
	}
	return mobs
}

// AddAction stages a new action. Staged actions join the live list only
// between ticks, so the engine never mutates the list it is iterating.
func (r *Room) AddAction(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged = append(r.staged, a)
}

// MergeStagedActions moves staged actions into the live list. Called by the
// engine at the top of each tick.
func (r *Room) MergeStagedActions() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, r.staged...)
	r.staged = nil
}

// Actions returns a snapshot of the live action list.
func (r *Room) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([]Action, len(r.actions))
	copy(snapshot, r.actions)
	return snapshot
}

// RemoveActions drops the given retired actions from the live list.
func (r *Room) RemoveActions(retired []Action) {
	if len(retired) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.actions[:0]
	for _, a := range r.actions {
		found := false
		for _, dead := range retired {
			if a == dead {
				found = true
				break
			}
		}
		if !found {
			kept = append(kept, a)
		}
	}
	r.actions = kept
}

// CancelMoves removes every Move referencing the given mob id, both live
// and staged. Starting a new move for a mob must call this first: last
// command wins, moves never queue.
func (r *Room) CancelMoves(mobID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = filterMoves(r.actions, mobID)
	r.staged = filterMoves(r.staged, mobID)
}

func filterMoves(actions []Action, mobID int) []Action {
	kept := actions[:0]
	for _, a := range actions {
		if m, ok := a.(*Move); ok && m.Mob().ID == mobID {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// AddGroup registers a creature group with the room.
func (r *Room) AddGroup(g *CreatureGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = append(r.groups, g)
}

// Groups returns a snapshot of the room's creature groups.
func (r *Room) Groups() []*CreatureGroup {
	r.mu.Lock()
	defer r.mu.Unlock()
	groups := make([]*CreatureGroup, len(r.groups))
	copy(groups, r.groups)
	return groups
}

// AddItem registers a dropped item lying on the map.
func (r *Room) AddItem(it *item.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[it.ID] = it
}

// RemoveItem takes a dropped item off the map. Returns nil when absent.
func (r *Room) RemoveItem(id int) *item.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil
	}
	delete(r.items, id)
	return it
}

// Items returns a snapshot of the dropped items lying on the map.
func (r *Room) Items() []*item.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*item.Item, 0, len(r.items))
	for _, it := range r.items {
		items = append(items, it)
	}
	return items
}

// NearestTarget finds the closest creature or player within radius of
// (x,y), excluding the given mob id. Linear scan with explicit tie-breaking
// on smallest squared distance.
func (r *Room) NearestTarget(x, y, radius, excludeID int) *Mob {
	r.mu.Lock()
	defer r.mu.Unlock()

	best := (*Mob)(nil)
	bestD2 := radius*radius + 1
	for _, m := range r.mobs {
		if m.ID == excludeID || (m.Type != TypeCreature && m.Type != TypePlayer) {
			continue
		}
		dx, dy := m.X-x, m.Y-y
		d2 := dx*dx + dy*dy
		if d2 < bestD2 {
			best = m
			bestD2 = d2
		}
	}
	return best
}

// NearestItem finds the closest dropped item within radius of (x,y).
func (r *Room) NearestItem(x, y, radius int) *item.Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	best := (*item.Item)(nil)
	bestD2 := radius*radius + 1
	for _, it := range r.items {
		dx, dy := it.X-x, it.Y-y
		d2 := dx*dx + dy*dy
		if d2 < bestD2 {
			best = it
			bestD2 = d2
		}
	}
	return best
}

// FirstPlayer returns any player mob in the room, or nil. Used by the AI
// to pick a target.
func (r *Room) FirstPlayer() *Mob {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.mobs {
		if m.Type == TypePlayer {
			return m
		}
	}
	return nil
}

// ContentSource is the slice of the content catalog that room population
// needs.
type ContentSource interface {
	Creature(id string) (*catalog.Creature, bool)
	Populations(mapID string) []*catalog.Population
}

// Populate spawns the room's catalog populations. Only the first call has
// an effect; rooms are populated once, on creation. Returns the spawned
// creatures so the caller can announce them.
func (r *Room) Populate(set ContentSource, rng *rand.Rand, now time.Time) []*Mob {
	r.mu.Lock()
	if r.populated {
		r.mu.Unlock()
		return nil
	}
	r.populated = true
	r.mu.Unlock()

	var spawned []*Mob
	for _, p := range set.Populations(r.MapID) {
		template, ok := set.Creature(p.CreatureID)
		if !ok {
			continue
		}

		count := p.MinCount + rng.IntN(p.MaxCount-p.MinCount+1)
		members := make([]*Mob, 0, count)
		for i := 0; i < count; i++ {
			x := p.X + p.Spacing*2*(rng.IntN(5)-2)
			y := p.Y + p.Spacing*(rng.IntN(5)-2)

			mob := r.MakeMob(LayerMain, template.Tile, 16, 2, x, y, template.Scale, template.Color, TypeCreature)
			mob.Creature = template.Instantiate(rng)
			mob.Pattern = template.Pattern
			mob.Speed = template.Speed
			mob.NextAI = now.Add(time.Duration(rng.IntN(10000)) * time.Millisecond)

			members = append(members, mob)
		}

		r.AddGroup(NewCreatureGroup(members, p.X, p.Y))
		spawned = append(spawned, members...)
	}

	return spawned
}
