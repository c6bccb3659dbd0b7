package world

// CreatureGroup clusters creature mobs around a shared center point. The AI
// biases each member's random walk back toward the center so the group
// stays together. Membership is maintained by the owning room.
type CreatureGroup struct {
	Creatures []*Mob
	CX        int
	CY        int
}

func NewCreatureGroup(creatures []*Mob, cx, cy int) *CreatureGroup {
	return &CreatureGroup{
		Creatures: creatures,
		CX:        cx,
		CY:        cy,
	}
}

// remove drops the mob with the given id from the group. Reports whether a
// member was removed.
func (g *CreatureGroup) remove(mobID int) bool {
	for i, c := range g.Creatures {
		if c.ID == mobID {
			g.Creatures = append(g.Creatures[:i], g.Creatures[i+1:]...)
			return true
		}
	}
	return false
}
