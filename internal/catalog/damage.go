package catalog

// Damage types. Spells roll each type independently, creatures carry one
// resistance value per type.
const (
	DamagePhysical = iota
	DamageFire
	DamageCold
	DamageLight
	DamageChaos

	DamageTypeCount
)

// DamageVector holds one value per damage type.
type DamageVector [DamageTypeCount]int
