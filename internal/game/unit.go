package game

import "sort"

// UnitID identifies a unit in the state's arena. IDs start at 1.
type UnitID int

// NoUnit marks an empty unit slot.
const NoUnit UnitID = 0

// MilitaryUnit is a recruited unit stationed in one territory.
type MilitaryUnit struct {
	ID          UnitID      `json:"id"`
	Type        UnitType    `json:"type"`
	Health      int         `json:"health"`
	MaxHealth   int         `json:"maxHealth"`
	Damage      int         `json:"damage"`
	Defense     int         `json:"defense"`
	Experience  int         `json:"experience"`
	HasMoved    bool        `json:"hasMoved"`
	Owner       PlayerID    `json:"owner"`
	TerritoryID TerritoryID `json:"territoryId"`
}

// NewUnit creates a full-health unit from the catalog.
func NewUnit(id UnitID, unitType UnitType, owner PlayerID, territory TerritoryID) *MilitaryUnit {
	spec := UnitCatalog[unitType]
	return &MilitaryUnit{
		ID:          id,
		Type:        unitType,
		Health:      spec.MaxHealth,
		MaxHealth:   spec.MaxHealth,
		Damage:      spec.Damage,
		Defense:     spec.Defense,
		Owner:       owner,
		TerritoryID: territory,
	}
}

// HealthRatio returns health as a fraction of max health.
func (u *MilitaryUnit) HealthRatio() float64 {
	if u.MaxHealth <= 0 {
		return 0
	}
	return float64(u.Health) / float64(u.MaxHealth)
}

// IsDead reports whether the unit should be removed.
func (u *MilitaryUnit) IsDead() bool {
	return u.Health <= 0
}

// TakeDamage subtracts dmg, flooring health at zero.
func (u *MilitaryUnit) TakeDamage(dmg int) {
	u.Health -= dmg
	if u.Health < 0 {
		u.Health = 0
	}
}

// GainExperience raises the level by one, up to limit.
func (u *MilitaryUnit) GainExperience(limit int) {
	if u.Experience < limit {
		u.Experience++
	}
}

// sortedUnitIDs returns the arena keys in ascending order.
func sortedUnitIDs(s *GameState) []UnitID {
	ids := make([]UnitID, 0, len(s.Units))
	for id := range s.Units {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
