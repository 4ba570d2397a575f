package game

import "empires-legacy/pkg/maps"

// TerritoryID is the index of a territory on the board.
type TerritoryID int

// NoTerritory marks an unset territory reference.
const NoTerritory TerritoryID = -1

// Terrain is the land type of a territory.
type Terrain string

const (
	TerrainPlains    Terrain = "plains"
	TerrainForest    Terrain = "forest"
	TerrainMountains Terrain = "mountains"
	TerrainCoast     Terrain = "coast"
	TerrainCapital   Terrain = "capital"
	// Hills and river modify combat but the board generator never places them.
	TerrainHills Terrain = "hills"
	TerrainRiver Terrain = "river"
)

// BaseYield is the nominal production of each terrain before variance.
var BaseYield = map[Terrain]Resources{
	TerrainPlains:    {Food: 20, Gold: 5},
	TerrainForest:    {Wood: 20, Food: 5},
	TerrainMountains: {Stone: 20, Gold: 10},
	TerrainCoast:     {Food: 15, Gold: 10},
	TerrainCapital:   {Gold: 20, Food: 10, Wood: 10, Stone: 10},
}

// Territory is a single hex on the board.
type Territory struct {
	ID       TerritoryID   `json:"id"`
	Terrain  Terrain       `json:"terrain"`
	Owner    PlayerID      `json:"owner"` // NoPlayer if unclaimed
	Coord    maps.Coord    `json:"coord"`
	Yield    Resources     `json:"yield"`
	Building BuildingType  `json:"building"`
	UnitID   UnitID        `json:"unitId"` // NoUnit if empty
	Adjacent []TerritoryID `json:"adjacent"`
}

// IsOwnedBy reports whether p owns the territory.
func (t *Territory) IsOwnedBy(p PlayerID) bool {
	return t.Owner != NoPlayer && t.Owner == p
}

// IsUnclaimed reports whether no player owns the territory.
func (t *Territory) IsUnclaimed() bool {
	return t.Owner == NoPlayer
}

// HasBuilding reports whether the building slot is taken.
func (t *Territory) HasBuilding() bool {
	return t.Building != BuildingNone
}

// HasUnit reports whether the unit slot is taken.
func (t *Territory) HasUnit() bool {
	return t.UnitID != NoUnit
}

// IsAdjacentTo reports whether other is listed as a neighbor.
func (t *Territory) IsAdjacentTo(other TerritoryID) bool {
	for _, id := range t.Adjacent {
		if id == other {
			return true
		}
	}
	return false
}

// clone returns a deep copy.
func (t *Territory) clone() *Territory {
	c := *t
	c.Adjacent = append([]TerritoryID{}, t.Adjacent...)
	return &c
}
