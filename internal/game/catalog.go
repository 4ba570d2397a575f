package game

// BuildingType identifies a building. The empty string means no building.
type BuildingType string

const (
	BuildingNone       BuildingType = ""
	BuildingFarm       BuildingType = "farm"
	BuildingLumberMill BuildingType = "lumber_mill"
	BuildingMine       BuildingType = "mine"
	BuildingMarket     BuildingType = "market"
	BuildingBarracks   BuildingType = "barracks"
	BuildingWatchtower BuildingType = "watchtower"
	BuildingWalls      BuildingType = "walls"
	BuildingFortress   BuildingType = "fortress"
)

// BuildingSpec is the cost and flat yield of a building. The lumber mill's
// wood bonus depends on Rules and is not part of Yield.
type BuildingSpec struct {
	Cost  Resources `json:"cost"`
	Yield Resources `json:"yield"`
}

// BuildingCatalog holds every constructible building.
var BuildingCatalog = map[BuildingType]BuildingSpec{
	BuildingFarm:       {Cost: Resources{Gold: 50, Wood: 30}, Yield: Resources{Food: 15}},
	BuildingLumberMill: {Cost: Resources{Gold: 40, Wood: 20, Stone: 10}},
	BuildingMine:       {Cost: Resources{Gold: 60, Wood: 40}, Yield: Resources{Stone: 15}},
	BuildingMarket:     {Cost: Resources{Gold: 80, Wood: 40, Stone: 20}, Yield: Resources{Gold: 25}},
	BuildingBarracks:   {Cost: Resources{Gold: 100, Wood: 50, Stone: 50}},
	BuildingWatchtower: {Cost: Resources{Gold: 60, Wood: 30, Stone: 40}},
	BuildingWalls:      {Cost: Resources{Gold: 80, Stone: 80}},
	BuildingFortress:   {Cost: Resources{Gold: 200, Wood: 50, Stone: 150}},
}

// BuildingTypes lists the catalog in a stable order.
func BuildingTypes() []BuildingType {
	return []BuildingType{
		BuildingFarm, BuildingLumberMill, BuildingMine, BuildingMarket,
		BuildingBarracks, BuildingWatchtower, BuildingWalls, BuildingFortress,
	}
}

// UnitType identifies a kind of military unit.
type UnitType string

const (
	UnitInfantry  UnitType = "infantry"
	UnitCavalry   UnitType = "cavalry"
	UnitArtillery UnitType = "artillery"
)

// UnitSpec is the recruitment cost and base stats of a unit type.
type UnitSpec struct {
	Cost      Resources `json:"cost"`
	Damage    int       `json:"damage"`
	Defense   int       `json:"defense"`
	MaxHealth int       `json:"maxHealth"`
	Upkeep    int       `json:"upkeep"` // food per collection
}

// UnitCatalog holds every recruitable unit type.
var UnitCatalog = map[UnitType]UnitSpec{
	UnitInfantry:  {Cost: Resources{Gold: 50, Food: 20}, Damage: 30, Defense: 20, MaxHealth: 100, Upkeep: 1},
	UnitCavalry:   {Cost: Resources{Gold: 80, Wood: 10, Food: 30}, Damage: 40, Defense: 15, MaxHealth: 120, Upkeep: 2},
	UnitArtillery: {Cost: Resources{Gold: 120, Wood: 40, Stone: 30}, Damage: 50, Defense: 10, MaxHealth: 80, Upkeep: 2},
}

// UnitTypes lists the catalog in a stable order.
func UnitTypes() []UnitType {
	return []UnitType{UnitInfantry, UnitCavalry, UnitArtillery}
}
