package game

import (
	"fmt"
	"math"

	"empires-legacy/pkg/maps"
)

// CombatResult represents the outcome of a battle. Losses are health lost;
// Remaining is health left after the exchange.
type CombatResult struct {
	Success           bool   `json:"success"`
	TerritoryCapture  bool   `json:"territoryCapture"`
	AttackerLosses    int    `json:"attackerLosses"`
	DefenderLosses    int    `json:"defenderLosses"`
	AttackerRemaining int    `json:"attackerRemaining"`
	DefenderRemaining int    `json:"defenderRemaining"`
	AttackDamage      int    `json:"attackDamage"`
	CounterDamage     int    `json:"counterDamage"`
	AttackerDestroyed bool   `json:"attackerDestroyed"`
	DefenderDestroyed bool   `json:"defenderDestroyed"`
	Message           string `json:"message"`
}

// Attack modifiers by the terrain and building the attacker strikes from.
var (
	attackTerrainBonus = map[Terrain]float64{
		TerrainHills:  1.20,
		TerrainForest: 0.90,
		TerrainPlains: 1.10,
	}
	attackBuildingBonus = map[BuildingType]float64{
		BuildingBarracks:   1.15,
		BuildingWatchtower: 1.10,
	}
)

// Multipliers on the damage a defender takes.
var (
	defenseTerrainFactor = map[Terrain]float64{
		TerrainMountains: 0.70,
		TerrainForest:    0.80,
		TerrainHills:     0.85,
		TerrainRiver:     0.90,
	}
	defenseBuildingFactor = map[BuildingType]float64{
		BuildingFortress:   0.60,
		BuildingWalls:      0.75,
		BuildingWatchtower: 0.90,
	}
)

const (
	entrenchedFactor     = 0.90
	nightFactor          = 0.90
	minHealthFactor      = 0.5
	attackXPBonus        = 0.05
	defenseXPBonus       = 0.03
	supportFactorPerUnit = 0.05
	maxSupportUnits      = 3
)

var weatherFactor = map[Weather]float64{
	WeatherRain: 0.90,
	WeatherFog:  0.80,
}

func factor(m map[Terrain]float64, t Terrain) float64 {
	if f, ok := m[t]; ok {
		return f
	}
	return 1
}

func buildingFactor(m map[BuildingType]float64, b BuildingType) float64 {
	if f, ok := m[b]; ok {
		return f
	}
	return 1
}

func weatherMod(w Weather) float64 {
	if f, ok := weatherFactor[w]; ok {
		return f
	}
	return 1
}

func healthFactor(u *MilitaryUnit) float64 {
	return math.Max(minHealthFactor, u.HealthRatio())
}

// attackDamage is the raw damage a unit deals before the target's defense.
func attackDamage(s *GameState, u *MilitaryUnit, origin *Territory) float64 {
	dmg := float64(u.Damage)
	dmg *= factor(attackTerrainBonus, origin.Terrain)
	dmg *= buildingFactor(attackBuildingBonus, origin.Building)
	dmg *= healthFactor(u)
	dmg *= 1 + attackXPBonus*float64(u.Experience)
	dmg *= weatherMod(s.Weather)
	return dmg
}

// defenseFactor is the multiplier on damage the defender takes.
func defenseFactor(s *GameState, u *MilitaryUnit, t *Territory) float64 {
	f := factor(defenseTerrainFactor, t.Terrain)
	f *= buildingFactor(defenseBuildingFactor, t.Building)
	if !u.HasMoved {
		f *= entrenchedFactor
	}
	f *= 1 - defenseXPBonus*float64(u.Experience)
	if s.TimeOfDay == Night {
		f *= nightFactor
	}
	f *= 1 - supportFactorPerUnit*float64(min(maxSupportUnits, supportingUnits(s, t)))
	return f
}

// counterDamage is what the defender deals back. It ignores the attacker's
// position.
func counterDamage(s *GameState, u *MilitaryUnit) float64 {
	dmg := float64(u.Damage)
	dmg *= healthFactor(u)
	dmg *= 1 + attackXPBonus*float64(u.Experience)
	dmg *= weatherMod(s.Weather)
	return dmg
}

// supportingUnits counts neighbors of t owned by t's owner that hold a unit.
func supportingUnits(s *GameState, t *Territory) int {
	n := 0
	for _, id := range t.Adjacent {
		adj := s.Territory(id)
		if adj != nil && adj.IsOwnedBy(t.Owner) && adj.HasUnit() {
			n++
		}
	}
	return n
}

// ComputeCombat predicts the outcome of an attack without changing s.
func ComputeCombat(s *GameState, from, to TerritoryID) CombatResult {
	origin := s.Territory(from)
	target := s.Territory(to)
	if origin == nil || target == nil {
		return CombatResult{Message: "territory does not exist"}
	}
	if !maps.IsAdjacent(origin.Coord, target.Coord) {
		return CombatResult{Message: "territories are not adjacent"}
	}
	attacker := s.Unit(origin.UnitID)
	if attacker == nil {
		return CombatResult{Message: "no attacking unit"}
	}
	defender := s.Unit(target.UnitID)
	if defender == nil {
		return CombatResult{Message: "no defending unit"}
	}

	// Both sides strike with their pre-combat health.
	dealt := int(math.Round(attackDamage(s, attacker, origin) * defenseFactor(s, defender, target)))
	taken := int(math.Round(counterDamage(s, defender)))

	defLeft := max(0, defender.Health-dealt)
	atkLeft := max(0, attacker.Health-taken)

	r := CombatResult{
		Success:           true,
		AttackDamage:      dealt,
		CounterDamage:     taken,
		DefenderLosses:    defender.Health - defLeft,
		AttackerLosses:    attacker.Health - atkLeft,
		DefenderRemaining: defLeft,
		AttackerRemaining: atkLeft,
		DefenderDestroyed: defLeft == 0,
		AttackerDestroyed: atkLeft == 0,
	}
	r.TerritoryCapture = r.DefenderDestroyed

	switch {
	case r.DefenderDestroyed && r.AttackerDestroyed:
		r.Message = fmt.Sprintf("Both units destroyed; territory %d captured", to)
	case r.DefenderDestroyed:
		r.Message = fmt.Sprintf("Defender destroyed; territory %d captured", to)
	case r.AttackerDestroyed:
		r.Message = fmt.Sprintf("Attacker destroyed; territory %d holds", to)
	default:
		r.Message = fmt.Sprintf("Dealt %d damage, took %d", dealt, taken)
	}
	return r
}

// ResolveCombat computes the battle and applies it to s: damage, removal of
// destroyed units, capture, experience and the attacker's moved flag. The
// attacking unit never leaves its origin.
func ResolveCombat(s *GameState, from, to TerritoryID) CombatResult {
	r := ComputeCombat(s, from, to)
	if !r.Success {
		return r
	}

	origin := s.Territory(from)
	target := s.Territory(to)
	attacker := s.Unit(origin.UnitID)
	defender := s.Unit(target.UnitID)

	attacker.Health = r.AttackerRemaining
	defender.Health = r.DefenderRemaining
	attacker.HasMoved = true

	if r.DefenderDestroyed {
		s.removeUnit(defender.ID)
	} else {
		defender.GainExperience(s.Rules.MaxExperience)
	}
	if r.AttackerDestroyed {
		s.removeUnit(attacker.ID)
	} else {
		attacker.GainExperience(s.Rules.MaxExperience)
	}

	if r.TerritoryCapture {
		target.Owner = origin.Owner
		target.Building = BuildingNone
		target.UnitID = NoUnit
	}

	s.refreshDerived()
	return r
}
