package game

import "fmt"

// Income returns what a player's land produces in one collection, before
// upkeep.
func Income(s *GameState, p PlayerID) Resources {
	var total Resources
	for _, t := range s.Territories {
		if !t.IsOwnedBy(p) {
			continue
		}
		total = AddResources(total, t.Yield)
		if t.Terrain == TerrainCapital {
			total.Gold += s.Rules.CapitalGoldBonus
		}
		if !t.HasBuilding() {
			continue
		}
		total = AddResources(total, BuildingCatalog[t.Building].Yield)
		if t.Building == BuildingLumberMill {
			total.Wood += lumberMillBonus(s.Rules, t)
		}
	}
	return total
}

func lumberMillBonus(r Rules, t *Territory) int {
	if r.LumberMillMode == LumberMillPercent {
		return t.Yield.Wood * r.LumberMillWoodPercent / 100
	}
	return r.LumberMillFlatWood
}

// Upkeep returns the food a player's units consume per collection.
func Upkeep(s *GameState, p PlayerID) int {
	food := 0
	for _, u := range s.Units {
		if u.Owner == p {
			food += UnitCatalog[u.Type].Upkeep
		}
	}
	return food
}

// collectResources pays out income minus upkeep to p, at most once per
// turn. Starvation damages every unit of the player. It returns the event
// details, or nil if p had already collected this turn.
func collectResources(s *GameState, p PlayerID) []string {
	player := s.Player(p)
	if player == nil || player.Eliminated || s.Collection.has(s.Turn, p) {
		return nil
	}
	if s.Collection.Turn != s.Turn {
		s.Collection = Collection{Turn: s.Turn, Players: []PlayerID{}}
	}
	s.Collection.Players = append(s.Collection.Players, p)

	income := Income(s, p)
	upkeep := Upkeep(s, p)
	player.Resources = AddResources(player.Resources, income)
	player.Resources.Food -= upkeep

	details := []string{fmt.Sprintf("%s collected %d gold, %d wood, %d stone, %d food; upkeep %d food",
		player.Name, income.Gold, income.Wood, income.Stone, income.Food, upkeep)}

	var starving bool
	player.Resources, starving = ClampFood(player.Resources)
	if starving {
		details = append(details, starve(s, p)...)
	}
	return details
}

// starve applies starvation damage to every unit of p and removes the dead.
func starve(s *GameState, p PlayerID) []string {
	details := []string{fmt.Sprintf("%s cannot feed their army", s.Player(p).Name)}
	for _, id := range sortedUnitIDs(s) {
		u := s.Units[id]
		if u.Owner != p {
			continue
		}
		u.TakeDamage(s.Rules.StarvationDamage)
		if u.IsDead() {
			details = append(details, fmt.Sprintf("%s unit %d starved in territory %d", u.Type, u.ID, u.TerritoryID))
			s.removeUnit(u.ID)
		}
	}
	return details
}
