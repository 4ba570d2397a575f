package game

import "fmt"

func canBuild(s *GameState, p *Player, pl BuildPayload) error {
	if !phaseAllows(s, ActionBuild) {
		return ErrInvalidAction
	}
	if s.Actions.Build {
		return ErrAlreadyBuilt
	}
	spec, ok := BuildingCatalog[pl.Building]
	if !ok {
		return ErrUnknownBuilding
	}
	t := s.Territory(pl.TerritoryID)
	if t == nil {
		return ErrInvalidTarget
	}
	if !t.IsOwnedBy(p.ID) {
		return ErrNotOwner
	}
	if t.HasBuilding() {
		return ErrNoBuildingSlot
	}
	if !HasEnoughResources(p.Resources, spec.Cost) {
		return ErrInsufficientResources
	}
	return nil
}

func canRecruit(s *GameState, p *Player, pl RecruitPayload) error {
	if !phaseAllows(s, ActionRecruit) {
		return ErrInvalidAction
	}
	if s.Actions.Recruit {
		return ErrAlreadyRecruited
	}
	spec, ok := UnitCatalog[pl.Unit]
	if !ok {
		return ErrUnknownUnit
	}
	t := s.Territory(pl.TerritoryID)
	if t == nil {
		return ErrInvalidTarget
	}
	if !t.IsOwnedBy(p.ID) {
		return ErrNotOwner
	}
	if s.Rules.RecruitRequiresBarracks && t.Building != BuildingBarracks {
		return ErrBarracksRequired
	}
	if t.HasUnit() {
		return ErrAlreadyHasUnit
	}
	if !unitTypeFits(s, t.ID, pl.Unit) {
		return ErrTooManyUnitTypes
	}
	if !HasEnoughResources(p.Resources, spec.Cost) {
		return ErrInsufficientResources
	}
	return nil
}

// unitTypeFits reports whether adding a unit of type ut keeps the territory
// within MaxUnitTypesPerTerritory distinct types. With one unit slot per
// territory the slot check rejects first; this guard holds the mixing rule
// for boards whose units are placed outside the slot, such as stacks loaded
// from older snapshots.
func unitTypeFits(s *GameState, id TerritoryID, ut UnitType) bool {
	types := make(map[UnitType]bool)
	for _, u := range s.Units {
		if u.TerritoryID == id {
			types[u.Type] = true
		}
	}
	if types[ut] {
		return true
	}
	return len(types) < MaxUnitTypesPerTerritory
}

func canExpand(s *GameState, p *Player, pl ExpandPayload) error {
	if s.Phase == PhaseSetup || !phaseAllows(s, ActionExpand) {
		return ErrInvalidAction
	}
	if s.Actions.Expand {
		return ErrAlreadyExpanded
	}
	t := s.Territory(pl.TerritoryID)
	if t == nil {
		return ErrInvalidTarget
	}
	if !t.IsUnclaimed() {
		return ErrTerritoryOccupied
	}
	if !bordersPlayer(s, t, p.ID) {
		return ErrNotReachable
	}
	if !HasEnoughResources(p.Resources, s.Rules.ExpansionCost) {
		return ErrInsufficientResources
	}
	return nil
}

func bordersPlayer(s *GameState, t *Territory, p PlayerID) bool {
	for _, id := range t.Adjacent {
		if n := s.Territory(id); n != nil && n.IsOwnedBy(p) {
			return true
		}
	}
	return false
}

// ExpandableTerritories returns the unowned territories p could expand into,
// ignoring cost.
func ExpandableTerritories(s *GameState, p PlayerID) []TerritoryID {
	var ids []TerritoryID
	for _, t := range s.Territories {
		if t.IsUnclaimed() && bordersPlayer(s, t, p) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func applyBuild(s *GameState, p *Player, pl BuildPayload) string {
	t := s.Territory(pl.TerritoryID)
	p.Resources = SubtractResources(p.Resources, BuildingCatalog[pl.Building].Cost)
	t.Building = pl.Building
	s.Actions.Build = true
	return fmt.Sprintf("%s built a %s in territory %d", p.Name, pl.Building, t.ID)
}

func applyRecruit(s *GameState, p *Player, pl RecruitPayload) string {
	t := s.Territory(pl.TerritoryID)
	p.Resources = SubtractResources(p.Resources, UnitCatalog[pl.Unit].Cost)
	u := NewUnit(s.NextUnitID, pl.Unit, p.ID, t.ID)
	s.Units[u.ID] = u
	s.NextUnitID++
	t.UnitID = u.ID
	s.Actions.Recruit = true
	return fmt.Sprintf("%s recruited %s in territory %d", p.Name, pl.Unit, t.ID)
}

func applyExpand(s *GameState, p *Player, pl ExpandPayload) string {
	t := s.Territory(pl.TerritoryID)
	p.Resources = SubtractResources(p.Resources, s.Rules.ExpansionCost)
	t.Owner = p.ID
	s.Actions.Expand = true
	return fmt.Sprintf("%s expanded into territory %d", p.Name, t.ID)
}
