package game

import "fmt"

// canAttack checks if a player can launch the given attack.
func canAttack(s *GameState, p *Player, pl AttackPayload) error {
	if !phaseAllows(s, ActionAttack) {
		return ErrInvalidAction
	}
	switch s.Rules.AttackLimit {
	case AttackOncePerOrigin:
		if s.Actions.attackedFrom(pl.FromTerritoryID) {
			return ErrAlreadyAttacked
		}
	default:
		if s.Actions.Attack {
			return ErrAlreadyAttacked
		}
	}
	from := s.Territory(pl.FromTerritoryID)
	to := s.Territory(pl.ToTerritoryID)
	if from == nil || to == nil {
		return ErrInvalidTarget
	}
	if !from.IsOwnedBy(p.ID) {
		return ErrNotOwner
	}
	if to.IsOwnedBy(p.ID) {
		return ErrOwnTerritory
	}
	u := s.Unit(from.UnitID)
	if u == nil {
		return ErrNoUnit
	}
	if u.HasMoved {
		return ErrUnitAlreadyMoved
	}
	if !from.IsAdjacentTo(to.ID) {
		return ErrNotAdjacent
	}
	return nil
}

// AttackableTargets returns the territories the unit in from could attack.
func AttackableTargets(s *GameState, from TerritoryID) []TerritoryID {
	t := s.Territory(from)
	if t == nil || !t.HasUnit() {
		return nil
	}
	var ids []TerritoryID
	for _, id := range t.Adjacent {
		if n := s.Territory(id); n != nil && !n.IsOwnedBy(t.Owner) {
			ids = append(ids, id)
		}
	}
	return ids
}

func applyAttack(s *GameState, p *Player, pl AttackPayload) (string, *CombatResult) {
	s.Actions.Attack = true
	s.Actions.AttackedFrom = append(s.Actions.AttackedFrom, pl.FromTerritoryID)

	target := s.Territory(pl.ToTerritoryID)
	if !target.HasUnit() {
		// Undefended: ownership changes, the attacker stays at its origin.
		s.UnitAt(pl.FromTerritoryID).HasMoved = true
		target.Owner = p.ID
		target.Building = BuildingNone
		return fmt.Sprintf("%s occupied undefended territory %d", p.Name, target.ID), nil
	}

	r := ResolveCombat(s, pl.FromTerritoryID, pl.ToTerritoryID)
	return fmt.Sprintf("%s attacked territory %d from %d", p.Name, pl.ToTerritoryID, pl.FromTerritoryID), &r
}

// PreviewAttack reports whether p may attack from one territory to another
// right now and the predicted combat outcome. Undefended targets have no
// combat to predict.
func PreviewAttack(s *GameState, p PlayerID, from, to TerritoryID) (ValidationResult, CombatResult) {
	check := Check(s, NewAttack(p, from, to))
	if t := s.Territory(to); t != nil && !t.HasUnit() {
		return check, CombatResult{Message: "territory is undefended"}
	}
	return check, ComputeCombat(s, from, to)
}
