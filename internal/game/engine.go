package game

import "fmt"

// Apply validates a and returns the next state. The input state is never
// modified. The returned state has Version+1 and exactly one new Update.
// For attacks against a defended territory the combat result is returned
// as well.
func Apply(s *GameState, a Action) (*GameState, *CombatResult, error) {
	if err := checkReferences(s, a); err != nil {
		return nil, nil, err
	}
	if err := Validate(s, a); err != nil {
		return nil, nil, err
	}

	next := s.Clone()
	actor := next.Player(a.PlayerID)

	var (
		msg     string
		details []string
		combat  *CombatResult
	)
	switch pl := a.Payload.(type) {
	case ClaimPayload:
		msg = applyClaim(next, actor, pl)
	case BuildPayload:
		msg = applyBuild(next, actor, pl)
	case RecruitPayload:
		msg = applyRecruit(next, actor, pl)
	case AttackPayload:
		msg, combat = applyAttack(next, actor, pl)
	case ExpandPayload:
		msg = applyExpand(next, actor, pl)
	case EndTurnPayload:
		pm := NewPhaseManager(next)
		if next.Phase == PhaseSetup {
			details = pm.EndSetupTurn()
		} else {
			details = pm.AdvanceTurn()
		}
		msg = fmt.Sprintf("%s ended their turn", actor.Name)
	case EndPhasePayload:
		details = NewPhaseManager(next).AdvancePhase()
		msg = fmt.Sprintf("%s ended the phase", actor.Name)
	default:
		return nil, nil, reject(a, ErrMalformedAction)
	}
	if combat != nil {
		details = append(details, combat.Message)
	}

	next.refreshDerived()
	if winner, kind := CheckVictory(next); winner != NoPlayer {
		next.Winner = winner
		next.Victory = kind
		next.Phase = PhaseCompleted
		details = append(details, fmt.Sprintf("%s wins by %s", next.Players[winner].Name, kind))
	}

	next.Version = s.Version + 1
	next.Updates = append(next.Updates, Update{
		Type:      string(a.Type()),
		Message:   msg,
		Timestamp: a.Timestamp,
		PlayerID:  a.PlayerID,
		Turn:      next.Turn,
		Phase:     next.Phase,
		Details:   details,
	})
	return next, combat, nil
}

// checkReferences verifies that the territories an action names point at
// units and players that exist.
func checkReferences(s *GameState, a Action) error {
	var ids []TerritoryID
	switch pl := a.Payload.(type) {
	case ClaimPayload:
		ids = []TerritoryID{pl.TerritoryID}
	case BuildPayload:
		ids = []TerritoryID{pl.TerritoryID}
	case RecruitPayload:
		ids = []TerritoryID{pl.TerritoryID}
	case AttackPayload:
		ids = []TerritoryID{pl.FromTerritoryID, pl.ToTerritoryID}
	case ExpandPayload:
		ids = []TerritoryID{pl.TerritoryID}
	}
	for _, id := range ids {
		t := s.Territory(id)
		if t == nil {
			continue
		}
		if t.UnitID != NoUnit && s.Units[t.UnitID] == nil {
			return &StateIntegrityError{Entity: "unit", ID: int(t.UnitID)}
		}
		if t.Owner != NoPlayer && s.Player(t.Owner) == nil {
			return &StateIntegrityError{Entity: "player", ID: int(t.Owner)}
		}
	}
	return nil
}
