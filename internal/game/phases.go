package game

import "fmt"

// PhaseManager handles phase and turn transitions on a state that the
// engine has already cloned.
type PhaseManager struct {
	State *GameState
}

// NewPhaseManager creates a new phase manager.
func NewPhaseManager(state *GameState) *PhaseManager {
	return &PhaseManager{State: state}
}

// playPhase is the first phase of a turn after setup.
func (pm *PhaseManager) playPhase() Phase {
	if pm.State.Rules.Mode == ModeSimple {
		return PhasePlaying
	}
	return PhaseBuilding
}

// nextPhase returns the phase after p within a phased turn.
func nextPhase(p Phase) Phase {
	switch p {
	case PhaseBuilding:
		return PhaseRecruitment
	case PhaseRecruitment:
		return PhaseCombat
	case PhaseCombat:
		return PhaseEnd
	default:
		return PhaseBuilding
	}
}

// ResetActions clears every action flag.
func (pm *PhaseManager) ResetActions() {
	pm.State.Actions = ActionFlags{AttackedFrom: []TerritoryID{}}
}

// EndSetupTurn passes the claim to the next player. After the last player
// the game moves to the first play phase and player 0 collects.
func (pm *PhaseManager) EndSetupTurn() []string {
	s := pm.State
	next := int(s.CurrentPlayer) + 1
	if next < len(s.Players) {
		s.CurrentPlayer = PlayerID(next)
		return []string{fmt.Sprintf("%s to claim", s.Players[next].Name)}
	}

	s.Phase = pm.playPhase()
	s.Turn = 1
	s.CurrentPlayer = 0
	pm.ResetActions()
	s.refreshDerived()

	details := []string{fmt.Sprintf("Setup complete, %s phase begins", s.Phase)}
	if p := s.Player(0); p != nil && p.Eliminated {
		// A player without a claim is out; hand the turn to the first one left.
		s.CurrentPlayer = pm.nextActive(0, false)
	}
	return append(details, collectResources(s, s.CurrentPlayer)...)
}

// AdvancePhase steps to the next phase. Ending the end phase ends the turn.
func (pm *PhaseManager) AdvancePhase() []string {
	s := pm.State
	if s.Phase == PhaseEnd {
		return pm.AdvanceTurn()
	}
	s.Phase = nextPhase(s.Phase)
	if s.Rules.ActionScope == ScopePerPhase {
		pm.ResetActions()
	}
	return []string{fmt.Sprintf("%s phase begins", s.Phase)}
}

// AdvanceTurn passes play to the next active player, increments the turn
// when the rotation wraps and collects for the new player.
func (pm *PhaseManager) AdvanceTurn() []string {
	s := pm.State
	start := s.CurrentPlayer
	next := pm.nextActive(start, true)
	if next <= start {
		s.Turn++
		if n := s.Rules.NightEveryNthTurn; n > 0 {
			if s.Turn%n == 0 {
				s.TimeOfDay = Night
			} else {
				s.TimeOfDay = Day
			}
		}
	}
	s.CurrentPlayer = next
	s.Phase = pm.playPhase()
	pm.ResetActions()
	for _, u := range s.Units {
		u.HasMoved = false
	}

	details := []string{fmt.Sprintf("Turn %d: %s to play", s.Turn, s.Players[next].Name)}
	if s.TimeOfDay == Night {
		details = append(details, "Night falls")
	}
	return append(details, collectResources(s, next)...)
}

// nextActive returns the first non-eliminated player after from, in turn
// order. With skipSelf false, from itself is considered first.
func (pm *PhaseManager) nextActive(from PlayerID, skipSelf bool) PlayerID {
	s := pm.State
	n := len(s.Players)
	offset := 1
	if !skipSelf {
		offset = 0
	}
	for i := 0; i < n; i++ {
		id := PlayerID((int(from) + offset + i) % n)
		if !s.Players[id].Eliminated {
			return id
		}
	}
	return from
}
