package game

// ValidationResult is the {valid, reason} form of Validate.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Check validates a and reports the result without an error value.
func Check(s *GameState, a Action) ValidationResult {
	if err := Validate(s, a); err != nil {
		return ValidationResult{Valid: false, Reason: ReasonOf(err)}
	}
	return ValidationResult{Valid: true}
}

// Validate reports whether a is legal in s. It returns nil or a
// *ValidationError and never modifies s.
func Validate(s *GameState, a Action) error {
	if a.Payload == nil {
		return reject(a, ErrMalformedAction)
	}
	if s.IsGameOver() || s.Phase == PhaseCompleted {
		return reject(a, ErrGameOver)
	}
	p := s.Player(a.PlayerID)
	if p == nil {
		return reject(a, ErrUnknownPlayer)
	}
	if p.Eliminated {
		return reject(a, ErrPlayerEliminated)
	}
	if a.PlayerID != s.CurrentPlayer {
		return reject(a, ErrNotYourTurn)
	}

	var err error
	switch pl := a.Payload.(type) {
	case ClaimPayload:
		err = canClaim(s, p, pl)
	case BuildPayload:
		err = canBuild(s, p, pl)
	case RecruitPayload:
		err = canRecruit(s, p, pl)
	case AttackPayload:
		err = canAttack(s, p, pl)
	case ExpandPayload:
		err = canExpand(s, p, pl)
	case EndTurnPayload:
		err = canEndTurn(s, p)
	case EndPhasePayload:
		err = canEndPhase(s)
	default:
		err = ErrMalformedAction
	}
	if err != nil {
		return reject(a, err)
	}
	return nil
}

// phaseAllows reports whether an action type may be taken in the current
// phase under the game's mode.
func phaseAllows(s *GameState, t ActionType) bool {
	if s.Rules.Mode == ModeSimple {
		switch t {
		case ActionBuild, ActionRecruit, ActionAttack, ActionExpand:
			return s.Phase == PhasePlaying
		}
		return false
	}
	switch t {
	case ActionBuild:
		return s.Phase == PhaseBuilding
	case ActionExpand:
		if s.Rules.RequireExpandInBuilding {
			return s.Phase == PhaseBuilding
		}
		return s.Phase == PhaseBuilding || s.Phase == PhaseRecruitment || s.Phase == PhaseCombat
	case ActionRecruit:
		return s.Phase == PhaseRecruitment
	case ActionAttack:
		return s.Phase == PhaseCombat
	}
	return false
}

func canEndTurn(s *GameState, p *Player) error {
	if s.Phase == PhaseSetup && !p.HasClaimed() && s.UnclaimedCount() > 0 {
		return ErrClaimRequired
	}
	if expandPending(s) {
		return ErrExpandRequired
	}
	return nil
}

// expandPending reports whether the strict rule still demands an expansion
// before the building phase can be left.
func expandPending(s *GameState) bool {
	return s.Rules.Mode != ModeSimple && s.Phase == PhaseBuilding &&
		s.Rules.RequireExpandInBuilding && !s.Actions.Expand
}

func canEndPhase(s *GameState) error {
	if s.Phase == PhaseSetup || s.Rules.Mode == ModeSimple || s.Phase == PhasePlaying {
		return ErrInvalidAction
	}
	if expandPending(s) {
		return ErrExpandRequired
	}
	return nil
}
