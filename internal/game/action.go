package game

import (
	"encoding/json"
	"fmt"
)

// ActionType identifies the kind of action a player submits.
type ActionType string

const (
	ActionClaimTerritory ActionType = "CLAIM_TERRITORY"
	ActionBuild          ActionType = "BUILD"
	ActionRecruit        ActionType = "RECRUIT"
	ActionAttack         ActionType = "ATTACK"
	ActionExpand         ActionType = "EXPAND"
	ActionEndTurn        ActionType = "END_TURN"
	ActionEndPhase       ActionType = "END_PHASE"
)

// Payload is the type-specific body of an action. The set of payloads is
// closed; Apply and Validate switch over every implementation.
type Payload interface {
	actionType() ActionType
}

// ClaimPayload claims an unowned territory during setup.
type ClaimPayload struct {
	TerritoryID TerritoryID `json:"territoryId"`
}

// BuildPayload places a building in an owned territory.
type BuildPayload struct {
	TerritoryID TerritoryID  `json:"territoryId"`
	Building    BuildingType `json:"building"`
}

// RecruitPayload trains a unit in an owned territory.
type RecruitPayload struct {
	TerritoryID TerritoryID `json:"territoryId"`
	Unit        UnitType    `json:"unit"`
}

// AttackPayload sends the unit in From against To.
type AttackPayload struct {
	FromTerritoryID TerritoryID `json:"fromTerritoryId"`
	ToTerritoryID   TerritoryID `json:"toTerritoryId"`
}

// ExpandPayload buys an unowned territory next to the player's land.
type ExpandPayload struct {
	TerritoryID TerritoryID `json:"territoryId"`
}

// EndTurnPayload passes play to the next player.
type EndTurnPayload struct{}

// EndPhasePayload advances to the next phase of the turn.
type EndPhasePayload struct{}

func (ClaimPayload) actionType() ActionType    { return ActionClaimTerritory }
func (BuildPayload) actionType() ActionType    { return ActionBuild }
func (RecruitPayload) actionType() ActionType  { return ActionRecruit }
func (AttackPayload) actionType() ActionType   { return ActionAttack }
func (ExpandPayload) actionType() ActionType   { return ActionExpand }
func (EndTurnPayload) actionType() ActionType  { return ActionEndTurn }
func (EndPhasePayload) actionType() ActionType { return ActionEndPhase }

// Action is a player's request to change the game state. Timestamp is
// milliseconds since the epoch, supplied by the caller.
type Action struct {
	PlayerID  PlayerID
	Timestamp int64
	Payload   Payload
}

// Type returns the action type, or "" if the payload is missing.
func (a Action) Type() ActionType {
	if a.Payload == nil {
		return ""
	}
	return a.Payload.actionType()
}

// At returns a copy of the action stamped with ts.
func (a Action) At(ts int64) Action {
	a.Timestamp = ts
	return a
}

// Action constructors.

func NewClaim(p PlayerID, t TerritoryID) Action {
	return Action{PlayerID: p, Payload: ClaimPayload{TerritoryID: t}}
}

func NewBuild(p PlayerID, t TerritoryID, b BuildingType) Action {
	return Action{PlayerID: p, Payload: BuildPayload{TerritoryID: t, Building: b}}
}

func NewRecruit(p PlayerID, t TerritoryID, u UnitType) Action {
	return Action{PlayerID: p, Payload: RecruitPayload{TerritoryID: t, Unit: u}}
}

func NewAttack(p PlayerID, from, to TerritoryID) Action {
	return Action{PlayerID: p, Payload: AttackPayload{FromTerritoryID: from, ToTerritoryID: to}}
}

func NewExpand(p PlayerID, t TerritoryID) Action {
	return Action{PlayerID: p, Payload: ExpandPayload{TerritoryID: t}}
}

func NewEndTurn(p PlayerID) Action {
	return Action{PlayerID: p, Payload: EndTurnPayload{}}
}

func NewEndPhase(p PlayerID) Action {
	return Action{PlayerID: p, Payload: EndPhasePayload{}}
}

type actionJSON struct {
	Type      ActionType      `json:"type"`
	PlayerID  PlayerID        `json:"playerId"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// MarshalJSON encodes the action as {type, playerId, timestamp, payload}.
func (a Action) MarshalJSON() ([]byte, error) {
	out := actionJSON{Type: a.Type(), PlayerID: a.PlayerID, Timestamp: a.Timestamp}
	switch a.Payload.(type) {
	case nil, EndTurnPayload, EndPhasePayload:
	default:
		raw, err := json.Marshal(a.Payload)
		if err != nil {
			return nil, err
		}
		out.Payload = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the payload according to the type field.
func (a *Action) UnmarshalJSON(data []byte) error {
	var in actionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var payload Payload
	var err error
	switch in.Type {
	case ActionClaimTerritory:
		payload, err = decodePayload[ClaimPayload](in.Payload)
	case ActionBuild:
		payload, err = decodePayload[BuildPayload](in.Payload)
	case ActionRecruit:
		payload, err = decodePayload[RecruitPayload](in.Payload)
	case ActionAttack:
		payload, err = decodePayload[AttackPayload](in.Payload)
	case ActionExpand:
		payload, err = decodePayload[ExpandPayload](in.Payload)
	case ActionEndTurn:
		payload = EndTurnPayload{}
	case ActionEndPhase:
		payload = EndPhasePayload{}
	default:
		return fmt.Errorf("%w: unknown action type %q", ErrMalformedAction, in.Type)
	}
	if err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrMalformedAction, in.Type, err)
	}

	*a = Action{PlayerID: in.PlayerID, Timestamp: in.Timestamp, Payload: payload}
	return nil
}

func decodePayload[T Payload](raw json.RawMessage) (T, error) {
	var p T
	if len(raw) == 0 {
		return p, fmt.Errorf("missing payload")
	}
	err := json.Unmarshal(raw, &p)
	return p, err
}
