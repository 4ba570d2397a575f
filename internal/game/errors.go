package game

import (
	"errors"
	"fmt"
)

// Rejection reasons. Validation failures wrap one of these so callers can
// match with errors.Is and still show the text to the player.
var (
	ErrNotYourTurn           = errors.New("not your turn")
	ErrInvalidAction         = errors.New("invalid action for current phase")
	ErrMalformedAction       = errors.New("malformed action")
	ErrUnknownPlayer         = errors.New("unknown player")
	ErrPlayerEliminated      = errors.New("player has been eliminated")
	ErrGameOver              = errors.New("game is over")
	ErrInvalidTarget         = errors.New("invalid target")
	ErrTerritoryOccupied     = errors.New("territory already claimed")
	ErrAlreadyClaimed        = errors.New("already claimed a territory during setup")
	ErrClaimRequired         = errors.New("claim a territory before ending your turn")
	ErrNotOwner              = errors.New("territory is not yours")
	ErrOwnTerritory          = errors.New("cannot attack your own territory")
	ErrNoBuildingSlot        = errors.New("no free building slot")
	ErrUnknownBuilding       = errors.New("unknown building type")
	ErrUnknownUnit           = errors.New("unknown unit type")
	ErrBarracksRequired      = errors.New("territory needs a barracks")
	ErrAlreadyHasUnit        = errors.New("territory already has a unit")
	ErrTooManyUnitTypes      = errors.New("territory cannot hold another unit type")
	ErrNoUnit                = errors.New("no unit in origin territory")
	ErrUnitAlreadyMoved      = errors.New("unit has already moved this turn")
	ErrNotAdjacent           = errors.New("territories must be adjacent")
	ErrNotReachable          = errors.New("territory is not adjacent to your land")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrAlreadyBuilt          = errors.New("already performed build this turn")
	ErrAlreadyRecruited      = errors.New("already performed recruit this turn")
	ErrAlreadyExpanded       = errors.New("already performed expand this turn")
	ErrAlreadyAttacked       = errors.New("already performed attack this turn")
	ErrExpandRequired        = errors.New("expand before ending the building phase")
)

// ValidationError describes why an action was rejected. It is an expected
// outcome, not a fault.
type ValidationError struct {
	Action Action
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s by player %d: %v", e.Action.Type(), e.Action.PlayerID, e.Err)
}

// Unwrap returns the rejection reason.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Reason returns the short, user-facing rejection text.
func (e *ValidationError) Reason() string {
	return e.Err.Error()
}

func reject(a Action, err error) error {
	return &ValidationError{Action: a, Err: err}
}

// StateIntegrityError reports a reference to an entity that does not exist
// in the snapshot. It indicates a bug or a corrupted snapshot.
type StateIntegrityError struct {
	Entity string
	ID     int
}

func (e *StateIntegrityError) Error() string {
	return fmt.Sprintf("state integrity: %s %d does not exist", e.Entity, e.ID)
}

// ReasonOf extracts the user-facing reason from an error returned by
// Validate or Apply.
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason()
	}
	return err.Error()
}
