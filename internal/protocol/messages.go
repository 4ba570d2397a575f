// Package protocol defines the network message types for client-server communication.
package protocol

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"empires-legacy/internal/game"
)

// MessageType identifies the type of message.
type MessageType string

// Client message types
const (
	TypeCreateGame    MessageType = "create_game"
	TypeJoinGame      MessageType = "join_game"
	TypeSubmitAction  MessageType = "submit_action"
	TypeGetState      MessageType = "get_state"
	TypeGetHistory    MessageType = "get_history"
	TypeAttackPreview MessageType = "attack_preview"
	TypeUndo          MessageType = "undo"
	TypeRedo          MessageType = "redo"
	TypeListGames     MessageType = "list_games"
)

// Server message types
const (
	TypeGameCreated  MessageType = "game_created"
	TypeJoinedGame   MessageType = "joined_game"
	TypeActionResult MessageType = "action_result"
	TypeGameState    MessageType = "game_state"
	TypeGameHistory  MessageType = "game_history"
	TypeGameList     MessageType = "game_list"
)

// System message types
const (
	TypeWelcome MessageType = "welcome"
	TypeError   MessageType = "error"
	TypePing    MessageType = "ping"
	TypePong    MessageType = "pong"
)

// Message is the envelope for all messages.
type Message struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewMessage creates a new message with the given type and payload.
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	m := &Message{
		Type:      msgType,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		m.Payload = data
	}
	return m, nil
}

// Reply creates a response that carries the request's id so the caller
// can match it.
func Reply(req *Message, msgType MessageType, payload interface{}) (*Message, error) {
	m, err := NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}
	if req != nil && req.ID != "" {
		m.ID = req.ID
	}
	return m, nil
}

// ParsePayload unmarshals the payload into the given type.
func (m *Message) ParsePayload(v interface{}) error {
	if len(m.Payload) == 0 {
		return errors.New("message has no payload")
	}
	return json.Unmarshal(m.Payload, v)
}

// ErrorCode represents an error type.
type ErrorCode string

const (
	ErrCodeInvalidAction         ErrorCode = "invalid_action"
	ErrCodeMalformedMessage      ErrorCode = "malformed_message"
	ErrCodeUnknownMessage        ErrorCode = "unknown_message"
	ErrCodeNotYourTurn           ErrorCode = "not_your_turn"
	ErrCodeNotYourSeat           ErrorCode = "not_your_seat"
	ErrCodeInvalidTarget         ErrorCode = "invalid_target"
	ErrCodeInsufficientResources ErrorCode = "insufficient_resources"
	ErrCodeAlreadyHasUnit        ErrorCode = "already_has_unit"
	ErrCodeCannotReach           ErrorCode = "cannot_reach"
	ErrCodeGameOver              ErrorCode = "game_over"
	ErrCodeGameNotFound          ErrorCode = "game_not_found"
	ErrCodeNotInGame             ErrorCode = "not_in_game"
	ErrCodeNothingToUndo         ErrorCode = "nothing_to_undo"
	ErrCodeRateLimited           ErrorCode = "rate_limited"
	ErrCodeInternalError         ErrorCode = "internal_error"
)

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// CodeFor maps an engine error to the code sent to clients.
func CodeFor(err error) ErrorCode {
	var integrity *game.StateIntegrityError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &integrity):
		return ErrCodeInternalError
	case errors.Is(err, game.ErrNotYourTurn):
		return ErrCodeNotYourTurn
	case errors.Is(err, game.ErrInsufficientResources):
		return ErrCodeInsufficientResources
	case errors.Is(err, game.ErrAlreadyHasUnit):
		return ErrCodeAlreadyHasUnit
	case errors.Is(err, game.ErrNotAdjacent), errors.Is(err, game.ErrNotReachable):
		return ErrCodeCannotReach
	case errors.Is(err, game.ErrGameOver):
		return ErrCodeGameOver
	case errors.Is(err, game.ErrMalformedAction):
		return ErrCodeMalformedMessage
	case errors.Is(err, game.ErrInvalidTarget), errors.Is(err, game.ErrTerritoryOccupied),
		errors.Is(err, game.ErrNotOwner), errors.Is(err, game.ErrOwnTerritory):
		return ErrCodeInvalidTarget
	default:
		return ErrCodeInvalidAction
	}
}
