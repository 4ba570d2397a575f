package protocol

import (
	"empires-legacy/internal/game"
)

// ==================== System Payloads ====================

// WelcomePayload is sent when a connection is established.
type WelcomePayload struct {
	ConnectionID string `json:"connectionId"`
	Version      string `json:"version"`
}

// ==================== Lobby Payloads ====================

// CreateGamePayload is sent to create a new game.
type CreateGamePayload struct {
	Name        string         `json:"name,omitempty"`
	Players     int            `json:"players"`
	PlayerNames []string       `json:"playerNames,omitempty"`
	BoardSize   game.BoardSize `json:"boardSize,omitempty"`
	Weather     game.Weather   `json:"weather,omitempty"`
	Seed        int64          `json:"seed,omitempty"` // zero picks a random seed
}

// GameCreatedPayload is the response when a game is created.
type GameCreatedPayload struct {
	GameID   string          `json:"gameId"`
	JoinCode string          `json:"joinCode"`
	State    *game.GameState `json:"state"`
}

// JoinGamePayload is sent to follow a game. Seat binds the connection to
// one player; without it the connection may act for every player.
type JoinGamePayload struct {
	GameID   string         `json:"gameId,omitempty"`
	JoinCode string         `json:"joinCode,omitempty"`
	Seat     *game.PlayerID `json:"seat,omitempty"`
}

// JoinedGamePayload is the response when successfully joining a game.
type JoinedGamePayload struct {
	GameID   string          `json:"gameId"`
	JoinCode string          `json:"joinCode"`
	Seat     *game.PlayerID  `json:"seat,omitempty"`
	State    *game.GameState `json:"state"`
}

// GameSummary is one entry of a game listing.
type GameSummary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	JoinCode    string           `json:"joinCode"`
	Status      string           `json:"status"`
	PlayerCount int              `json:"playerCount"`
	BoardSize   game.BoardSize   `json:"boardSize"`
	Version     int64            `json:"version"`
	Winner      game.PlayerID    `json:"winner"`
	Victory     game.VictoryKind `json:"victory,omitempty"`
	CreatedAt   int64            `json:"createdAt"`
}

// GameListPayload lists games.
type GameListPayload struct {
	Games []GameSummary `json:"games"`
}

// ==================== Game Payloads ====================

// GameRef names the game a request is about.
type GameRef struct {
	GameID string `json:"gameId"`
}

// SubmitActionPayload carries one engine action.
type SubmitActionPayload struct {
	GameID string      `json:"gameId"`
	Action game.Action `json:"action"`
}

// ActionResultPayload reports the outcome of a submitted action.
type ActionResultPayload struct {
	Success bool               `json:"success"`
	Action  game.ActionType    `json:"action"`
	Reason  string             `json:"reason,omitempty"`
	Code    ErrorCode          `json:"code,omitempty"`
	Version int64              `json:"version"`
	Combat  *game.CombatResult `json:"combat,omitempty"`
}

// GameStatePayload carries a full snapshot.
type GameStatePayload struct {
	State *game.GameState `json:"state"`
}

// GetHistoryPayload requests history after a version.
type GetHistoryPayload struct {
	GameID       string `json:"gameId"`
	SinceVersion int64  `json:"sinceVersion,omitempty"`
}

// HistoryEntry is one recorded game event.
type HistoryEntry struct {
	Version  int64         `json:"version"`
	Turn     int           `json:"turn"`
	Phase    game.Phase    `json:"phase"`
	PlayerID game.PlayerID `json:"playerId"`
	Type     string        `json:"type"`
	Message  string        `json:"message"`
	Details  []string      `json:"details,omitempty"`
}

// GameHistoryPayload returns history entries in version order.
type GameHistoryPayload struct {
	GameID string         `json:"gameId"`
	Events []HistoryEntry `json:"events"`
}

// AttackPreviewPayload asks for a battle prediction.
type AttackPreviewPayload struct {
	GameID          string           `json:"gameId"`
	PlayerID        game.PlayerID    `json:"playerId"`
	FromTerritoryID game.TerritoryID `json:"fromTerritoryId"`
	ToTerritoryID   game.TerritoryID `json:"toTerritoryId"`
}

// AttackPreviewResultPayload is the predicted outcome. Result is absent
// when the attack would be rejected.
type AttackPreviewResultPayload struct {
	Valid  bool               `json:"valid"`
	Reason string             `json:"reason,omitempty"`
	Result *game.CombatResult `json:"result,omitempty"`
}
