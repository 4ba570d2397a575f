package client

import (
	"context"
	"fmt"

	"empires-legacy/internal/game"
	"empires-legacy/internal/protocol"
)

func call[T any](ctx context.Context, c *NetworkClient, msgType, want protocol.MessageType, payload interface{}) (*T, error) {
	resp, err := c.Request(ctx, msgType, payload)
	if err != nil {
		return nil, err
	}
	if resp.Type != want {
		return nil, fmt.Errorf("expected %s reply, got %s", want, resp.Type)
	}
	var out T
	if err := resp.ParsePayload(&out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", resp.Type, err)
	}
	return &out, nil
}

// CreateGame starts a new game and follows it.
func (c *NetworkClient) CreateGame(ctx context.Context, p protocol.CreateGamePayload) (*protocol.GameCreatedPayload, error) {
	return call[protocol.GameCreatedPayload](ctx, c, protocol.TypeCreateGame, protocol.TypeGameCreated, p)
}

// JoinGame follows a game, optionally bound to one seat.
func (c *NetworkClient) JoinGame(ctx context.Context, p protocol.JoinGamePayload) (*protocol.JoinedGamePayload, error) {
	return call[protocol.JoinedGamePayload](ctx, c, protocol.TypeJoinGame, protocol.TypeJoinedGame, p)
}

// ListGames lists the games stored on the server.
func (c *NetworkClient) ListGames(ctx context.Context) ([]protocol.GameSummary, error) {
	out, err := call[protocol.GameListPayload](ctx, c, protocol.TypeListGames, protocol.TypeGameList, nil)
	if err != nil {
		return nil, err
	}
	return out.Games, nil
}

// Submit sends an action to the followed game. A rejected action is not
// an error: check Success and Reason on the result.
func (c *NetworkClient) Submit(ctx context.Context, a game.Action) (*protocol.ActionResultPayload, error) {
	return call[protocol.ActionResultPayload](ctx, c, protocol.TypeSubmitAction, protocol.TypeActionResult,
		protocol.SubmitActionPayload{Action: a})
}

// State fetches the current snapshot of the followed game.
func (c *NetworkClient) State(ctx context.Context) (*game.GameState, error) {
	out, err := call[protocol.GameStatePayload](ctx, c, protocol.TypeGetState, protocol.TypeGameState, nil)
	if err != nil {
		return nil, err
	}
	return out.State, nil
}

// History fetches events recorded after a version.
func (c *NetworkClient) History(ctx context.Context, since int64) ([]protocol.HistoryEntry, error) {
	out, err := call[protocol.GameHistoryPayload](ctx, c, protocol.TypeGetHistory, protocol.TypeGameHistory,
		protocol.GetHistoryPayload{SinceVersion: since})
	if err != nil {
		return nil, err
	}
	return out.Events, nil
}

// PreviewAttack asks the server to predict a battle.
func (c *NetworkClient) PreviewAttack(ctx context.Context, p game.PlayerID, from, to game.TerritoryID) (*protocol.AttackPreviewResultPayload, error) {
	return call[protocol.AttackPreviewResultPayload](ctx, c, protocol.TypeAttackPreview, protocol.TypeAttackPreview,
		protocol.AttackPreviewPayload{PlayerID: p, FromTerritoryID: from, ToTerritoryID: to})
}

// Undo steps the followed game back one action.
func (c *NetworkClient) Undo(ctx context.Context) (*protocol.ActionResultPayload, error) {
	return call[protocol.ActionResultPayload](ctx, c, protocol.TypeUndo, protocol.TypeActionResult, nil)
}

// Redo reapplies the last undone action.
func (c *NetworkClient) Redo(ctx context.Context) (*protocol.ActionResultPayload, error) {
	return call[protocol.ActionResultPayload](ctx, c, protocol.TypeRedo, protocol.TypeActionResult, nil)
}
