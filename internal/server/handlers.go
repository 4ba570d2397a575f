package server

import (
	"context"
	"time"

	"empires-legacy/internal/database"
	"empires-legacy/internal/game"
	"empires-legacy/internal/protocol"
	"empires-legacy/internal/store"
)

const requestTimeout = 5 * time.Second

// handle routes a message to the appropriate handler.
func (s *Server) handle(c *Client, msg *protocol.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var err error
	switch msg.Type {
	case protocol.TypeCreateGame:
		err = s.handleCreateGame(ctx, c, msg)
	case protocol.TypeJoinGame:
		err = s.handleJoinGame(ctx, c, msg)
	case protocol.TypeListGames:
		err = s.handleListGamesMessage(ctx, c, msg)
	case protocol.TypeSubmitAction:
		err = s.handleSubmitAction(ctx, c, msg)
	case protocol.TypeGetState:
		err = s.handleGetState(ctx, c, msg)
	case protocol.TypeGetHistory:
		err = s.handleGetHistory(ctx, c, msg)
	case protocol.TypeAttackPreview:
		err = s.handleAttackPreview(ctx, c, msg)
	case protocol.TypeUndo, protocol.TypeRedo:
		err = s.handleHistoryMove(ctx, c, msg)
	case protocol.TypePing:
		err = s.reply(c, msg, protocol.TypePong, nil)
	default:
		err = fail(protocol.ErrCodeUnknownMessage, "unknown message type %q", msg.Type)
	}

	if err != nil {
		code, expected := errorCode(err)
		if !expected {
			c.log.Error().Err(err).Str("type", string(msg.Type)).Msg("Request failed")
		}
		s.sendError(c, msg, code, err.Error())
	}
}

func (s *Server) reply(c *Client, req *protocol.Message, msgType protocol.MessageType, payload interface{}) error {
	resp, err := protocol.Reply(req, msgType, payload)
	if err != nil {
		return err
	}
	c.Send(resp)
	return nil
}

func (s *Server) sendError(c *Client, req *protocol.Message, code protocol.ErrorCode, message string) {
	resp, err := protocol.Reply(req, protocol.TypeError, protocol.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	c.Send(resp)
}

func parse(msg *protocol.Message, v interface{}) error {
	if err := msg.ParsePayload(v); err != nil {
		return fail(protocol.ErrCodeMalformedMessage, "invalid %s payload: %v", msg.Type, err)
	}
	return nil
}

// followed resolves the game a request targets: the named one, or the
// game the client follows.
func (s *Server) followed(ctx context.Context, c *Client, gameID string) (*session, error) {
	current, _ := c.Game()
	if gameID == "" {
		gameID = current
	}
	if gameID == "" {
		return nil, fail(protocol.ErrCodeNotInGame, "join a game first")
	}
	return s.sessions.get(ctx, gameID)
}

func (s *Server) handleCreateGame(ctx context.Context, c *Client, msg *protocol.Message) error {
	var p protocol.CreateGamePayload
	if err := parse(msg, &p); err != nil {
		return err
	}

	sess, info, err := s.sessions.create(ctx, p)
	if err != nil {
		return err
	}
	s.hub.Follow(c, info.ID, nil)
	c.log.Info().Str("game", info.ID).Int("players", p.Players).Msg("Game created")

	return s.reply(c, msg, protocol.TypeGameCreated, protocol.GameCreatedPayload{
		GameID:   info.ID,
		JoinCode: info.JoinCode,
		State:    sess.store.State(),
	})
}

func (s *Server) handleJoinGame(ctx context.Context, c *Client, msg *protocol.Message) error {
	var p protocol.JoinGamePayload
	if err := parse(msg, &p); err != nil {
		return err
	}

	gameID := p.GameID
	if gameID == "" {
		if p.JoinCode == "" {
			return fail(protocol.ErrCodeMalformedMessage, "gameId or joinCode is required")
		}
		info, err := s.db.GetGameByJoinCode(ctx, p.JoinCode)
		if err != nil {
			return err
		}
		gameID = info.ID
	}

	sess, err := s.sessions.get(ctx, gameID)
	if err != nil {
		return err
	}
	st := sess.store.State()
	if p.Seat != nil && st.Player(*p.Seat) == nil {
		return fail(protocol.ErrCodeInvalidTarget, "game has no player %d", *p.Seat)
	}
	s.hub.Follow(c, gameID, p.Seat)

	return s.reply(c, msg, protocol.TypeJoinedGame, protocol.JoinedGamePayload{
		GameID:   gameID,
		JoinCode: sess.joinCode,
		Seat:     p.Seat,
		State:    st,
	})
}

func (s *Server) handleListGamesMessage(ctx context.Context, c *Client, msg *protocol.Message) error {
	games, err := s.db.ListGames(ctx)
	if err != nil {
		return err
	}
	return s.reply(c, msg, protocol.TypeGameList, protocol.GameListPayload{Games: summaries(games)})
}

func (s *Server) handleSubmitAction(ctx context.Context, c *Client, msg *protocol.Message) error {
	var p protocol.SubmitActionPayload
	if err := parse(msg, &p); err != nil {
		return err
	}

	current, seat := c.Game()
	if p.GameID != "" && p.GameID != current {
		return fail(protocol.ErrCodeNotInGame, "not following game %s", p.GameID)
	}
	if seat != nil && *seat != p.Action.PlayerID {
		return fail(protocol.ErrCodeNotYourSeat, "seated as player %d", *seat)
	}
	sess, err := s.followed(ctx, c, current)
	if err != nil {
		return err
	}

	result := protocol.ActionResultPayload{Action: p.Action.Type()}
	next, combat, err := sess.store.Apply(p.Action)
	logged := database.ActionAccepted
	if err != nil {
		result.Reason = game.ReasonOf(err)
		result.Code = protocol.CodeFor(err)
		result.Version = sess.store.State().Version
		logged = result.Reason
	} else {
		result.Success = true
		result.Version = next.Version
		result.Combat = combat
	}

	if err := s.db.LogAction(ctx, current, p.Action, logged, result.Version); err != nil {
		c.log.Warn().Err(err).Msg("Failed to log action")
	}
	return s.reply(c, msg, protocol.TypeActionResult, result)
}

func (s *Server) handleGetState(ctx context.Context, c *Client, msg *protocol.Message) error {
	var p protocol.GameRef
	if len(msg.Payload) > 0 {
		if err := parse(msg, &p); err != nil {
			return err
		}
	}
	sess, err := s.followed(ctx, c, p.GameID)
	if err != nil {
		return err
	}
	return s.reply(c, msg, protocol.TypeGameState, protocol.GameStatePayload{State: sess.store.State()})
}

func (s *Server) handleGetHistory(ctx context.Context, c *Client, msg *protocol.Message) error {
	var p protocol.GetHistoryPayload
	if len(msg.Payload) > 0 {
		if err := parse(msg, &p); err != nil {
			return err
		}
	}
	if p.GameID == "" {
		p.GameID, _ = c.Game()
	}
	if p.GameID == "" {
		return fail(protocol.ErrCodeNotInGame, "join a game first")
	}
	if _, err := s.db.GetGame(ctx, p.GameID); err != nil {
		return err
	}

	events, err := s.db.GetHistorySince(ctx, p.GameID, p.SinceVersion)
	if err != nil {
		return err
	}
	out := protocol.GameHistoryPayload{GameID: p.GameID, Events: make([]protocol.HistoryEntry, 0, len(events))}
	for _, e := range events {
		out.Events = append(out.Events, protocol.HistoryEntry{
			Version:  e.Version,
			Turn:     e.Turn,
			Phase:    e.Phase,
			PlayerID: e.PlayerID,
			Type:     e.EventType,
			Message:  e.Message,
			Details:  e.Details,
		})
	}
	return s.reply(c, msg, protocol.TypeGameHistory, out)
}

func (s *Server) handleAttackPreview(ctx context.Context, c *Client, msg *protocol.Message) error {
	var p protocol.AttackPreviewPayload
	if err := parse(msg, &p); err != nil {
		return err
	}
	sess, err := s.followed(ctx, c, p.GameID)
	if err != nil {
		return err
	}

	check, result := sess.store.PreviewAttack(p.PlayerID, p.FromTerritoryID, p.ToTerritoryID)
	out := protocol.AttackPreviewResultPayload{Valid: check.Valid, Reason: check.Reason}
	if check.Valid {
		out.Result = &result
	}
	return s.reply(c, msg, protocol.TypeAttackPreview, out)
}

// handleHistoryMove serves undo and redo. Seated clients cannot rewind
// other players' moves, so both are reserved for unseated clients.
func (s *Server) handleHistoryMove(ctx context.Context, c *Client, msg *protocol.Message) error {
	var p protocol.GameRef
	if len(msg.Payload) > 0 {
		if err := parse(msg, &p); err != nil {
			return err
		}
	}
	current, seat := c.Game()
	if seat != nil {
		return fail(protocol.ErrCodeNotYourSeat, "%s is only available to unseated clients", msg.Type)
	}
	if p.GameID != "" && p.GameID != current {
		return fail(protocol.ErrCodeNotInGame, "not following game %s", p.GameID)
	}
	sess, err := s.followed(ctx, c, current)
	if err != nil {
		return err
	}

	var kind game.ActionType
	var ok bool
	if msg.Type == protocol.TypeRedo {
		kind, ok = game.ActionType(store.UpdateRedo), sess.store.Redo()
	} else {
		kind, ok = game.ActionType(store.UpdateUndo), sess.store.Undo()
	}
	if !ok {
		return fail(protocol.ErrCodeNothingToUndo, "nothing to %s", msg.Type)
	}
	return s.reply(c, msg, protocol.TypeActionResult, protocol.ActionResultPayload{
		Success: true,
		Action:  kind,
		Version: sess.store.State().Version,
	})
}
