package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"empires-legacy/internal/game"
)

// HistoryEvent represents a single game event in the history log.
type HistoryEvent struct {
	ID        int64
	GameID    string
	Version   int64
	Turn      int
	Phase     game.Phase
	PlayerID  game.PlayerID
	EventType string
	Message   string
	Details   []string
	CreatedAt time.Time
}

// ActionRecord is one logged action.
type ActionRecord struct {
	ID        int64
	GameID    string
	PlayerID  game.PlayerID
	Type      game.ActionType
	Action    game.Action
	Result    string
	Version   int64
	CreatedAt time.Time
}

// ActionAccepted is the result recorded for applied actions.
const ActionAccepted = "accepted"

func insertHistory(ctx context.Context, tx *sql.Tx, st *game.GameState, now time.Time) error {
	u, ok := st.LastUpdate()
	if !ok {
		return nil
	}
	var details sql.NullString
	if len(u.Details) > 0 {
		raw, err := json.Marshal(u.Details)
		if err != nil {
			return err
		}
		details = sql.NullString{String: string(raw), Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO game_history (game_id, version, turn, phase, player_id, event_type, message, details_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, st.ID, st.Version, u.Turn, string(u.Phase), int(u.PlayerID), u.Type, u.Message, details, now)
	if err != nil {
		return fmt.Errorf("record history %s: %w", st.ID, err)
	}
	return nil
}

// GetHistory retrieves all history events for a game, ordered by version.
func (db *DB) GetHistory(ctx context.Context, gameID string) ([]*HistoryEvent, error) {
	return db.GetHistorySince(ctx, gameID, 0)
}

// GetHistorySince retrieves history events after a given version.
func (db *DB) GetHistorySince(ctx context.Context, gameID string, afterVersion int64) ([]*HistoryEvent, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, game_id, version, turn, phase, player_id, event_type, message, details_json, created_at
		FROM game_history
		WHERE game_id = ? AND version > ?
		ORDER BY version ASC
	`, gameID, afterVersion)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*HistoryEvent
	for rows.Next() {
		e := &HistoryEvent{}
		var details sql.NullString
		if err := rows.Scan(&e.ID, &e.GameID, &e.Version, &e.Turn, &e.Phase, &e.PlayerID,
			&e.EventType, &e.Message, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if details.Valid {
			if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
				return nil, fmt.Errorf("decode history details: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// LogAction records an action and its outcome. result is ActionAccepted or
// the rejection reason; version is the state version after the action.
func (db *DB) LogAction(ctx context.Context, gameID string, a game.Action, result string, version int64) error {
	actionJSON, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode action: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO game_actions (game_id, player_id, action_type, action_json, result, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, gameID, int(a.PlayerID), string(a.Type()), string(actionJSON), result, version, time.Now())
	return err
}

// ListActions returns the logged actions of a game in order.
func (db *DB) ListActions(ctx context.Context, gameID string) ([]*ActionRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, game_id, player_id, action_type, action_json, result, version, created_at
		FROM game_actions
		WHERE game_id = ?
		ORDER BY id ASC
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ActionRecord
	for rows.Next() {
		r := &ActionRecord{}
		var raw string
		if err := rows.Scan(&r.ID, &r.GameID, &r.PlayerID, &r.Type, &raw, &r.Result, &r.Version, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &r.Action); err != nil {
			return nil, fmt.Errorf("decode action %d: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
