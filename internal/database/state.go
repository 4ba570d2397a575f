package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"empires-legacy/internal/game"
)

// ErrStaleVersion is returned when a snapshot is older than the stored one.
var ErrStaleVersion = errors.New("snapshot version is not newer than stored state")

// SaveState stores a snapshot as the latest state of its game. The games
// row is created on first save and its status follows the snapshot. The
// snapshot's last update is recorded in the history once per version.
func (db *DB) SaveState(ctx context.Context, st *game.GameState) error {
	rulesJSON, err := json.Marshal(st.Rules)
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	var winner sql.NullInt64
	var endedAt sql.NullTime
	if st.IsGameOver() {
		winner = sql.NullInt64{Int64: int64(st.Winner), Valid: true}
		endedAt = sql.NullTime{Time: now, Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO games (id, name, join_code, status, player_count, board_size, rules_json, winner, victory, created_at, ended_at)
		VALUES (?, ?, ?, ?, ?, '', ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			winner = excluded.winner,
			victory = excluded.victory,
			ended_at = COALESCE(games.ended_at, excluded.ended_at)
	`, st.ID, defaultName(st.ID), generateJoinCode(), statusOf(st), len(st.Players), string(rulesJSON),
		winner, string(st.Victory), now, endedAt)
	if err != nil {
		return fmt.Errorf("upsert game %s: %w", st.ID, err)
	}

	if err := upsertState(ctx, tx, st, now); err != nil {
		return err
	}
	if err := insertHistory(ctx, tx, st, now); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertState(ctx context.Context, tx *sql.Tx, st *game.GameState, now time.Time) error {
	stateJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", st.ID, err)
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO game_state (game_id, state_json, version, current_player, turn, phase, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			state_json = excluded.state_json,
			version = excluded.version,
			current_player = excluded.current_player,
			turn = excluded.turn,
			phase = excluded.phase,
			updated_at = excluded.updated_at
		WHERE excluded.version > game_state.version
	`, st.ID, string(stateJSON), st.Version, int(st.CurrentPlayer), st.Turn, string(st.Phase), now)
	if err != nil {
		return fmt.Errorf("save state %s: %w", st.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("save state %s at version %d: %w", st.ID, st.Version, ErrStaleVersion)
	}
	return nil
}

// LoadState retrieves the latest snapshot of a game.
func (db *DB) LoadState(ctx context.Context, gameID string) (*game.GameState, error) {
	var stateJSON string
	err := db.conn.QueryRowContext(ctx, `
		SELECT state_json FROM game_state WHERE game_id = ?
	`, gameID).Scan(&stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	var st game.GameState
	if err := json.Unmarshal([]byte(stateJSON), &st); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", gameID, err)
	}
	return &st, nil
}

// StateStore adapts the database to the store's persistence hook.
type StateStore struct {
	db  *DB
	log zerolog.Logger
}

// NewStateStore wraps db for use as a store persister.
func NewStateStore(db *DB, log zerolog.Logger) *StateStore {
	return &StateStore{db: db, log: log}
}

// SaveState persists a snapshot. Replayed versions are ignored.
func (s *StateStore) SaveState(ctx context.Context, st *game.GameState) error {
	err := s.db.SaveState(ctx, st)
	if errors.Is(err, ErrStaleVersion) {
		s.log.Debug().Str("game", st.ID).Int64("version", st.Version).Msg("Skipped stale snapshot")
		return nil
	}
	return err
}
