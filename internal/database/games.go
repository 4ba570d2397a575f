package database

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"empires-legacy/internal/game"
)

// GameStatus represents the current status of a game.
type GameStatus string

const (
	GameStatusSetup    GameStatus = "setup"    // Players are claiming capitals
	GameStatusActive   GameStatus = "active"   // Game in progress
	GameStatusFinished GameStatus = "finished" // A winner was declared
)

// GameInfo contains basic game information for listings.
type GameInfo struct {
	ID          string
	Name        string
	JoinCode    string
	Status      GameStatus
	PlayerCount int
	BoardSize   game.BoardSize
	Winner      game.PlayerID
	Victory     game.VictoryKind
	Version     int64
	CreatedAt   time.Time
	EndedAt     *time.Time
}

// ErrGameNotFound is returned when a game is not found.
var ErrGameNotFound = errors.New("game not found")

// ErrJoinCodeNotFound is returned when a join code is invalid.
var ErrJoinCodeNotFound = errors.New("invalid join code")

// statusOf derives the listing status from a snapshot.
func statusOf(st *game.GameState) GameStatus {
	switch {
	case st.IsGameOver():
		return GameStatusFinished
	case st.Phase == game.PhaseSetup:
		return GameStatusSetup
	default:
		return GameStatusActive
	}
}

// CreateGame registers a new game and stores its initial snapshot.
func (db *DB) CreateGame(ctx context.Context, name string, size game.BoardSize, st *game.GameState) (*GameInfo, error) {
	if name == "" {
		name = defaultName(st.ID)
	}
	rulesJSON, err := json.Marshal(st.Rules)
	if err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	joinCode := generateJoinCode()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO games (id, name, join_code, status, player_count, board_size, rules_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, st.ID, name, joinCode, statusOf(st), len(st.Players), string(size), string(rulesJSON), now)
	if err != nil {
		return nil, fmt.Errorf("insert game %s: %w", st.ID, err)
	}
	if err := upsertState(ctx, tx, st, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &GameInfo{
		ID:          st.ID,
		Name:        name,
		JoinCode:    joinCode,
		Status:      statusOf(st),
		PlayerCount: len(st.Players),
		BoardSize:   size,
		Winner:      game.NoPlayer,
		Version:     st.Version,
		CreatedAt:   now,
	}, nil
}

const gameColumns = `
	g.id, g.name, COALESCE(g.join_code, ''), g.status, g.player_count, g.board_size,
	g.winner, COALESCE(g.victory, ''), COALESCE(s.version, 0), g.created_at, g.ended_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (*GameInfo, error) {
	info := &GameInfo{}
	var winner sql.NullInt64
	var endedAt sql.NullTime
	err := row.Scan(&info.ID, &info.Name, &info.JoinCode, &info.Status, &info.PlayerCount, &info.BoardSize,
		&winner, &info.Victory, &info.Version, &info.CreatedAt, &endedAt)
	if err != nil {
		return nil, err
	}
	info.Winner = game.NoPlayer
	if winner.Valid {
		info.Winner = game.PlayerID(winner.Int64)
	}
	if endedAt.Valid {
		info.EndedAt = &endedAt.Time
	}
	return info, nil
}

// GetGame retrieves a game by ID.
func (db *DB) GetGame(ctx context.Context, id string) (*GameInfo, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+gameColumns+`
		FROM games g LEFT JOIN game_state s ON s.game_id = g.id
		WHERE g.id = ?
	`, id)
	info, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	return info, err
}

// GetGameByJoinCode retrieves a game by its join code.
func (db *DB) GetGameByJoinCode(ctx context.Context, code string) (*GameInfo, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+gameColumns+`
		FROM games g LEFT JOIN game_state s ON s.game_id = g.id
		WHERE g.join_code = ?
	`, code)
	info, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJoinCodeNotFound
	}
	return info, err
}

// ListGames returns games newest first. With no statuses given, every
// game is listed.
func (db *DB) ListGames(ctx context.Context, statuses ...GameStatus) ([]*GameInfo, error) {
	query := `SELECT ` + gameColumns + ` FROM games g LEFT JOIN game_state s ON s.game_id = g.id`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE g.status IN (?` + strings.Repeat(",?", len(statuses)-1) + `)`
		for _, s := range statuses {
			args = append(args, s)
		}
	}
	query += ` ORDER BY g.created_at DESC, g.id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*GameInfo
	for rows.Next() {
		info, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, info)
	}
	return games, rows.Err()
}

// DeleteGame permanently deletes a game and all associated data.
func (db *DB) DeleteGame(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM game_history WHERE game_id = ?`,
		`DELETE FROM game_actions WHERE game_id = ?`,
		`DELETE FROM game_state WHERE game_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGameNotFound
	}
	return tx.Commit()
}

func defaultName(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "Game " + id
}

// generateJoinCode creates a human-readable join code.
func generateJoinCode() string {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0, O, 1 or I
	bytes := make([]byte, 8)
	rand.Read(bytes)

	code := make([]byte, 8)
	for i := range code {
		code[i] = chars[bytes[i]%byte(len(chars))]
	}
	return string(code[:4]) + "-" + string(code[4:])
}
