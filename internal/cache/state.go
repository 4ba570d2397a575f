package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"empires-legacy/internal/game"
)

// Key patterns for Redis game state.
func stateKey(gameID string) string       { return "game:" + gameID + ":state" }
func versionKey(gameID string) string     { return "game:" + gameID + ":version" }
func updatesChannel(gameID string) string { return "game:" + gameID + ":updates" }

// ErrVersionConflict is returned when the cached version does not match
// what the writer expected.
var ErrVersionConflict = errors.New("cached state version conflict")

// SaveState caches a snapshot if it is newer than the cached one.
func (c *Client) SaveState(ctx context.Context, st *game.GameState) error {
	return c.save(ctx, st, func(cached int64, found bool) bool {
		return !found || cached < st.Version
	})
}

// SaveStateIfVersion caches a snapshot only if the cached version equals
// expected. A missing entry matches expected 0.
func (c *Client) SaveStateIfVersion(ctx context.Context, st *game.GameState, expected int64) error {
	return c.save(ctx, st, func(cached int64, found bool) bool {
		if !found {
			return expected == 0
		}
		return cached == expected
	})
}

func (c *Client) save(ctx context.Context, st *game.GameState, accept func(cached int64, found bool) bool) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	sk, vk := stateKey(st.ID), versionKey(st.ID)

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cached, err := tx.Get(ctx, vk).Int64()
		found := true
		if errors.Is(err, redis.Nil) {
			found = false
		} else if err != nil {
			return fmt.Errorf("get state version: %w", err)
		}
		if !accept(cached, found) {
			return fmt.Errorf("game %s: cached %d, writing %d: %w", st.ID, cached, st.Version, ErrVersionConflict)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, sk, data, c.ttl)
			pipe.Set(ctx, vk, st.Version, c.ttl)
			return nil
		})
		return err
	}, sk, vk)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("game %s: concurrent write: %w", st.ID, ErrVersionConflict)
	}
	return err
}

// LoadState retrieves the cached snapshot, or nil if there is none.
func (c *Client) LoadState(ctx context.Context, gameID string) (*game.GameState, error) {
	data, err := c.rdb.Get(ctx, stateKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game state: %w", err)
	}
	var st game.GameState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode game state: %w", err)
	}
	return &st, nil
}

// Version returns the cached version of a game, or 0 if none is cached.
func (c *Client) Version(ctx context.Context, gameID string) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey(gameID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// DeleteGameData removes all Redis data for a game.
func (c *Client) DeleteGameData(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, stateKey(gameID), versionKey(gameID)).Err()
}
