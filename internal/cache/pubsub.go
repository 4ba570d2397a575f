package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"empires-legacy/internal/game"
)

// Publish sends a snapshot to every instance subscribed to its game.
func (c *Client) Publish(ctx context.Context, st *game.GameState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := c.rdb.Publish(ctx, updatesChannel(st.ID), data).Err(); err != nil {
		return fmt.Errorf("publish game %s: %w", st.ID, err)
	}
	return nil
}

// Subscribe streams snapshots published for a game until ctx is done.
// Messages that fail to decode are dropped.
func (c *Client) Subscribe(ctx context.Context, gameID string) (<-chan *game.GameState, error) {
	ps := c.rdb.Subscribe(ctx, updatesChannel(gameID))
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe game %s: %w", gameID, err)
	}

	out := make(chan *game.GameState, 16)
	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var st game.GameState
				if err := json.Unmarshal([]byte(msg.Payload), &st); err != nil {
					log.Warn().Err(err).Str("game", gameID).Msg("Dropping undecodable snapshot")
					continue
				}
				select {
				case out <- &st:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
