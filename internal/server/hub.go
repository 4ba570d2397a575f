package server

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"empires-legacy/internal/game"
	"empires-legacy/internal/protocol"
)

// Hub maintains the set of active clients and the games they follow.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	games   map[string]map[*Client]bool // gameID -> followers
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		games:   make(map[string]map[*Client]bool),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

// Unregister removes a client from the hub and every game it follows.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for gameID, followers := range h.games {
		delete(followers, c)
		if len(followers) == 0 {
			delete(h.games, gameID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// Follow adds a client to a game's followers. A client follows at most
// one game at a time.
func (h *Hub) Follow(c *Client, gameID string, seat *game.PlayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, _ := c.Game(); prev != "" && prev != gameID {
		if followers, ok := h.games[prev]; ok {
			delete(followers, c)
			if len(followers) == 0 {
				delete(h.games, prev)
			}
		}
	}
	if h.games[gameID] == nil {
		h.games[gameID] = make(map[*Client]bool)
	}
	h.games[gameID][c] = true
	c.setGame(gameID, seat)
}

// Publish sends a snapshot to every client following its game. It lets
// the hub act as a store broadcaster.
func (h *Hub) Publish(_ context.Context, st *game.GameState) error {
	msg, err := protocol.NewMessage(protocol.TypeGameState, protocol.GameStatePayload{State: st})
	if err != nil {
		return err
	}
	h.BroadcastToGame(st.ID, msg)
	return nil
}

// BroadcastToGame sends a message to every follower of a game.
func (h *Hub) BroadcastToGame(gameID string, msg *protocol.Message) {
	h.mu.RLock()
	followers := make([]*Client, 0, len(h.games[gameID]))
	for c := range h.games[gameID] {
		followers = append(followers, c)
	}
	h.mu.RUnlock()

	for _, c := range followers {
		if !c.Send(msg) {
			log.Warn().Str("client", c.ID).Str("game", gameID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GameFollowerCount returns the number of clients following a game.
func (h *Hub) GameFollowerCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		h.Unregister(c)
	}
}
