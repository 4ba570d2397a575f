package server

import (
	"context"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empires-legacy/internal/game"
	"empires-legacy/internal/protocol"
)

func newTestClient(id string, buffer int) *Client {
	return &Client{
		ID:   id,
		send: make(chan *protocol.Message, buffer),
		log:  zerolog.Nop(),
	}
}

func TestHubFollowAndPublish(t *testing.T) {
	hub := NewHub()
	a, b, c := newTestClient("a", 4), newTestClient("b", 4), newTestClient("c", 4)
	for _, cl := range []*Client{a, b, c} {
		hub.Register(cl)
	}
	seat := game.PlayerID(1)
	hub.Follow(a, "g1", nil)
	hub.Follow(b, "g1", &seat)
	hub.Follow(c, "g2", nil)

	assert.Equal(t, 3, hub.ConnectionCount())
	assert.Equal(t, 2, hub.GameFollowerCount("g1"))

	gameID, gotSeat := b.Game()
	assert.Equal(t, "g1", gameID)
	require.NotNil(t, gotSeat)
	assert.Equal(t, seat, *gotSeat)

	st, err := game.NewGame(game.Options{ID: "g1", Players: 2, Radius: 1, Rules: game.DefaultRules(), Random: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	require.NoError(t, hub.Publish(context.Background(), st))

	for _, cl := range []*Client{a, b} {
		msg := <-cl.send
		assert.Equal(t, protocol.TypeGameState, msg.Type)
	}
	assert.Empty(t, c.send)
}

func TestHubFollowMovesClient(t *testing.T) {
	hub := NewHub()
	a := newTestClient("a", 1)
	hub.Register(a)

	hub.Follow(a, "g1", nil)
	hub.Follow(a, "g2", nil)
	assert.Equal(t, 0, hub.GameFollowerCount("g1"))
	assert.Equal(t, 1, hub.GameFollowerCount("g2"))
}

func TestHubUnregisterClosesClient(t *testing.T) {
	hub := NewHub()
	a := newTestClient("a", 1)
	hub.Register(a)
	hub.Follow(a, "g1", nil)

	hub.Unregister(a)
	hub.Unregister(a)
	assert.Equal(t, 0, hub.ConnectionCount())
	assert.Equal(t, 0, hub.GameFollowerCount("g1"))

	_, open := <-a.send
	assert.False(t, open)
	assert.False(t, a.Send(&protocol.Message{Type: protocol.TypePong}))
}

func TestSendDropsWhenBufferFull(t *testing.T) {
	a := newTestClient("a", 1)
	assert.True(t, a.Send(&protocol.Message{Type: protocol.TypePong}))
	assert.False(t, a.Send(&protocol.Message{Type: protocol.TypePong}))
}
