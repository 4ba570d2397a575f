package store

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empires-legacy/internal/game"
)

type recorder struct {
	mu       sync.Mutex
	versions []int64
	err      error
}

func (r *recorder) SaveState(_ context.Context, st *game.GameState) error {
	return r.record(st)
}

func (r *recorder) Publish(_ context.Context, st *game.GameState) error {
	return r.record(st)
}

func (r *recorder) record(st *game.GameState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.versions = append(r.versions, st.Version)
	return nil
}

func (r *recorder) seen() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.versions...)
}

func fixedClock() time.Time {
	return time.UnixMilli(1700000000000)
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	st, err := game.NewGame(game.Options{
		ID:      "store-test",
		Players: 2,
		Radius:  1,
		Rules:   game.DefaultRules(),
		Random:  rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	opts.Logger = zerolog.Nop()
	if opts.Clock == nil {
		opts.Clock = fixedClock
	}
	s := New(st, opts)
	t.Cleanup(s.Close)
	return s
}

func TestDispatch(t *testing.T) {
	s := newTestStore(t, Options{})

	require.True(t, s.Dispatch(game.NewClaim(0, 3)))
	require.Empty(t, s.LastRejection())

	state := s.State()
	require.Equal(t, game.PlayerID(0), state.Territories[3].Owner)
	require.Equal(t, int64(1), state.Version)
	last, _ := state.LastUpdate()
	require.Equal(t, fixedClock().UnixMilli(), last.Timestamp)

	require.False(t, s.Dispatch(game.NewClaim(0, 5)))
	require.Equal(t, "already claimed a territory during setup", s.LastRejection())
	require.Equal(t, int64(1), s.State().Version)
}

func TestStateIsASnapshot(t *testing.T) {
	s := newTestStore(t, Options{})
	snap := s.State()
	snap.Players[0].Resources.Gold = 0
	require.Equal(t, 300, s.State().Players[0].Resources.Gold)
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t, Options{})
	ch, cancel := s.Subscribe(4)

	require.True(t, s.Dispatch(game.NewClaim(0, 0)))
	require.True(t, s.Dispatch(game.NewEndTurn(0)))

	first := <-ch
	second := <-ch
	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, int64(2), second.Version)

	cancel()
	_, open := <-ch
	assert.False(t, open)
	cancel()
}

func TestSlowSubscriberIsSkipped(t *testing.T) {
	s := newTestStore(t, Options{})
	ch, cancel := s.Subscribe(1)
	defer cancel()

	require.True(t, s.Dispatch(game.NewClaim(0, 0)))
	require.True(t, s.Dispatch(game.NewEndTurn(0)))

	got := <-ch
	assert.Equal(t, int64(1), got.Version)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected snapshot at version %d", extra.Version)
	default:
	}
}

func TestUndoRedo(t *testing.T) {
	s := newTestStore(t, Options{})
	require.False(t, s.Undo())

	require.True(t, s.Dispatch(game.NewClaim(0, 2)))
	require.True(t, s.CanUndo())

	require.True(t, s.Undo())
	state := s.State()
	assert.Equal(t, game.NoPlayer, state.Territories[2].Owner)
	assert.Equal(t, int64(2), state.Version, "undo never moves the version backwards")
	last, _ := state.LastUpdate()
	assert.Equal(t, UpdateUndo, last.Type)

	require.True(t, s.CanRedo())
	require.True(t, s.Redo())
	state = s.State()
	assert.Equal(t, game.PlayerID(0), state.Territories[2].Owner)
	assert.Equal(t, int64(3), state.Version)

	require.True(t, s.Undo())
	require.True(t, s.Dispatch(game.NewClaim(0, 4)))
	assert.False(t, s.CanRedo(), "a new action clears redo")
}

func TestUndoDepthIsCapped(t *testing.T) {
	s := newTestStore(t, Options{UndoDepth: 2})
	require.True(t, s.Dispatch(game.NewClaim(0, 0)))
	require.True(t, s.Dispatch(game.NewEndTurn(0)))
	require.True(t, s.Dispatch(game.NewClaim(1, 6)))

	require.True(t, s.Undo())
	require.True(t, s.Undo())
	require.False(t, s.Undo())
	assert.Equal(t, game.PlayerID(0), s.State().Territories[0].Owner)
}

func TestSyncMirrorsEveryVersion(t *testing.T) {
	rec := &recorder{}
	s := newTestStore(t, Options{Persisters: []Persister{rec}, Broadcasters: []Broadcaster{rec}})

	require.True(t, s.Dispatch(game.NewClaim(0, 0)))
	require.True(t, s.Dispatch(game.NewEndTurn(0)))
	require.False(t, s.Dispatch(game.NewEndTurn(0)))
	s.Close()

	assert.Equal(t, []int64{1, 1, 2, 2}, rec.seen())
}

func TestSyncFailureKeepsLocalState(t *testing.T) {
	var mu sync.Mutex
	var failures []*SyncError
	rec := &recorder{err: errors.New("redis down")}

	s := newTestStore(t, Options{
		Persisters: []Persister{rec},
		OnSyncError: func(err *SyncError) {
			mu.Lock()
			failures = append(failures, err)
			mu.Unlock()
		},
	})

	require.True(t, s.Dispatch(game.NewClaim(0, 0)))
	s.Close()

	assert.Equal(t, game.PlayerID(0), s.State().Territories[0].Owner)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failures, 1)
	assert.Equal(t, "persist", failures[0].Op)
	assert.Equal(t, "store-test", failures[0].GameID)
	assert.ErrorContains(t, failures[0], "redis down")
}

func TestConcurrentDispatchIsSerialized(t *testing.T) {
	s := newTestStore(t, Options{})
	require.True(t, s.Dispatch(game.NewClaim(0, 0)))

	var wg sync.WaitGroup
	results := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.Dispatch(game.NewEndTurn(0))
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for r := range results {
		if r {
			ok++
		}
	}
	assert.Equal(t, 1, ok, "only the first end turn is player 0's")
	assert.Equal(t, int64(2), s.State().Version)
}

func TestLastCombatAndPreview(t *testing.T) {
	s := newTestStore(t, Options{})
	require.True(t, s.Dispatch(game.NewClaim(0, 0)))

	check, _ := s.PreviewAttack(0, 0, 3)
	assert.False(t, check.Valid)
	assert.Nil(t, s.LastCombat())
	assert.True(t, s.Check(game.NewEndTurn(0)).Valid)
}
