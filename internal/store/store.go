// Package store holds the authoritative state of one game. It is the only
// writer: every change goes through Dispatch, which validates, applies,
// records undo history, notifies subscribers and mirrors the new state to
// persistence and broadcast collaborators.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"empires-legacy/internal/game"
)

// DefaultUndoDepth caps the undo history.
const DefaultUndoDepth = 50

// Persister saves snapshots durably.
type Persister interface {
	SaveState(ctx context.Context, state *game.GameState) error
}

// Broadcaster notifies other parties of a new snapshot.
type Broadcaster interface {
	Publish(ctx context.Context, state *game.GameState) error
}

// SyncError wraps a persistence or broadcast failure. It never affects the
// local state.
type SyncError struct {
	Op      string
	GameID  string
	Version int64
	Err     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s for game %s at version %d: %v", e.Op, e.GameID, e.Version, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Options configure a Store.
type Options struct {
	UndoDepth    int
	Persisters   []Persister
	Broadcasters []Broadcaster
	Logger       zerolog.Logger
	SyncTimeout  time.Duration
	SyncQueue    int
	Clock        func() time.Time
	OnSyncError  func(*SyncError)
}

// Store serializes all changes to a single game.
type Store struct {
	mu            sync.Mutex
	state         *game.GameState
	undo          []*game.GameState
	redo          []*game.GameState
	subs          map[int]chan *game.GameState
	nextSub       int
	lastRejection string
	lastCombat    *game.CombatResult

	opts   Options
	log    zerolog.Logger
	syncCh chan *game.GameState
	done   chan struct{}
	closed bool
}

// New creates a store around an initial state. The store takes ownership
// of initial; callers must not modify it afterwards.
func New(initial *game.GameState, opts Options) *Store {
	if opts.UndoDepth <= 0 {
		opts.UndoDepth = DefaultUndoDepth
	}
	if opts.SyncTimeout <= 0 {
		opts.SyncTimeout = 5 * time.Second
	}
	if opts.SyncQueue <= 0 {
		opts.SyncQueue = 64
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Store{
		state:  initial,
		subs:   make(map[int]chan *game.GameState),
		opts:   opts,
		log:    opts.Logger.With().Str("game", initial.ID).Logger(),
		syncCh: make(chan *game.GameState, opts.SyncQueue),
		done:   make(chan struct{}),
	}
	go s.syncLoop()
	return s
}

// GameID returns the id of the game this store holds.
func (s *Store) GameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ID
}

// State returns a snapshot of the current state.
func (s *Store) State() *game.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch applies an action. It returns false if the action was rejected;
// LastRejection then holds the reason.
func (s *Store) Dispatch(a game.Action) bool {
	_, _, err := s.Apply(a)
	return err == nil
}

// Apply applies an action and returns the new snapshot and, for battles,
// the combat result.
func (s *Store) Apply(a game.Action) (*game.GameState, *game.CombatResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Timestamp == 0 {
		a.Timestamp = s.opts.Clock().UnixMilli()
	}

	next, combat, err := game.Apply(s.state, a)
	if err != nil {
		s.lastRejection = game.ReasonOf(err)
		var integrity *game.StateIntegrityError
		if errors.As(err, &integrity) {
			s.log.Error().Err(err).Str("action", string(a.Type())).Msg("Rejected action on corrupt state")
		} else {
			s.log.Debug().Str("action", string(a.Type())).Int("player", int(a.PlayerID)).
				Str("reason", s.lastRejection).Msg("Action rejected")
		}
		return nil, nil, err
	}

	s.pushUndo(s.state)
	s.redo = nil
	s.commit(next)
	s.lastRejection = ""
	s.lastCombat = combat

	s.log.Debug().Str("action", string(a.Type())).Int64("version", next.Version).Msg("Action applied")
	return next.Clone(), combat, nil
}

// LastRejection returns the reason the most recent dispatch failed, or ""
// if it succeeded.
func (s *Store) LastRejection() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRejection
}

// LastCombat returns the combat result of the most recent successful
// dispatch, if it was a battle.
func (s *Store) LastCombat() *game.CombatResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCombat
}

// Check validates an action against the current state.
func (s *Store) Check(a game.Action) game.ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return game.Check(s.state, a)
}

// PreviewAttack predicts a battle without changing anything.
func (s *Store) PreviewAttack(p game.PlayerID, from, to game.TerritoryID) (game.ValidationResult, game.CombatResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return game.PreviewAttack(s.state, p, from, to)
}

// Subscribe returns a channel that receives every new snapshot. Sends
// never block: a subscriber whose buffer is full misses that snapshot.
// Call cancel to unsubscribe.
func (s *Store) Subscribe(buffer int) (<-chan *game.GameState, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan *game.GameState, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// Close stops the sync worker after draining queued snapshots and closes
// every subscription.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.syncCh)
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()
	<-s.done
}

// commit installs next as the current state and fans it out. Callers hold mu.
func (s *Store) commit(next *game.GameState) {
	s.state = next
	for _, ch := range s.subs {
		select {
		case ch <- next.Clone():
		default:
			s.log.Warn().Int64("version", next.Version).Msg("Subscriber slow, snapshot skipped")
		}
	}
	if s.closed {
		return
	}
	select {
	case s.syncCh <- next.Clone():
	default:
		s.reportSync(&SyncError{Op: "enqueue", GameID: next.ID, Version: next.Version, Err: errors.New("sync queue full")})
	}
}

func (s *Store) syncLoop() {
	defer close(s.done)
	for st := range s.syncCh {
		s.sync(st)
	}
}

func (s *Store) sync(st *game.GameState) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.SyncTimeout)
	defer cancel()

	for _, p := range s.opts.Persisters {
		if err := p.SaveState(ctx, st); err != nil {
			s.reportSync(&SyncError{Op: "persist", GameID: st.ID, Version: st.Version, Err: err})
		}
	}
	for _, b := range s.opts.Broadcasters {
		if err := b.Publish(ctx, st); err != nil {
			s.reportSync(&SyncError{Op: "broadcast", GameID: st.ID, Version: st.Version, Err: err})
		}
	}
}

func (s *Store) reportSync(err *SyncError) {
	s.log.Warn().Err(err.Err).Str("op", err.Op).Int64("version", err.Version).Msg("External sync failed")
	if s.opts.OnSyncError != nil {
		s.opts.OnSyncError(err)
	}
}
