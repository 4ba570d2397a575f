package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"empires-legacy/internal/database"
	"empires-legacy/internal/game"
	"empires-legacy/internal/logger"
	"empires-legacy/internal/protocol"
	"empires-legacy/internal/store"
)

// session is a game loaded into memory behind its store.
type session struct {
	store    *store.Store
	joinCode string
	stop     func()
}

// sessions holds every game this server currently runs.
type sessions struct {
	srv  *Server
	mu   sync.Mutex
	live map[string]*session
}

func newSessions(s *Server) *sessions {
	return &sessions{srv: s, live: make(map[string]*session)}
}

// create starts a new game from a client request and stores it.
func (ss *sessions) create(ctx context.Context, p protocol.CreateGamePayload) (*session, *database.GameInfo, error) {
	cfg := ss.srv.gameConfig()
	size := p.BoardSize
	if size == "" {
		size = game.BoardSize(cfg.BoardSize)
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	st, err := game.NewGame(game.Options{
		Players:     p.Players,
		PlayerNames: p.PlayerNames,
		BoardSize:   size,
		Rules:       cfg.Rules,
		Weather:     p.Weather,
		Random:      game.NewRandom(seed),
	})
	if err != nil {
		return nil, nil, fail(protocol.ErrCodeInvalidAction, "%v", err)
	}

	info, err := ss.srv.db.CreateGame(ctx, p.Name, size, st)
	if err != nil {
		return nil, nil, fmt.Errorf("create game: %w", err)
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	sess := ss.open(st, info.JoinCode)
	return sess, info, nil
}

// get returns a running game, loading it from the cache or the database
// if needed.
func (ss *sessions) get(ctx context.Context, gameID string) (*session, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if sess, ok := ss.live[gameID]; ok {
		return sess, nil
	}

	info, err := ss.srv.db.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	st, err := ss.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return ss.open(st, info.JoinCode), nil
}

// load picks the newest snapshot between the cache and the database.
func (ss *sessions) load(ctx context.Context, gameID string) (*game.GameState, error) {
	st, err := ss.srv.db.LoadState(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if ss.srv.cache == nil {
		return st, nil
	}
	cached, err := ss.srv.cache.LoadState(ctx, gameID)
	if err != nil {
		ss.srv.log.Warn().Err(err).Str("game", gameID).Msg("Cache read failed, using database snapshot")
		return st, nil
	}
	if cached != nil && cached.Version > st.Version {
		return cached, nil
	}
	return st, nil
}

// open wraps a state in a store wired to persistence and broadcast.
// Callers hold mu.
func (ss *sessions) open(st *game.GameState, joinCode string) *session {
	log := logger.ForGame("store", st.ID)
	persisters := []store.Persister{database.NewStateStore(ss.srv.db, log)}
	broadcasters := []store.Broadcaster{ss.srv.hub}
	if ss.srv.cache != nil {
		persisters = append(persisters, ss.srv.cache)
		broadcasters = append(broadcasters, ss.srv.cache)
	}

	s := store.New(st, store.Options{
		UndoDepth:    ss.srv.gameConfig().UndoDepth,
		Persisters:   persisters,
		Broadcasters: broadcasters,
		Logger:       log,
	})
	updates, cancel := s.Subscribe(16)
	go watch(st.ID, updates)

	sess := &session{store: s, joinCode: joinCode, stop: func() {
		cancel()
		s.Close()
	}}
	ss.live[st.ID] = sess
	log.Info().Int("players", len(st.Players)).Int64("version", st.Version).Msg("Game opened")
	return sess
}

// watch logs turn changes and the end of the game.
func watch(gameID string, updates <-chan *game.GameState) {
	log := logger.ForGame("session", gameID)
	turn := 0
	for st := range updates {
		if st.IsGameOver() {
			log.Info().Int("winner", int(st.Winner)).Str("victory", string(st.Victory)).Msg("Game finished")
			continue
		}
		if st.Turn != turn {
			turn = st.Turn
			log.Debug().Int("turn", turn).Str("phase", string(st.Phase)).Msg("Turn started")
		}
	}
}

func (ss *sessions) count() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.live)
}

// closeAll stops every store after its pending snapshots are saved.
func (ss *sessions) closeAll() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for id, sess := range ss.live {
		sess.stop()
		delete(ss.live, id)
	}
}

// requestError is a failure reported to the client with a specific code.
type requestError struct {
	code protocol.ErrorCode
	msg  string
}

func (e *requestError) Error() string {
	return e.msg
}

func fail(code protocol.ErrorCode, format string, args ...any) error {
	return &requestError{code: code, msg: fmt.Sprintf(format, args...)}
}

// errorCode maps a handler error to a client error code.
func errorCode(err error) (protocol.ErrorCode, bool) {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return re.code, true
	case errors.Is(err, database.ErrGameNotFound), errors.Is(err, database.ErrJoinCodeNotFound):
		return protocol.ErrCodeGameNotFound, true
	default:
		return protocol.ErrCodeInternalError, false
	}
}
