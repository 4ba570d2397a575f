// Package server implements the Empire's Legacy game server.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"empires-legacy/internal/cache"
	"empires-legacy/internal/config"
	"empires-legacy/internal/database"
	"empires-legacy/internal/logger"
	"empires-legacy/internal/protocol"
)

// Version is reported to clients in the welcome message.
const Version = "0.3.0"

// Server is the main game server.
type Server struct {
	db       *database.DB
	cache    *cache.Client // nil when Redis is disabled
	hub      *Hub
	sessions *sessions
	upgrader websocket.Upgrader
	addr     string
	server   *http.Server
	log      zerolog.Logger

	mu       sync.RWMutex
	gameCfg  config.GameConfig
	msgRate  float64
	msgBurst int
}

// Config holds server configuration.
type Config struct {
	Addr         string
	DBPath       string
	RedisURL     string
	RedisTTL     time.Duration
	Game         config.GameConfig
	MessageRate  float64
	MessageBurst int
}

// New creates a new server. A Redis failure is logged and the server runs
// without the cache.
func New(cfg Config) (*Server, error) {
	db, err := database.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Server{
		db:       db,
		addr:     cfg.Addr,
		log:      logger.With("server"),
		gameCfg:  cfg.Game,
		msgRate:  cfg.MessageRate,
		msgBurst: cfg.MessageBurst,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	if s.msgRate <= 0 {
		s.msgRate = 10
	}
	if s.msgBurst <= 0 {
		s.msgBurst = 20
	}

	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		c, err := cache.NewClient(ctx, cfg.RedisURL, cfg.RedisTTL)
		cancel()
		if err != nil {
			s.log.Warn().Err(err).Msg("Redis unavailable, running without cache")
		} else {
			s.cache = c
		}
	}

	s.hub = NewHub()
	s.sessions = newSessions(s)
	return s, nil
}

// SetGameConfig replaces the settings used for games created from now on.
func (s *Server) SetGameConfig(cfg config.GameConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameCfg = cfg
}

func (s *Server) gameConfig() config.GameConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameCfg
}

// Handler returns the HTTP routes served by the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/games", s.handleListGames)
	return mux
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().
		Str("address", "http://localhost"+s.addr).
		Str("websocket", "ws://localhost"+s.addr+"/ws").
		Bool("redis", s.cache != nil).
		Msg("Empire's Legacy server listening")

	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server. Open games flush their pending
// snapshots before the database closes.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.hub.CloseAll()
	s.sessions.closeAll()
	if s.cache != nil {
		s.cache.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// handleWebSocket upgrades HTTP connections to WebSocket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := NewClient(s, conn, s.msgRate, s.msgBurst)
	s.hub.Register(client)

	welcome, _ := protocol.NewMessage(protocol.TypeWelcome, protocol.WelcomePayload{
		ConnectionID: client.ID,
		Version:      Version,
	})
	client.Send(welcome)

	go client.WritePump()
	go client.ReadPump()
}

type healthResponse struct {
	Status      string `json:"status"`
	Games       int    `json:"games"`
	Connections int    `json:"connections"`
	Redis       string `json:"redis,omitempty"`
}

// handleHealth reports whether the database and cache are reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:      "ok",
		Games:       s.sessions.count(),
		Connections: s.hub.ConnectionCount(),
	}
	code := http.StatusOK
	if err := s.db.Ping(ctx); err != nil {
		resp.Status = "database unavailable"
		code = http.StatusServiceUnavailable
	}
	if s.cache != nil {
		resp.Redis = "ok"
		if err := s.cache.Ping(ctx); err != nil {
			resp.Redis = "unavailable"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}

// handleListGames returns every stored game, newest first.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var statuses []database.GameStatus
	if st := r.URL.Query().Get("status"); st != "" {
		statuses = append(statuses, database.GameStatus(st))
	}
	games, err := s.db.ListGames(r.Context(), statuses...)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list games")
		http.Error(w, "Failed to list games", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.GameListPayload{Games: summaries(games)})
}

func summaries(games []*database.GameInfo) []protocol.GameSummary {
	out := make([]protocol.GameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, protocol.GameSummary{
			ID:          g.ID,
			Name:        g.Name,
			JoinCode:    g.JoinCode,
			Status:      string(g.Status),
			PlayerCount: g.PlayerCount,
			BoardSize:   g.BoardSize,
			Version:     g.Version,
			Winner:      g.Winner,
			Victory:     g.Victory,
			CreatedAt:   g.CreatedAt.UnixMilli(),
		})
	}
	return out
}
