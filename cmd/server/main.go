package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"empires-legacy/internal/config"
	"empires-legacy/internal/logger"
	"empires-legacy/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Config file (defaults to ./config.yaml if present)")
	port := flag.String("port", "", "Server port, overrides the config")
	dbPath := flag.String("db", "", "Database path, overrides the config")
	flag.Parse()

	loader, err := config.NewLoader(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg := loader.Config()

	logger.Init(logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})

	actualPort := cfg.Server.Port
	if *port != "" {
		actualPort = *port
	}
	// PORT is set by hosting platforms such as Render.com
	if envPort := os.Getenv("PORT"); envPort != "" {
		actualPort = envPort
		log.Info().Str("port", actualPort).Msg("Using PORT from environment")
	}

	actualDBPath := cfg.Database.Path
	if *dbPath != "" {
		actualDBPath = *dbPath
	}
	// DB_PATH points at a persistent disk in cloud deployments
	if envDBPath := os.Getenv("DB_PATH"); envDBPath != "" {
		actualDBPath = envDBPath
		log.Info().Str("db", actualDBPath).Msg("Using DB_PATH from environment")
	}

	srv, err := server.New(server.Config{
		Addr:         ":" + actualPort,
		DBPath:       actualDBPath,
		RedisURL:     cfg.Redis.URL,
		RedisTTL:     cfg.Redis.StateTTL,
		Game:         cfg.Game,
		MessageRate:  cfg.Server.MessageRate,
		MessageBurst: cfg.Server.MessageBurst,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	loader.Watch(func(c *config.Config) {
		srv.SetGameConfig(c.Game)
	})

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server error")
			done <- syscall.SIGTERM
		}
	}()

	log.Info().Str("db", actualDBPath).Msg("Empire's Legacy server running")

	<-done
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
}
