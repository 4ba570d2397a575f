// Package logger provides structured logging using zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const milliTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Options control logger output. Zero values fall back to the LOG_LEVEL,
// LOG_FILE and DEV environment variables.
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	NoColor    bool
}

// Init initializes the global logger.
func Init(opts Options) {
	zerolog.TimeFieldFormat = milliTimeFormat
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	const callerWidth = 24
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		path := fmt.Sprintf("%s:%d", filepath.Base(file), line)
		if len(path) >= callerWidth {
			return path[len(path)-callerWidth:]
		}
		return path + strings.Repeat(" ", callerWidth-len(path))
	}

	levelName := opts.Level
	if levelName == "" {
		levelName = os.Getenv("LOG_LEVEL")
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil || levelName == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: milliTimeFormat,
		NoColor:    opts.NoColor || !isDevelopmentMode(),
	}

	file := opts.File
	if file == "" {
		file = os.Getenv("LOG_FILE")
	}
	if file != "" {
		output = io.MultiWriter(output, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    max(1, opts.MaxSizeMB),
			MaxBackups: max(0, opts.MaxBackups),
			MaxAge:     max(0, opts.MaxAgeDays),
			Compress:   opts.Compress,
		})
	}

	log.Logger = zerolog.New(output).With().Timestamp().Caller().Logger()

	log.Info().
		Str("level", level.String()).
		Str("file", file).
		Msg("Logger initialized")
}

func isDevelopmentMode() bool {
	return os.Getenv("DEV") == "true" || os.Getenv("DEV_MODE") == "true"
}

// Get returns the global logger instance.
func Get() zerolog.Logger {
	return log.Logger
}

// With returns the global logger tagged with a component name.
func With(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// ForGame returns a component logger tagged with a game id.
func ForGame(component, gameID string) zerolog.Logger {
	return With(component).With().Str("game", gameID).Logger()
}
