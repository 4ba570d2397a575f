// Package cli implements the empire command line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"empires-legacy/internal/client"
	"empires-legacy/internal/game"
	"empires-legacy/internal/protocol"
)

// options are the global flags shared by every command.
type options struct {
	server  string
	profile string
	gameID  string
	seat    int
	verbose bool
	timeout time.Duration

	cfg *client.Config
	out io.Writer
}

// NewRootCommand creates the root command for the CLI.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "empire",
		Short: "Empire's Legacy CLI - play against an Empire's Legacy server",
		Long: `Empire's Legacy CLI talks to a game server over WebSocket.
The game you create or join is remembered in your profile, so later
commands act on it without repeating its id.

Examples:
  empire create --players 2 --names Ada,Brunel
  empire claim 3
  empire end-turn
  empire build 3 barracks
  empire preview 3 4
  empire attack 3 4
  empire join ABCD-EFGH --seat 1 --profile brunel`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.out = cmd.OutOrStdout()
			client.SetProfile(opts.profile)
			cfg, err := client.LoadConfig()
			if err != nil {
				return fmt.Errorf("load profile: %w", err)
			}
			opts.cfg = cfg
			if opts.server == "" {
				opts.server = cfg.Server
			}
			if opts.gameID == "" {
				opts.gameID = cfg.GameID
			}
			if !cmd.Flags().Changed("seat") && cfg.Seat != nil {
				opts.seat = int(*cfg.Seat)
			}
			return nil
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.server, "server", "", "Server address (default from profile, localhost:30000)")
	rootCmd.PersistentFlags().StringVar(&opts.profile, "profile", "", "Profile name for a separate config")
	rootCmd.PersistentFlags().StringVar(&opts.gameID, "game", "", "Game id (default from profile)")
	rootCmd.PersistentFlags().IntVar(&opts.seat, "seat", -1, "Player to act as (default: the current player)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(newCreateCommand(opts))
	rootCmd.AddCommand(newJoinCommand(opts))
	rootCmd.AddCommand(newGamesCommand(opts))
	rootCmd.AddCommand(newStateCommand(opts))
	rootCmd.AddCommand(newHistoryCommand(opts))
	rootCmd.AddCommand(newPreviewCommand(opts))
	rootCmd.AddCommand(newWatchCommand(opts))
	rootCmd.AddCommand(newUndoCommand(opts, false))
	rootCmd.AddCommand(newUndoCommand(opts, true))
	for _, cmd := range newActionCommands(opts) {
		rootCmd.AddCommand(cmd)
	}

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) logger() zerolog.Logger {
	if !o.verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// connect opens a connection to the server.
func (o *options) connect(ctx context.Context) (*client.NetworkClient, error) {
	c := client.NewNetworkClient(o.logger())
	if _, err := c.Connect(ctx, o.server); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", o.server, err)
	}
	return c, nil
}

// withGame connects, follows the profile's game and runs fn.
func (o *options) withGame(fn func(ctx context.Context, c *client.NetworkClient, st *game.GameState) error) error {
	if o.gameID == "" {
		return fmt.Errorf("no game selected: run create or join first, or pass --game")
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	c, err := o.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	joined, err := c.JoinGame(ctx, protocol.JoinGamePayload{GameID: o.gameID, Seat: o.seatPtr()})
	if err != nil {
		return fmt.Errorf("join game %s: %w", o.gameID, err)
	}
	return fn(ctx, c, joined.State)
}

func (o *options) seatPtr() *game.PlayerID {
	if o.seat < 0 {
		return nil
	}
	p := game.PlayerID(o.seat)
	return &p
}

// actor is the player commands act for: the seat, or whoever's turn it is.
func (o *options) actor(st *game.GameState) game.PlayerID {
	if o.seat >= 0 {
		return game.PlayerID(o.seat)
	}
	return st.CurrentPlayer
}

// remember stores the game in the profile for later commands.
func (o *options) remember(gameID, joinCode string, seat *game.PlayerID) error {
	o.cfg.Server = o.server
	o.cfg.GameID = gameID
	o.cfg.JoinCode = joinCode
	o.cfg.Seat = seat
	return o.cfg.Save()
}
