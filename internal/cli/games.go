package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"empires-legacy/internal/client"
	"empires-legacy/internal/game"
	"empires-legacy/internal/protocol"
)

func newCreateCommand(opts *options) *cobra.Command {
	var (
		name    string
		players int
		names   string
		size    string
		weather string
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new game and make it the profile's game",
		Long: `Create a new game on the server. Without --seat the profile may act
for every player, which suits hot-seat play.

Example:
  empire create --players 3 --size small --names Ada,Brunel,Curie`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
			defer cancel()

			c, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			p := protocol.CreateGamePayload{
				Name:      name,
				Players:   players,
				BoardSize: game.BoardSize(size),
				Weather:   game.Weather(weather),
				Seed:      seed,
			}
			if names != "" {
				p.PlayerNames = strings.Split(names, ",")
			}
			created, err := c.CreateGame(ctx, p)
			if err != nil {
				return fmt.Errorf("create failed: %w", err)
			}
			if err := opts.remember(created.GameID, created.JoinCode, opts.seatPtr()); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}

			fmt.Fprintln(opts.out, "✓ Game created")
			fmt.Fprintf(opts.out, "  Game ID:   %s\n", created.GameID)
			fmt.Fprintf(opts.out, "  Join code: %s\n\n", created.JoinCode)
			fmt.Fprint(opts.out, formatState(created.State))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Game name")
	cmd.Flags().IntVar(&players, "players", 2, "Number of players (1-8)")
	cmd.Flags().StringVar(&names, "names", "", "Comma separated player names")
	cmd.Flags().StringVar(&size, "size", "", "Board size: small, medium or large (default from server)")
	cmd.Flags().StringVar(&weather, "weather", "", "Weather: clear, rain or fog")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Board seed (0 picks one at random)")

	return cmd
}

func newJoinCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "join <game-id|join-code>",
		Short: "Follow an existing game and make it the profile's game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
			defer cancel()

			c, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			p := protocol.JoinGamePayload{Seat: opts.seatPtr()}
			if looksLikeJoinCode(args[0]) {
				p.JoinCode = strings.ToUpper(args[0])
			} else {
				p.GameID = args[0]
			}
			joined, err := c.JoinGame(ctx, p)
			if err != nil {
				return fmt.Errorf("join failed: %w", err)
			}
			if err := opts.remember(joined.GameID, joined.JoinCode, joined.Seat); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}

			fmt.Fprintf(opts.out, "✓ Joined game %s\n\n", joined.GameID)
			fmt.Fprint(opts.out, formatState(joined.State))
			return nil
		},
	}
}

// looksLikeJoinCode matches the XXXX-XXXX codes the server hands out.
func looksLikeJoinCode(s string) bool {
	return len(s) == 9 && s[4] == '-'
}

func newGamesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List games on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
			defer cancel()

			c, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			games, err := c.ListGames(ctx)
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}
			fmt.Fprint(opts.out, formatGames(games, opts.gameID))
			return nil
		},
	}
}

func newStateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the board, players and turn of the profile's game",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withGame(func(ctx context.Context, c *client.NetworkClient, st *game.GameState) error {
				fmt.Fprint(opts.out, formatState(st))
				return nil
			})
		},
	}
}

func newHistoryCommand(opts *options) *cobra.Command {
	var since int64

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the recorded events of the profile's game",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withGame(func(ctx context.Context, c *client.NetworkClient, st *game.GameState) error {
				events, err := c.History(ctx, since)
				if err != nil {
					return fmt.Errorf("history failed: %w", err)
				}
				fmt.Fprint(opts.out, formatHistory(events))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&since, "since", 0, "Only show events after this version")
	return cmd
}

func newPreviewCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <from> <to>",
		Short: "Predict the outcome of an attack without making it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parsePair(args)
			if err != nil {
				return err
			}
			return opts.withGame(func(ctx context.Context, c *client.NetworkClient, st *game.GameState) error {
				res, err := c.PreviewAttack(ctx, opts.actor(st), from, to)
				if err != nil {
					return fmt.Errorf("preview failed: %w", err)
				}
				if !res.Valid {
					fmt.Fprintf(opts.out, "✗ Attack not allowed: %s\n", res.Reason)
					return nil
				}
				fmt.Fprint(opts.out, formatCombat(res.Result))
				return nil
			})
		},
	}
}

func newUndoCommand(opts *options, redo bool) *cobra.Command {
	use, short := "undo", "Step the profile's game back one action"
	if redo {
		use, short = "redo", "Reapply the last undone action"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withGame(func(ctx context.Context, c *client.NetworkClient, st *game.GameState) error {
				move := c.Undo
				if redo {
					move = c.Redo
				}
				res, err := move(ctx)
				if err != nil {
					return fmt.Errorf("%s failed: %w", use, err)
				}
				fmt.Fprintf(opts.out, "✓ %s done, now at version %d\n", use, res.Version)
				return nil
			})
		},
	}
}

func newWatchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the board every time the profile's game changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.gameID == "" {
				return fmt.Errorf("no game selected: run create or join first, or pass --game")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			c := client.NewNetworkClient(opts.logger())
			updates := make(chan *game.GameState, 8)
			c.OnMessage = func(m *protocol.Message) {
				if m.Type != protocol.TypeGameState {
					return
				}
				var p protocol.GameStatePayload
				if err := m.ParsePayload(&p); err != nil {
					return
				}
				select {
				case updates <- p.State:
				default:
				}
			}
			disconnected := make(chan error, 1)
			c.OnDisconnect = func(err error) { disconnected <- err }

			connectCtx, cancel := context.WithTimeout(ctx, opts.timeout)
			defer cancel()
			if _, err := c.Connect(connectCtx, opts.server); err != nil {
				return fmt.Errorf("failed to connect to %s: %w", opts.server, err)
			}
			defer c.Close()

			joined, err := c.JoinGame(connectCtx, protocol.JoinGamePayload{GameID: opts.gameID})
			if err != nil {
				return fmt.Errorf("join game %s: %w", opts.gameID, err)
			}
			fmt.Fprint(opts.out, formatState(joined.State))

			for {
				select {
				case st := <-updates:
					fmt.Fprintln(opts.out)
					fmt.Fprint(opts.out, formatState(st))
					if st.IsGameOver() {
						return nil
					}
				case err := <-disconnected:
					if err != nil {
						return fmt.Errorf("connection lost: %w", err)
					}
					return nil
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
}
