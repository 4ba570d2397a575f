package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"empires-legacy/internal/client"
	"empires-legacy/internal/game"
)

// actionSpec describes one command that submits a single game action.
type actionSpec struct {
	use   string
	short string
	args  int
	build func(p game.PlayerID, args []string) (game.Action, error)
}

func newActionCommands(opts *options) []*cobra.Command {
	specs := []actionSpec{
		{
			use:   "claim <territory>",
			short: "Claim an unowned territory during setup",
			args:  1,
			build: func(p game.PlayerID, args []string) (game.Action, error) {
				t, err := parseTerritory(args[0])
				return game.NewClaim(p, t), err
			},
		},
		{
			use:   "build <territory> <building>",
			short: "Construct a building (farm, lumber_mill, mine, market, barracks, watchtower, walls, fortress)",
			args:  2,
			build: func(p game.PlayerID, args []string) (game.Action, error) {
				t, err := parseTerritory(args[0])
				return game.NewBuild(p, t, game.BuildingType(args[1])), err
			},
		},
		{
			use:   "recruit <territory> <unit>",
			short: "Recruit a unit (infantry, cavalry, artillery)",
			args:  2,
			build: func(p game.PlayerID, args []string) (game.Action, error) {
				t, err := parseTerritory(args[0])
				return game.NewRecruit(p, t, game.UnitType(args[1])), err
			},
		},
		{
			use:   "attack <from> <to>",
			short: "Attack a neighboring territory",
			args:  2,
			build: func(p game.PlayerID, args []string) (game.Action, error) {
				from, to, err := parsePair(args)
				return game.NewAttack(p, from, to), err
			},
		},
		{
			use:   "expand <territory>",
			short: "Expand into an adjacent unclaimed territory",
			args:  1,
			build: func(p game.PlayerID, args []string) (game.Action, error) {
				t, err := parseTerritory(args[0])
				return game.NewExpand(p, t), err
			},
		},
		{
			use:   "end-turn",
			short: "Finish the current turn",
			build: func(p game.PlayerID, _ []string) (game.Action, error) {
				return game.NewEndTurn(p), nil
			},
		},
		{
			use:   "end-phase",
			short: "Advance to the next phase of the turn",
			build: func(p game.PlayerID, _ []string) (game.Action, error) {
				return game.NewEndPhase(p), nil
			},
		},
	}

	cmds := make([]*cobra.Command, 0, len(specs))
	for _, spec := range specs {
		cmds = append(cmds, newActionCommand(opts, spec))
	}
	return cmds
}

func newActionCommand(opts *options, spec actionSpec) *cobra.Command {
	return &cobra.Command{
		Use:   spec.use,
		Short: spec.short,
		Args:  cobra.ExactArgs(spec.args),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withGame(func(ctx context.Context, c *client.NetworkClient, st *game.GameState) error {
				a, err := spec.build(opts.actor(st), args)
				if err != nil {
					return err
				}
				res, err := c.Submit(ctx, a)
				if err != nil {
					return fmt.Errorf("submit failed: %w", err)
				}
				if !res.Success {
					return fmt.Errorf("%s rejected: %s", a.Type(), res.Reason)
				}

				fmt.Fprintf(opts.out, "✓ %s accepted (version %d)\n", a.Type(), res.Version)
				if res.Combat != nil {
					fmt.Fprint(opts.out, formatCombat(res.Combat))
				}
				if next, err := c.State(ctx); err == nil {
					fmt.Fprintln(opts.out)
					fmt.Fprint(opts.out, formatState(next))
				}
				return nil
			})
		},
	}
}

func parseTerritory(s string) (game.TerritoryID, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return game.NoTerritory, fmt.Errorf("invalid territory %q: want a non-negative number", s)
	}
	return game.TerritoryID(n), nil
}

func parsePair(args []string) (game.TerritoryID, game.TerritoryID, error) {
	from, err := parseTerritory(args[0])
	if err != nil {
		return game.NoTerritory, game.NoTerritory, err
	}
	to, err := parseTerritory(args[1])
	if err != nil {
		return game.NoTerritory, game.NoTerritory, err
	}
	return from, to, nil
}
