package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empires-legacy/internal/client"
	"empires-legacy/internal/config"
	"empires-legacy/internal/game"
	"empires-legacy/internal/protocol"
	"empires-legacy/internal/server"
)

func testState(t *testing.T) *game.GameState {
	t.Helper()
	st, err := game.NewGame(game.Options{
		ID:      "cli-test",
		Players: 2,
		Radius:  1,
		Rules:   game.DefaultRules(),
		Random:  game.NewRandom(7),
	})
	require.NoError(t, err)
	return st
}

func startServer(t *testing.T) string {
	t.Helper()
	srv, err := server.New(server.Config{
		DBPath: filepath.Join(t.TempDir(), "cli.db"),
		Game:   config.Default().Game,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Stop(context.Background())
	})
	return ts.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFormatState(t *testing.T) {
	st := testState(t)
	out := formatState(st)

	assert.Contains(t, out, "Game cli-test  v0")
	assert.Contains(t, out, "Turn 1  Setup")
	assert.Contains(t, out, "Current player: Player 1 [A]")
	assert.Contains(t, out, "[B] Player 2")
	assert.Contains(t, out, "gold 300")
	assert.Contains(t, out, "0.")
	assert.NotContains(t, out, "Units:")
	claimable := game.ClaimableTerritories(st)
	require.Len(t, claimable, len(st.Territories))
	assert.Contains(t, out, "Claimable: "+formatIDs(claimable)+"\n")

	st.Phase = game.PhaseBuilding
	assert.NotContains(t, formatState(st), "Claimable:")
	assert.Equal(t, "No state\n", formatState(nil))
}

func TestFormatBoardMarksOwners(t *testing.T) {
	st := testState(t)
	st.Territories[2].Owner = 1

	board := formatBoard(st)
	assert.Contains(t, board, "2B")
	assert.Contains(t, board, "1.")
}

func TestFormatCombat(t *testing.T) {
	out := formatCombat(&game.CombatResult{
		Success:           true,
		TerritoryCapture:  true,
		AttackDamage:      40,
		CounterDamage:     0,
		AttackerRemaining: 100,
		DefenderDestroyed: true,
		DefenderLosses:    30,
		Message:           "Territory captured",
	})
	assert.Contains(t, out, "Territory captured\n")
	assert.Contains(t, out, "damage dealt 40, counter damage 0")
	assert.Contains(t, out, "defender hp 0 (lost 30) destroyed")
	assert.Empty(t, formatCombat(nil))
}

func TestFormatHistoryAndGames(t *testing.T) {
	assert.Equal(t, "No events\n", formatHistory(nil))
	assert.Equal(t, "No games\n", formatGames(nil, ""))

	out := formatHistory([]protocol.HistoryEntry{{Version: 3, Turn: 1, Phase: game.PhaseSetup, Type: "CLAIM", Message: "claimed", Details: []string{"extra"}}})
	assert.Contains(t, out, "v3")
	assert.Contains(t, out, "claimed")
	assert.Contains(t, out, "      extra\n")

	out = formatGames([]protocol.GameSummary{{ID: "g1", Name: "Alpha", JoinCode: "ABCD-EFGH", Status: "setup", PlayerCount: 2}}, "g1")
	assert.Contains(t, out, "* g1")
	assert.Contains(t, out, "ABCD-EFGH")
}

func TestParseArguments(t *testing.T) {
	id, err := parseTerritory("12")
	require.NoError(t, err)
	assert.Equal(t, game.TerritoryID(12), id)

	_, err = parseTerritory("-1")
	assert.Error(t, err)
	_, _, err = parsePair([]string{"1", "x"})
	assert.Error(t, err)

	assert.True(t, looksLikeJoinCode("ABCD-EFGH"))
	assert.False(t, looksLikeJoinCode("3f1c2a9e-0000"))
}

func TestCommandsAgainstServer(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	addr := startServer(t)

	out, err := run(t, "--server", addr, "create", "--players", "2", "--size", "small", "--seed", "9")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ Game created")

	client.SetProfile("")
	cfg, err := client.LoadConfig()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.GameID)
	assert.Equal(t, addr, cfg.Server)

	out, err = run(t, "claim", "0")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ CLAIM_TERRITORY accepted (version 1)")
	assert.Contains(t, out, "0A")

	_, err = run(t, "claim", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")

	out, err = run(t, "undo")
	require.NoError(t, err, out)
	assert.Contains(t, out, "now at version 2")

	assert.Eventually(t, func() bool {
		out, err := run(t, "history")
		return err == nil && strings.Contains(out, "v1")
	}, 5*time.Second, 50*time.Millisecond)

	out, err = run(t, "games")
	require.NoError(t, err, out)
	assert.Contains(t, out, "* "+cfg.GameID)
}

func TestCommandsNeedAGame(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	_, err := run(t, "state")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no game selected")
}
