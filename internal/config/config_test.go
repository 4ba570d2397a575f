package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empires-legacy/internal/game"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "30000", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "data/empire.db", cfg.Database.Path)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 50, cfg.Game.UndoDepth)
	assert.Equal(t, game.DefaultRules(), cfg.Game.Rules)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "4000"
database:
  path: /tmp/empire-test.db
redis:
  url: redis://localhost:6379/1
game:
  undo_depth: 10
  rules:
    mode: simple
    recruit_requires_barracks: false
    economic_victory_gold: 1000
    starting_resources:
      gold: 500
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "/tmp/empire-test.db", cfg.Database.Path)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 10, cfg.Game.UndoDepth)

	rules := cfg.Game.Rules
	assert.Equal(t, game.ModeSimple, rules.Mode)
	assert.False(t, rules.RecruitRequiresBarracks)
	assert.Equal(t, 1000, rules.EconomicVictoryGold)
	assert.Equal(t, 500, rules.StartingResources.Gold)
	assert.Equal(t, 100, rules.StartingResources.Wood, "unset nested keys keep defaults")
	assert.True(t, rules.SetupClaimBecomesCapital)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"4000\"\n")
	t.Setenv("EMPIRE_SERVER_PORT", "5000")
	t.Setenv("EMPIRE_GAME_RULES_ATTACK_LIMIT", "per_origin")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, game.AttackOncePerOrigin, cfg.Game.Rules.AttackLimit)
}

func TestInvalidConfig(t *testing.T) {
	path := writeConfig(t, `
game:
  rules:
    mode: chaotic
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mode")
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, game.DefaultRules(), cfg.Game.Rules)
}
