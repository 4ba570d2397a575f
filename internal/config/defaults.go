package config

import (
	"time"

	"github.com/spf13/viper"

	"empires-legacy/internal/game"
)

// registerDefaults gives viper a value for every key. Keys must be known
// to viper for AutomaticEnv to pick up their overrides, and booleans
// cannot be defaulted after unmarshalling.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "30000")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.message_rate", 10.0)
	v.SetDefault("server.message_burst", 20)

	v.SetDefault("database.path", "data/empire.db")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.state_ttl", 24*time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 14)
	v.SetDefault("logging.compress", false)

	v.SetDefault("game.undo_depth", 50)
	v.SetDefault("game.board_size", string(game.BoardMedium))

	r := game.DefaultRules()
	v.SetDefault("game.rules.mode", string(r.Mode))
	v.SetDefault("game.rules.action_scope", string(r.ActionScope))
	v.SetDefault("game.rules.attack_limit", string(r.AttackLimit))
	v.SetDefault("game.rules.starting_resources.gold", r.StartingResources.Gold)
	v.SetDefault("game.rules.starting_resources.wood", r.StartingResources.Wood)
	v.SetDefault("game.rules.starting_resources.stone", r.StartingResources.Stone)
	v.SetDefault("game.rules.starting_resources.food", r.StartingResources.Food)
	v.SetDefault("game.rules.expansion_cost.gold", r.ExpansionCost.Gold)
	v.SetDefault("game.rules.expansion_cost.food", r.ExpansionCost.Food)
	v.SetDefault("game.rules.recruit_requires_barracks", r.RecruitRequiresBarracks)
	v.SetDefault("game.rules.require_expand_in_building", r.RequireExpandInBuilding)
	v.SetDefault("game.rules.setup_claim_becomes_capital", r.SetupClaimBecomesCapital)
	v.SetDefault("game.rules.domination_share", r.DominationShare)
	v.SetDefault("game.rules.economic_victory_gold", r.EconomicVictoryGold)
	v.SetDefault("game.rules.military_victory_units", r.MilitaryVictoryUnits)
	v.SetDefault("game.rules.capital_gold_bonus", r.CapitalGoldBonus)
	v.SetDefault("game.rules.lumber_mill_mode", string(r.LumberMillMode))
	v.SetDefault("game.rules.lumber_mill_flat_wood", r.LumberMillFlatWood)
	v.SetDefault("game.rules.lumber_mill_wood_percent", r.LumberMillWoodPercent)
	v.SetDefault("game.rules.starvation_damage", r.StarvationDamage)
	v.SetDefault("game.rules.max_experience", r.MaxExperience)
	v.SetDefault("game.rules.night_every_nth_turn", r.NightEveryNthTurn)
	v.SetDefault("game.rules.max_board_radius", r.MaxBoardRadius)
}

// SetDefaults fills values that are still zero after unmarshalling, for
// configs built without viper.
func SetDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "30000"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Server.MessageRate == 0 {
		cfg.Server.MessageRate = 10
	}
	if cfg.Server.MessageBurst == 0 {
		cfg.Server.MessageBurst = 20
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/empire.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Game.BoardSize == "" {
		cfg.Game.BoardSize = string(game.BoardMedium)
	}
	if cfg.Game.Rules.Mode == "" {
		cfg.Game.Rules = game.DefaultRules()
	}
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{Game: GameConfig{UndoDepth: 50}}
	SetDefaults(cfg)
	return cfg
}
