package game

// Slot limits of the canonical model.
const (
	MaxUnitTypesPerTerritory = 2
	MaxBuildingsPerTerritory = 1
)

// Mode selects the phase structure of a turn.
type Mode string

const (
	// ModePhased steps building, recruitment, combat and end.
	ModePhased Mode = "phased"
	// ModeSimple uses a single playing phase per turn.
	ModeSimple Mode = "simple"
)

// ActionScope controls when per-turn action flags reset.
type ActionScope string

const (
	ScopePerTurn  ActionScope = "per_turn"
	ScopePerPhase ActionScope = "per_phase"
)

// AttackLimit controls how many attacks a player may launch.
type AttackLimit string

const (
	AttackOncePerTurn   AttackLimit = "per_turn"
	AttackOncePerOrigin AttackLimit = "per_origin"
)

// LumberMillMode selects how a lumber mill boosts wood.
type LumberMillMode string

const (
	LumberMillFlat    LumberMillMode = "flat"
	LumberMillPercent LumberMillMode = "percent"
)

// Rules are the tunable thresholds of a game. They travel with the state so
// a persisted game keeps the rules it was created with.
type Rules struct {
	Mode                     Mode           `json:"mode" mapstructure:"mode" validate:"oneof=phased simple"`
	ActionScope              ActionScope    `json:"actionScope" mapstructure:"action_scope" validate:"oneof=per_turn per_phase"`
	AttackLimit              AttackLimit    `json:"attackLimit" mapstructure:"attack_limit" validate:"oneof=per_turn per_origin"`
	StartingResources        Resources      `json:"startingResources" mapstructure:"starting_resources"`
	ExpansionCost            Resources      `json:"expansionCost" mapstructure:"expansion_cost"`
	RecruitRequiresBarracks  bool           `json:"recruitRequiresBarracks" mapstructure:"recruit_requires_barracks"`
	RequireExpandInBuilding  bool           `json:"requireExpandInBuilding" mapstructure:"require_expand_in_building"`
	SetupClaimBecomesCapital bool           `json:"setupClaimBecomesCapital" mapstructure:"setup_claim_becomes_capital"`
	DominationShare          float64        `json:"dominationShare" mapstructure:"domination_share" validate:"gt=0,lte=1"`
	EconomicVictoryGold      int            `json:"economicVictoryGold" mapstructure:"economic_victory_gold" validate:"gte=0"`
	MilitaryVictoryUnits     int            `json:"militaryVictoryUnits" mapstructure:"military_victory_units" validate:"gte=0"`
	CapitalGoldBonus         int            `json:"capitalGoldBonus" mapstructure:"capital_gold_bonus" validate:"gte=0"`
	LumberMillMode           LumberMillMode `json:"lumberMillMode" mapstructure:"lumber_mill_mode" validate:"oneof=flat percent"`
	LumberMillFlatWood       int            `json:"lumberMillFlatWood" mapstructure:"lumber_mill_flat_wood" validate:"gte=0"`
	LumberMillWoodPercent    int            `json:"lumberMillWoodPercent" mapstructure:"lumber_mill_wood_percent" validate:"gte=0"`
	StarvationDamage         int            `json:"starvationDamage" mapstructure:"starvation_damage" validate:"gte=0"`
	MaxExperience            int            `json:"maxExperience" mapstructure:"max_experience" validate:"gte=0"`
	NightEveryNthTurn        int            `json:"nightEveryNthTurn" mapstructure:"night_every_nth_turn" validate:"gte=0"`
	MaxBoardRadius           int            `json:"maxBoardRadius" mapstructure:"max_board_radius" validate:"gte=1,lte=12"`
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		Mode:                     ModePhased,
		ActionScope:              ScopePerTurn,
		AttackLimit:              AttackOncePerTurn,
		StartingResources:        Resources{Gold: 300, Wood: 100, Stone: 100, Food: 100},
		ExpansionCost:            Resources{Gold: 50, Food: 25},
		RecruitRequiresBarracks:  true,
		RequireExpandInBuilding:  false,
		SetupClaimBecomesCapital: true,
		DominationShare:          0.75,
		EconomicVictoryGold:      10000,
		MilitaryVictoryUnits:     15,
		CapitalGoldBonus:         25,
		LumberMillMode:           LumberMillFlat,
		LumberMillFlatWood:       20,
		LumberMillWoodPercent:    50,
		StarvationDamage:         20,
		MaxExperience:            5,
		NightEveryNthTurn:        0,
		MaxBoardRadius:           6,
	}
}

// normalize fills unset fields of r from the defaults. Booleans are taken
// as given.
func (r Rules) normalize() Rules {
	d := DefaultRules()
	if r.Mode == "" {
		r.Mode = d.Mode
	}
	if r.ActionScope == "" {
		r.ActionScope = d.ActionScope
	}
	if r.AttackLimit == "" {
		r.AttackLimit = d.AttackLimit
	}
	if r.StartingResources.IsZero() {
		r.StartingResources = d.StartingResources
	}
	if r.ExpansionCost.IsZero() {
		r.ExpansionCost = d.ExpansionCost
	}
	if r.DominationShare <= 0 {
		r.DominationShare = d.DominationShare
	}
	if r.LumberMillMode == "" {
		r.LumberMillMode = d.LumberMillMode
	}
	if r.MaxBoardRadius <= 0 {
		r.MaxBoardRadius = d.MaxBoardRadius
	}
	return r
}
