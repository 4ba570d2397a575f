// Package game contains the core rules engine for Empire's Legacy.
// This package is shared between client and server.
package game

import (
	"fmt"

	"github.com/google/uuid"
)

// Phase is a stage of a player's turn.
type Phase string

const (
	PhaseSetup       Phase = "setup"
	PhaseBuilding    Phase = "building"
	PhaseRecruitment Phase = "recruitment"
	PhaseCombat      Phase = "combat"
	PhaseEnd         Phase = "end"
	PhasePlaying     Phase = "playing" // simple mode, spans build, recruit and combat
	PhaseCompleted   Phase = "completed"
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "Setup"
	case PhaseBuilding:
		return "Building"
	case PhaseRecruitment:
		return "Recruitment"
	case PhaseCombat:
		return "Combat"
	case PhaseEnd:
		return "End"
	case PhasePlaying:
		return "Playing"
	case PhaseCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Weather modifies attack damage.
type Weather string

const (
	WeatherClear Weather = "clear"
	WeatherRain  Weather = "rain"
	WeatherFog   Weather = "fog"
)

// TimeOfDay modifies the damage defenders take.
type TimeOfDay string

const (
	Day   TimeOfDay = "day"
	Night TimeOfDay = "night"
)

// VictoryKind records how the game was won.
type VictoryKind string

const (
	VictoryNone         VictoryKind = ""
	VictoryLastStanding VictoryKind = "last_standing"
	VictoryDomination   VictoryKind = "domination"
	VictoryEconomic     VictoryKind = "economic"
	VictoryMilitary     VictoryKind = "military"
)

// ActionFlags records which limited actions the current player has used.
type ActionFlags struct {
	Build        bool          `json:"build"`
	Recruit      bool          `json:"recruit"`
	Expand       bool          `json:"expand"`
	Attack       bool          `json:"attack"`
	AttackedFrom []TerritoryID `json:"attackedFrom"`
}

func (f ActionFlags) attackedFrom(id TerritoryID) bool {
	for _, o := range f.AttackedFrom {
		if o == id {
			return true
		}
	}
	return false
}

// Collection guards resource collection so each player collects at most
// once per turn.
type Collection struct {
	Turn    int        `json:"turn"`
	Players []PlayerID `json:"players"`
}

func (c Collection) has(turn int, p PlayerID) bool {
	if c.Turn != turn {
		return false
	}
	for _, id := range c.Players {
		if id == p {
			return true
		}
	}
	return false
}

// Update is one entry of the append-only event log.
type Update struct {
	Type      string   `json:"type"`
	Message   string   `json:"message"`
	Timestamp int64    `json:"timestamp"`
	PlayerID  PlayerID `json:"playerId"`
	Turn      int      `json:"turn"`
	Phase     Phase    `json:"phase"`
	Details   []string `json:"details,omitempty"`
}

// GameState represents the complete state of a game.
type GameState struct {
	ID            string                   `json:"id"`
	Rules         Rules                    `json:"rules"`
	Players       []*Player                `json:"players"`
	Territories   []*Territory             `json:"territories"`
	Units         map[UnitID]*MilitaryUnit `json:"units"`
	NextUnitID    UnitID                   `json:"nextUnitId"`
	CurrentPlayer PlayerID                 `json:"currentPlayer"`
	Phase         Phase                    `json:"phase"`
	Turn          int                      `json:"turn"`
	Actions       ActionFlags              `json:"actions"`
	Collection    Collection               `json:"collection"`
	Updates       []Update                 `json:"updates"`
	Version       int64                    `json:"version"`
	Winner        PlayerID                 `json:"winner"`
	Victory       VictoryKind              `json:"victory,omitempty"`
	Weather       Weather                  `json:"weather"`
	TimeOfDay     TimeOfDay                `json:"timeOfDay"`
}

// Options configure a new game.
type Options struct {
	ID          string
	Players     int
	PlayerNames []string // optional, padded with defaults
	BoardSize   BoardSize
	Radius      int // overrides BoardSize when > 0
	Rules       Rules
	Weather     Weather
	Random      Random
}

// NewGame creates a game in the setup phase.
func NewGame(opts Options) (*GameState, error) {
	if opts.Players < 1 || opts.Players > MaxPlayers {
		return nil, fmt.Errorf("new game: player count %d out of range 1-%d", opts.Players, MaxPlayers)
	}
	rules := opts.Rules.normalize()

	radius := opts.Radius
	if radius <= 0 {
		radius = BoardRadius(opts.Players, opts.BoardSize, rules.MaxBoardRadius)
	}
	territories, err := GenerateBoardWithRadius(radius, opts.Random)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}

	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}
	weather := opts.Weather
	if weather == "" {
		weather = WeatherClear
	}

	colors := AllColors()
	players := make([]*Player, opts.Players)
	for i := range players {
		name := fmt.Sprintf("Player %d", i+1)
		if i < len(opts.PlayerNames) && opts.PlayerNames[i] != "" {
			name = opts.PlayerNames[i]
		}
		players[i] = NewPlayer(PlayerID(i), name, colors[i%len(colors)], rules.StartingResources)
	}

	s := &GameState{
		ID:            id,
		Rules:         rules,
		Players:       players,
		Territories:   territories,
		Units:         make(map[UnitID]*MilitaryUnit),
		NextUnitID:    1,
		CurrentPlayer: 0,
		Phase:         PhaseSetup,
		Turn:          1,
		Actions:       ActionFlags{AttackedFrom: []TerritoryID{}},
		Collection:    Collection{Players: []PlayerID{}},
		Updates:       []Update{},
		Version:       0,
		Winner:        NoPlayer,
		Weather:       weather,
		TimeOfDay:     Day,
	}
	s.refreshDerived()
	return s, nil
}

// CreateInitialGameState creates a game with default rules and a random board.
func CreateInitialGameState(numPlayers int, size BoardSize) (*GameState, error) {
	return NewGame(Options{Players: numPlayers, BoardSize: size, Rules: DefaultRules()})
}

// Clone returns a deep copy that shares nothing with s.
func (s *GameState) Clone() *GameState {
	c := *s
	c.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		c.Players[i] = p.clone()
	}
	c.Territories = make([]*Territory, len(s.Territories))
	for i, t := range s.Territories {
		c.Territories[i] = t.clone()
	}
	c.Units = make(map[UnitID]*MilitaryUnit, len(s.Units))
	for id, u := range s.Units {
		cu := *u
		c.Units[id] = &cu
	}
	c.Actions.AttackedFrom = append([]TerritoryID{}, s.Actions.AttackedFrom...)
	c.Collection.Players = append([]PlayerID{}, s.Collection.Players...)
	c.Updates = make([]Update, len(s.Updates))
	for i, u := range s.Updates {
		u.Details = append([]string(nil), u.Details...)
		c.Updates[i] = u
	}
	return &c
}

// Player returns the player with the given id, or nil.
func (s *GameState) Player(id PlayerID) *Player {
	if id < 0 || int(id) >= len(s.Players) {
		return nil
	}
	return s.Players[id]
}

// Territory returns the territory with the given id, or nil.
func (s *GameState) Territory(id TerritoryID) *Territory {
	if id < 0 || int(id) >= len(s.Territories) {
		return nil
	}
	return s.Territories[id]
}

// Unit returns the unit with the given id, or nil.
func (s *GameState) Unit(id UnitID) *MilitaryUnit {
	if id == NoUnit {
		return nil
	}
	return s.Units[id]
}

// UnitAt returns the unit stationed in a territory, or nil.
func (s *GameState) UnitAt(id TerritoryID) *MilitaryUnit {
	t := s.Territory(id)
	if t == nil {
		return nil
	}
	return s.Unit(t.UnitID)
}

// GetCurrentPlayer returns the player whose turn it is.
func (s *GameState) GetCurrentPlayer() *Player {
	return s.Player(s.CurrentPlayer)
}

// IsGameOver reports whether a winner has been decided.
func (s *GameState) IsGameOver() bool {
	return s.Winner != NoPlayer
}

// ActivePlayers returns the players that have not been eliminated.
func (s *GameState) ActivePlayers() []*Player {
	var active []*Player
	for _, p := range s.Players {
		if !p.Eliminated {
			active = append(active, p)
		}
	}
	return active
}

// UnclaimedCount returns how many territories have no owner.
func (s *GameState) UnclaimedCount() int {
	n := 0
	for _, t := range s.Territories {
		if t.IsUnclaimed() {
			n++
		}
	}
	return n
}

// Capitals returns the ids of capital territories owned by p.
func (s *GameState) Capitals(p PlayerID) []TerritoryID {
	var ids []TerritoryID
	for _, t := range s.Territories {
		if t.IsOwnedBy(p) && t.Terrain == TerrainCapital {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// LastUpdate returns the most recent log entry, if any.
func (s *GameState) LastUpdate() (Update, bool) {
	if len(s.Updates) == 0 {
		return Update{}, false
	}
	return s.Updates[len(s.Updates)-1], true
}

// removeUnit deletes a unit from the arena and clears its territory slot.
func (s *GameState) removeUnit(id UnitID) {
	u := s.Units[id]
	if u == nil {
		return
	}
	if t := s.Territory(u.TerritoryID); t != nil && t.UnitID == id {
		t.UnitID = NoUnit
	}
	delete(s.Units, id)
}

// refreshDerived recomputes each player's territory, unit and building
// lists and score from the arenas. Outside setup a player left with no
// territory is eliminated.
func (s *GameState) refreshDerived() {
	for _, p := range s.Players {
		p.Territories = p.Territories[:0]
		p.Units = p.Units[:0]
		p.Buildings = make(map[BuildingType]int)
	}
	for _, t := range s.Territories {
		p := s.Player(t.Owner)
		if p == nil {
			continue
		}
		p.Territories = append(p.Territories, t.ID)
		if t.HasBuilding() {
			p.Buildings[t.Building]++
		}
	}

	for _, id := range sortedUnitIDs(s) {
		if p := s.Player(s.Units[id].Owner); p != nil {
			p.Units = append(p.Units, id)
		}
	}

	for _, p := range s.Players {
		if s.Phase != PhaseSetup && len(p.Territories) == 0 {
			p.Eliminated = true
		}
		p.Score = score(p)
	}
}

// score is 10 per territory, 5 per building, 3 per unit and 1 per 100 gold.
func score(p *Player) int {
	return 10*len(p.Territories) + 5*p.BuildingCount() + 3*len(p.Units) + p.Resources.Gold/100
}
