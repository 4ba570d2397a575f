package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestGame creates a two player game on the seven territory board with
// every territory set to plains, so yields are predictable.
//
// Board layout (ids):
//
//	  2 5
//	 0 3 6
//	  1 4
func newTestGame(t *testing.T, rules Rules) *GameState {
	t.Helper()
	s, err := NewGame(Options{
		ID:      "test-game",
		Players: 2,
		Radius:  1,
		Rules:   rules,
		Random:  rand.New(rand.NewSource(42)),
	})
	require.NoError(t, err)
	require.Len(t, s.Territories, 7)
	for _, terr := range s.Territories {
		terr.Terrain = TerrainPlains
		terr.Yield = Resources{Food: 20, Gold: 5}
	}
	return s
}

func mustApply(t *testing.T, s *GameState, a Action) *GameState {
	t.Helper()
	next, _, err := Apply(s, a)
	require.NoError(t, err)
	return next
}

// playSetup has player 0 claim territory 0 and player 1 claim territory 6.
func playSetup(t *testing.T, s *GameState) *GameState {
	t.Helper()
	s = mustApply(t, s, NewClaim(0, 0))
	s = mustApply(t, s, NewEndTurn(0))
	s = mustApply(t, s, NewClaim(1, 6))
	s = mustApply(t, s, NewEndTurn(1))
	return s
}

// placeUnit puts a fresh unit directly on the board.
func placeUnit(s *GameState, owner PlayerID, territory TerritoryID, ut UnitType) *MilitaryUnit {
	u := NewUnit(s.NextUnitID, ut, owner, territory)
	s.NextUnitID++
	s.Units[u.ID] = u
	s.Territories[territory].UnitID = u.ID
	s.Territories[territory].Owner = owner
	s.refreshDerived()
	return u
}

func TestNewGame(t *testing.T) {
	s := newTestGame(t, DefaultRules())

	require.Equal(t, PhaseSetup, s.Phase)
	require.Equal(t, 1, s.Turn)
	require.Equal(t, PlayerID(0), s.CurrentPlayer)
	require.Equal(t, NoPlayer, s.Winner)
	require.Zero(t, s.Version)
	require.Empty(t, s.Updates)
	for _, p := range s.Players {
		require.Equal(t, Resources{Gold: 300, Wood: 100, Stone: 100, Food: 100}, p.Resources)
		require.Equal(t, NoTerritory, p.SetupClaim)
	}
	for _, terr := range s.Territories {
		require.Equal(t, NoPlayer, terr.Owner)
	}
}

func TestNewGameRejectsBadPlayerCount(t *testing.T) {
	_, err := NewGame(Options{Players: 0})
	require.Error(t, err)
	_, err = NewGame(Options{Players: MaxPlayers + 1})
	require.Error(t, err)
}

func TestCreateInitialGameState(t *testing.T) {
	s, err := CreateInitialGameState(4, BoardMedium)
	require.NoError(t, err)
	require.Len(t, s.Players, 4)
	require.NotEmpty(t, s.ID)
	require.Equal(t, DefaultRules(), s.Rules)
}

func TestCloneIsDeep(t *testing.T) {
	s := playSetup(t, newTestGame(t, DefaultRules()))
	placeUnit(s, 0, 0, UnitInfantry)

	c := s.Clone()
	c.Players[0].Resources.Gold = 1
	c.Players[0].Buildings[BuildingFarm] = 9
	c.Territories[0].Adjacent[0] = 99
	c.Units[1].Health = 1
	c.Updates[0].Details = append(c.Updates[0].Details, "extra")

	require.NotEqual(t, 1, s.Players[0].Resources.Gold)
	require.Zero(t, s.Players[0].Buildings[BuildingFarm])
	require.NotEqual(t, TerritoryID(99), s.Territories[0].Adjacent[0])
	require.Equal(t, 100, s.Units[1].Health)
	require.NotContains(t, s.Updates[0].Details, "extra")
}

func TestRefreshDerivedScore(t *testing.T) {
	s := playSetup(t, newTestGame(t, DefaultRules()))
	s.Territories[0].Building = BuildingFarm
	placeUnit(s, 0, 1, UnitInfantry)
	s.Players[0].Resources.Gold = 450

	s.refreshDerived()
	p := s.Players[0]
	require.ElementsMatch(t, []TerritoryID{0, 1}, p.Territories)
	require.Equal(t, []UnitID{1}, p.Units)
	require.Equal(t, 1, p.Buildings[BuildingFarm])
	require.Equal(t, 10*2+5*1+3*1+4, p.Score)
}

func TestCheckVictory(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(s *GameState)
		winner PlayerID
		kind   VictoryKind
	}{
		{
			name:   "no winner",
			setup:  func(s *GameState) {},
			winner: NoPlayer,
		},
		{
			name: "last standing",
			setup: func(s *GameState) {
				s.Territories[6].Owner = 0
			},
			winner: 0,
			kind:   VictoryLastStanding,
		},
		{
			name: "domination",
			setup: func(s *GameState) {
				for _, id := range []TerritoryID{1, 2, 3, 4, 5} {
					s.Territories[id].Owner = 1
				}
			},
			winner: 1,
			kind:   VictoryDomination,
		},
		{
			name: "economic",
			setup: func(s *GameState) {
				s.Players[1].Resources.Gold = 10000
			},
			winner: 1,
			kind:   VictoryEconomic,
		},
		{
			name: "military disabled at zero",
			setup: func(s *GameState) {
				s.Rules.MilitaryVictoryUnits = 0
			},
			winner: NoPlayer,
		},
		{
			name: "military",
			setup: func(s *GameState) {
				s.Rules.MilitaryVictoryUnits = 2
				placeUnit(s, 0, 0, UnitInfantry)
				placeUnit(s, 0, 1, UnitInfantry)
			},
			winner: 0,
			kind:   VictoryMilitary,
		},
		{
			name: "earlier player wins ties",
			setup: func(s *GameState) {
				s.Players[0].Resources.Gold = 10000
				s.Players[1].Resources.Gold = 20000
			},
			winner: 0,
			kind:   VictoryEconomic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := playSetup(t, newTestGame(t, DefaultRules()))
			tt.setup(s)
			s.refreshDerived()

			winner, kind := CheckVictory(s)
			require.Equal(t, tt.winner, winner)
			require.Equal(t, tt.kind, kind)
		})
	}
}

func TestCheckVictorySkipsSetup(t *testing.T) {
	s := newTestGame(t, DefaultRules())
	s.Players[0].Resources.Gold = 50000
	winner, _ := CheckVictory(s)
	require.Equal(t, NoPlayer, winner)
}
