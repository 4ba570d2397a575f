package game

// CheckVictory returns the first player, in turn order, who meets a win
// condition, and the kind of victory. Conditions are checked last player
// standing, then domination, economic and military.
func CheckVictory(s *GameState) (PlayerID, VictoryKind) {
	if s.Phase == PhaseSetup {
		return NoPlayer, VictoryNone
	}
	active := s.ActivePlayers()
	total := len(s.Territories)

	for _, p := range s.Players {
		if p.Eliminated {
			continue
		}
		switch {
		case len(s.Players) > 1 && len(active) == 1:
			return p.ID, VictoryLastStanding
		case total > 0 && float64(len(p.Territories)) >= s.Rules.DominationShare*float64(total):
			return p.ID, VictoryDomination
		case s.Rules.EconomicVictoryGold > 0 && p.Resources.Gold >= s.Rules.EconomicVictoryGold:
			return p.ID, VictoryEconomic
		case s.Rules.MilitaryVictoryUnits > 0 && len(p.Units) >= s.Rules.MilitaryVictoryUnits:
			return p.ID, VictoryMilitary
		}
	}
	return NoPlayer, VictoryNone
}
