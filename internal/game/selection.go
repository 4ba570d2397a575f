package game

import "fmt"

func canClaim(s *GameState, p *Player, pl ClaimPayload) error {
	if s.Phase != PhaseSetup {
		return ErrInvalidAction
	}
	t := s.Territory(pl.TerritoryID)
	if t == nil {
		return ErrInvalidTarget
	}
	if !t.IsUnclaimed() {
		return ErrTerritoryOccupied
	}
	if p.HasClaimed() {
		return ErrAlreadyClaimed
	}
	return nil
}

// ClaimableTerritories returns the unowned territories during setup.
func ClaimableTerritories(s *GameState) []TerritoryID {
	if s.Phase != PhaseSetup {
		return nil
	}
	var ids []TerritoryID
	for _, t := range s.Territories {
		if t.IsUnclaimed() {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func applyClaim(s *GameState, p *Player, pl ClaimPayload) string {
	t := s.Territory(pl.TerritoryID)
	t.Owner = p.ID
	p.SetupClaim = t.ID
	if s.Rules.SetupClaimBecomesCapital {
		t.Terrain = TerrainCapital
		t.Yield = BaseYield[TerrainCapital]
		return fmt.Sprintf("%s founded their capital in territory %d", p.Name, t.ID)
	}
	return fmt.Sprintf("%s claimed territory %d", p.Name, t.ID)
}
