package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"empires-legacy/internal/game"
	"empires-legacy/internal/protocol"
	"empires-legacy/pkg/maps"
)

const cellWidth = 5

// ownerMark is the letter a player's territories are drawn with.
func ownerMark(p game.PlayerID) string {
	if p == game.NoPlayer {
		return "."
	}
	return string(rune('A' + int(p)))
}

// boardLabel renders a territory as id, owner letter and a marker: '*' for a
// unit, '#' for a building, '^' for a capital.
func boardLabel(t *game.Territory) string {
	mark := ""
	switch {
	case t.UnitID != game.NoUnit:
		mark = "*"
	case t.HasBuilding():
		mark = "#"
	case t.Terrain == game.TerrainCapital:
		mark = "^"
	}
	return fmt.Sprintf("%d%s%s", t.ID, ownerMark(t.Owner), mark)
}

func formatBoard(st *game.GameState) string {
	byCoord := make(map[maps.Coord]*game.Territory, len(st.Territories))
	cells := make([]maps.Coord, 0, len(st.Territories))
	for _, t := range st.Territories {
		byCoord[t.Coord] = t
		cells = append(cells, t.Coord)
	}
	return maps.Render(cells, cellWidth, func(c maps.Coord) string {
		return boardLabel(byCoord[c])
	})
}

func formatIDs(ids []game.TerritoryID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(int(id))
	}
	return strings.Join(parts, " ")
}

func formatResources(r game.Resources) string {
	return fmt.Sprintf("gold %d  wood %d  stone %d  food %d", r.Gold, r.Wood, r.Stone, r.Food)
}

func formatState(st *game.GameState) string {
	if st == nil {
		return "No state\n"
	}
	var sb strings.Builder

	fmt.Fprintf(&sb, "Game %s  v%d\n", st.ID, st.Version)
	fmt.Fprintf(&sb, "Turn %d  %s  %s, %s\n", st.Turn, st.Phase, st.Weather, st.TimeOfDay)
	if st.IsGameOver() {
		winner := st.Player(st.Winner)
		name := fmt.Sprintf("player %d", st.Winner)
		if winner != nil {
			name = winner.Name
		}
		fmt.Fprintf(&sb, "Winner: %s (%s)\n", name, st.Victory)
	} else if cur := st.GetCurrentPlayer(); cur != nil {
		fmt.Fprintf(&sb, "Current player: %s [%s]\n", cur.Name, ownerMark(cur.ID))
	}
	sb.WriteString("\n")
	sb.WriteString(formatBoard(st))
	sb.WriteString("\n")
	if ids := game.ClaimableTerritories(st); len(ids) > 0 {
		fmt.Fprintf(&sb, "Claimable: %s\n\n", formatIDs(ids))
	}

	for _, p := range st.Players {
		status := ""
		if p.Eliminated {
			status = "  (eliminated)"
		}
		fmt.Fprintf(&sb, "[%s] %-12s score %-4d territories %-3d capitals %-2d units %-3d%s\n",
			ownerMark(p.ID), p.Name, p.Score, len(p.Territories), len(st.Capitals(p.ID)), len(p.Units), status)
		fmt.Fprintf(&sb, "    %s\n", formatResources(p.Resources))
	}

	if units := formatUnits(st); units != "" {
		sb.WriteString("\nUnits:\n")
		sb.WriteString(units)
	}
	if last, ok := st.LastUpdate(); ok {
		fmt.Fprintf(&sb, "\nLast: %s\n", last.Message)
	}
	return sb.String()
}

func formatUnits(st *game.GameState) string {
	ids := make([]game.UnitID, 0, len(st.Units))
	for id := range st.Units {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var sb strings.Builder
	for _, id := range ids {
		u := st.Units[id]
		moved := ""
		if u.HasMoved {
			moved = "  moved"
		}
		fmt.Fprintf(&sb, "  #%-3d %-9s [%s] at %-3d hp %d/%d  xp %d%s\n",
			u.ID, u.Type, ownerMark(u.Owner), u.TerritoryID, u.Health, u.MaxHealth, u.Experience, moved)
	}
	return sb.String()
}

func formatCombat(r *game.CombatResult) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	outcome := "Attack repelled"
	switch {
	case r.TerritoryCapture:
		outcome = "Territory captured"
	case r.Success:
		outcome = "Attack succeeded"
	}
	fmt.Fprintf(&sb, "%s\n", outcome)
	fmt.Fprintf(&sb, "  damage dealt %d, counter damage %d\n", r.AttackDamage, r.CounterDamage)
	fmt.Fprintf(&sb, "  attacker hp %d (lost %d)", r.AttackerRemaining, r.AttackerLosses)
	if r.AttackerDestroyed {
		sb.WriteString(" destroyed")
	}
	fmt.Fprintf(&sb, "\n  defender hp %d (lost %d)", r.DefenderRemaining, r.DefenderLosses)
	if r.DefenderDestroyed {
		sb.WriteString(" destroyed")
	}
	sb.WriteString("\n")
	if r.Message != "" {
		fmt.Fprintf(&sb, "  %s\n", r.Message)
	}
	return sb.String()
}

func formatHistory(events []protocol.HistoryEntry) string {
	if len(events) == 0 {
		return "No events\n"
	}
	var sb strings.Builder
	for _, e := range events {
		fmt.Fprintf(&sb, "v%-4d turn %-3d %-12s %-14s %s\n", e.Version, e.Turn, e.Phase, e.Type, e.Message)
		for _, d := range e.Details {
			fmt.Fprintf(&sb, "      %s\n", d)
		}
	}
	return sb.String()
}

func formatGames(games []protocol.GameSummary, current string) string {
	if len(games) == 0 {
		return "No games\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %-36s  %-10s  %-9s  %-7s  %-7s  %s\n", "ID", "NAME", "CODE", "STATUS", "PLAYERS", "CREATED")
	for _, g := range games {
		marker := " "
		if g.ID == current {
			marker = "*"
		}
		created := time.UnixMilli(g.CreatedAt).Format("2006-01-02 15:04")
		fmt.Fprintf(&sb, "%s %-36s  %-10s  %-9s  %-7s  %-7d  %s\n",
			marker, g.ID, g.Name, g.JoinCode, g.Status, g.PlayerCount, created)
	}
	return sb.String()
}
