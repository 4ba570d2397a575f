package maps

import (
	"fmt"
	"strings"
)

// Render draws a hex board as offset text rows. Each cell is printed with the
// label returned by label, padded to width characters; missing cells are
// printed as dots.
func Render(cells []Coord, width int, label func(Coord) string) string {
	if len(cells) == 0 {
		return ""
	}
	if width < 1 {
		width = 1
	}

	present := make(map[Coord]bool, len(cells))
	minQ, maxQ := cells[0].Q, cells[0].Q
	minR, maxR := cells[0].R, cells[0].R
	for _, c := range cells {
		present[c] = true
		minQ, maxQ = min(minQ, c.Q), max(maxQ, c.Q)
		minR, maxR = min(minR, c.R), max(maxR, c.R)
	}

	var sb strings.Builder
	for r := minR; r <= maxR; r++ {
		// Shift each row by half a cell per row so neighbors line up visually.
		sb.WriteString(strings.Repeat(" ", (r-minR)*(width+1)/2))
		for q := minQ; q <= maxQ; q++ {
			c := Coord{Q: q, R: r}
			if !present[c] {
				sb.WriteString(pad(".", width))
			} else {
				sb.WriteString(pad(label(c), width))
			}
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// AdjacencyMatrix prints which of the indexed cells are neighbors.
func AdjacencyMatrix(cells []Coord) string {
	var sb strings.Builder

	n := len(cells)
	sb.WriteString("Adjacency Matrix:\n   ")
	for i := 0; i < n; i++ {
		sb.WriteString(fmt.Sprintf("%2d ", i))
	}
	sb.WriteString("\n")

	for i := 0; i < n; i++ {
		sb.WriteString(fmt.Sprintf("%2d:", i))
		for j := 0; j < n; j++ {
			switch {
			case i == j:
				sb.WriteString(" - ")
			case IsAdjacent(cells[i], cells[j]):
				sb.WriteString(" X ")
			default:
				sb.WriteString(" . ")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
