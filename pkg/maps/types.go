// Package maps handles hex grid geometry for game boards.
// Cells use axial coordinates (q, r); the third cube coordinate is derived.
package maps

// Coord is a position on the hex grid in axial coordinates.
type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (c Coord) S() int {
	return -c.Q - c.R
}

// Add returns the coordinate offset by d.
func (c Coord) Add(d Coord) Coord {
	return Coord{Q: c.Q + d.Q, R: c.R + d.R}
}

// Directions are the six neighbor offsets in axial coordinates.
var Directions = [6]Coord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six coordinates adjacent to c.
func (c Coord) Neighbors() [6]Coord {
	var result [6]Coord
	for i, d := range Directions {
		result[i] = c.Add(d)
	}
	return result
}

// IsAdjacent reports whether a and b differ by exactly one axial direction.
func IsAdjacent(a, b Coord) bool {
	for _, d := range Directions {
		if a.Add(d) == b {
			return true
		}
	}
	return false
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b Coord) int {
	return max(abs(a.Q-b.Q), abs(a.R-b.R), abs(a.S()-b.S()))
}

// Disk returns every coordinate within radius of the origin, ordered by q then r.
func Disk(radius int) []Coord {
	if radius < 0 {
		return nil
	}
	cells := make([]Coord, 0, 3*radius*(radius+1)+1)
	for q := -radius; q <= radius; q++ {
		rMin := max(-radius, -q-radius)
		rMax := min(radius, -q+radius)
		for r := rMin; r <= rMax; r++ {
			cells = append(cells, Coord{Q: q, R: r})
		}
	}
	return cells
}

// DiskSize returns the number of cells in a disk of the given radius.
func DiskSize(radius int) int {
	if radius < 0 {
		return 0
	}
	return 3*radius*(radius+1) + 1
}

// IsEdge reports whether c lies on the outer ring of a disk of the given radius.
func IsEdge(c Coord, radius int) bool {
	return Distance(c, Coord{}) == radius
}

// Connected reports whether the given cell set forms a single connected region.
// An empty set is considered connected.
func Connected(cells map[Coord]bool) bool {
	var start Coord
	found := false
	for c, ok := range cells {
		if ok {
			start = c
			found = true
			break
		}
	}
	if !found {
		return true
	}

	total := 0
	for _, ok := range cells {
		if ok {
			total++
		}
	}

	seen := map[Coord]bool{start: true}
	queue := []Coord{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range cur.Neighbors() {
			if cells[n] && !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return len(seen) == total
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
