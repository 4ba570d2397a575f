package game

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"empires-legacy/pkg/maps"
)

// Random is the source of randomness for board generation. *rand.Rand
// satisfies it, so tests can pass a seeded generator.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// NewRandom returns a seeded generator. A zero seed uses the clock.
func NewRandom(seed int64) Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// BoardSize is the player's preference for map size.
type BoardSize string

const (
	BoardSmall  BoardSize = "small"
	BoardMedium BoardSize = "medium"
	BoardLarge  BoardSize = "large"
)

// holeChance is the probability of dropping an interior cell.
const holeChance = 0.1

var sizeRadius = map[BoardSize]int{
	BoardSmall:  2,
	BoardMedium: 3,
	BoardLarge:  4,
}

var terrainWeights = []struct {
	terrain Terrain
	weight  int
}{
	{TerrainPlains, 40},
	{TerrainForest, 25},
	{TerrainMountains, 25},
	{TerrainCoast, 10},
}

// BoardRadius returns the disk radius for a game. Larger size preferences
// and more players grow the board, up to maxRadius.
func BoardRadius(playerCount int, size BoardSize, maxRadius int) int {
	radius, ok := sizeRadius[size]
	if !ok {
		radius = sizeRadius[BoardMedium]
	}
	if playerCount > 2 {
		radius += (playerCount - 2) / 2
	}
	if maxRadius > 0 && radius > maxRadius {
		radius = maxRadius
	}
	return radius
}

// GenerateBoard builds a board sized for the player count and preference.
func GenerateBoard(playerCount int, size BoardSize, rng Random) ([]*Territory, error) {
	if playerCount < 1 {
		return nil, fmt.Errorf("generate board: need at least one player, got %d", playerCount)
	}
	return GenerateBoardWithRadius(BoardRadius(playerCount, size, DefaultRules().MaxBoardRadius), rng)
}

// GenerateBoardWithRadius builds a hex disk of the given radius. Territory
// ids equal their index in the returned slice.
func GenerateBoardWithRadius(radius int, rng Random) ([]*Territory, error) {
	if radius < 0 {
		return nil, fmt.Errorf("generate board: negative radius %d", radius)
	}
	if rng == nil {
		rng = NewRandom(0)
	}

	present := make(map[maps.Coord]bool)
	cells := maps.Disk(radius)
	for _, c := range cells {
		present[c] = true
	}

	// Punch holes in the interior. The centre stays, and a hole is only
	// kept if the rest of the board still connects.
	for _, c := range cells {
		if c == (maps.Coord{}) || maps.IsEdge(c, radius) {
			continue
		}
		if rng.Float64() >= holeChance {
			continue
		}
		present[c] = false
		if !maps.Connected(present) {
			present[c] = true
		}
	}

	territories := make([]*Territory, 0, len(cells))
	index := make(map[maps.Coord]TerritoryID, len(cells))
	for _, c := range cells {
		if !present[c] {
			continue
		}
		terrain := drawTerrain(rng)
		t := &Territory{
			ID:       TerritoryID(len(territories)),
			Terrain:  terrain,
			Owner:    NoPlayer,
			Coord:    c,
			Yield:    rollYield(BaseYield[terrain], rng),
			Adjacent: []TerritoryID{},
		}
		index[c] = t.ID
		territories = append(territories, t)
	}

	for _, t := range territories {
		for _, n := range t.Coord.Neighbors() {
			if id, ok := index[n]; ok {
				t.Adjacent = append(t.Adjacent, id)
			}
		}
	}

	return territories, nil
}

func drawTerrain(rng Random) Terrain {
	total := 0
	for _, w := range terrainWeights {
		total += w.weight
	}
	roll := rng.Intn(total)
	for _, w := range terrainWeights {
		if roll < w.weight {
			return w.terrain
		}
		roll -= w.weight
	}
	return TerrainPlains
}

// rollYield applies variance to each nonzero base resource.
func rollYield(base Resources, rng Random) Resources {
	roll := func(v int) int {
		if v == 0 {
			return 0
		}
		return int(math.Floor(float64(v)*(0.8+rng.Float64()*0.4))) + rng.Intn(3)
	}
	return Resources{
		Gold:  roll(base.Gold),
		Wood:  roll(base.Wood),
		Stone: roll(base.Stone),
		Food:  roll(base.Food),
	}
}
