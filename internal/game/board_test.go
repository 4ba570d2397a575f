package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"empires-legacy/pkg/maps"
)

func TestGenerateBoardWithRadiusOne(t *testing.T) {
	board, err := GenerateBoardWithRadius(1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, board, 7)

	centre := board[3]
	require.Equal(t, maps.Coord{}, centre.Coord)
	require.Len(t, centre.Adjacent, 6)
	for i, terr := range board {
		require.Equal(t, TerritoryID(i), terr.ID)
		require.Equal(t, NoPlayer, terr.Owner)
		require.Equal(t, NoUnit, terr.UnitID)
		require.False(t, terr.HasBuilding())
	}
}

func TestAdjacencySymmetry(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		for _, size := range []BoardSize{BoardSmall, BoardMedium, BoardLarge} {
			board, err := GenerateBoard(int(seed%7)+2, size, rand.New(rand.NewSource(seed)))
			require.NoError(t, err)

			for _, a := range board {
				for _, bid := range a.Adjacent {
					b := board[bid]
					require.True(t, b.IsAdjacentTo(a.ID), "seed %d: %d lists %d but not the reverse", seed, a.ID, b.ID)
					require.True(t, maps.IsAdjacent(a.Coord, b.Coord))
				}
			}
		}
	}
}

func TestBoardIsConnectedAndKeepsCentre(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		board, err := GenerateBoardWithRadius(4, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)

		cells := make(map[maps.Coord]bool, len(board))
		seen := make(map[maps.Coord]bool, len(board))
		for _, terr := range board {
			require.False(t, seen[terr.Coord], "duplicate coordinate")
			seen[terr.Coord] = true
			cells[terr.Coord] = true
		}
		require.True(t, cells[maps.Coord{}], "centre omitted")
		require.True(t, maps.Connected(cells))
		require.LessOrEqual(t, len(board), maps.DiskSize(4))

		// Holes are only punched in the interior.
		for _, c := range maps.Disk(4) {
			if maps.IsEdge(c, 4) {
				require.True(t, cells[c])
			}
		}
	}
}

func TestYieldVariance(t *testing.T) {
	board, err := GenerateBoardWithRadius(5, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	for _, terr := range board {
		base := BaseYield[terr.Terrain]
		for _, r := range AllResources() {
			b, got := base.Get(r), terr.Yield.Get(r)
			if b == 0 {
				require.Zero(t, got)
				continue
			}
			require.GreaterOrEqual(t, got, int(float64(b)*0.8))
			require.LessOrEqual(t, got, int(float64(b)*1.2)+2)
		}
	}
}

func TestTerrainDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	counts := make(map[Terrain]int)
	for i := 0; i < 10000; i++ {
		counts[drawTerrain(rng)]++
	}
	require.InDelta(t, 4000, counts[TerrainPlains], 300)
	require.InDelta(t, 2500, counts[TerrainForest], 300)
	require.InDelta(t, 2500, counts[TerrainMountains], 300)
	require.InDelta(t, 1000, counts[TerrainCoast], 300)
	require.Zero(t, counts[TerrainCapital])
}

func TestBoardRadius(t *testing.T) {
	require.Equal(t, 2, BoardRadius(2, BoardSmall, 6))
	require.Equal(t, 3, BoardRadius(2, BoardMedium, 6))
	require.Equal(t, 4, BoardRadius(3, BoardLarge, 6))
	require.Equal(t, 5, BoardRadius(4, BoardLarge, 6))
	require.Equal(t, 6, BoardRadius(8, BoardLarge, 6))
	require.Equal(t, 3, BoardRadius(2, BoardSize("huge"), 6))
}

func TestGenerateBoardIsReproducible(t *testing.T) {
	a, err := GenerateBoard(4, BoardMedium, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	b, err := GenerateBoard(4, BoardMedium, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestGenerateBoardErrors(t *testing.T) {
	_, err := GenerateBoard(0, BoardSmall, nil)
	require.Error(t, err)
	_, err = GenerateBoardWithRadius(-1, nil)
	require.Error(t, err)
}
