package nav

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGridSpecValidate(t *testing.T) {
	require.NoError(t, GridSpec{Spacing: 0.5}.Validate())
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		require.ErrorIs(t, GridSpec{Spacing: bad}.Validate(), ErrInvalidGrid)
	}
}

func TestSnap(t *testing.T) {
	g := GridSpec{Spacing: 0.5}
	cases := []struct {
		name string
		in   Point
		want Point
	}{
		{"on_lattice", Point{X: 1.5, Y: -2}, Point{X: 1.5, Y: -2}},
		{"nearest", Point{X: 0.2, Y: 0.8}, Point{X: 0, Y: 1}},
		{"axes_independent", Point{X: 1.74, Y: -0.26}, Point{X: 1.5, Y: -0.5}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, g.Snap(c.in))
		})
	}
}

func TestSnapIdempotent(t *testing.T) {
	for _, spacing := range []float64{0.5, 0.3, 1, 2.25} {
		g := GridSpec{Spacing: spacing}
		for x := -3.0; x <= 3.0; x += 0.37 {
			for y := -3.0; y <= 3.0; y += 0.41 {
				once := g.Snap(Point{X: x, Y: y})
				require.Equal(t, once, g.Snap(once), "spacing=%v p=(%v,%v)", spacing, x, y)
			}
		}
	}
}

func TestNeighborsOpenGrid(t *testing.T) {
	g := GridSpec{Spacing: 0.5}
	edges := g.Neighbors(Point{}, Open)
	require.Len(t, edges, 8)

	seen := make(map[Point]float64)
	for _, e := range edges {
		_, dup := seen[e.To]
		require.False(t, dup, "duplicate edge to %v", e.To)
		seen[e.To] = e.Cost
	}
	require.InDelta(t, 0.5, seen[Point{X: 0.5, Y: 0}], 1e-12)
	require.InDelta(t, 0.5*math.Sqrt2, seen[Point{X: 0.5, Y: 0.5}], 1e-12)
	_, self := seen[Point{}]
	require.False(t, self)
}

func TestNeighborsSkipBlocked(t *testing.T) {
	g := GridSpec{Spacing: 1}
	eastBlocked := OracleFunc(func(a, b Point) bool { return b.X > a.X })
	edges := g.Neighbors(Point{}, eastBlocked)
	require.Len(t, edges, 5)
	for _, e := range edges {
		require.LessOrEqual(t, e.To.X, 0.0)
	}
}

func TestNeighborsQueriesAtMostEight(t *testing.T) {
	o := NewCountingOracle(Open)
	GridSpec{Spacing: 0.5}.Neighbors(Point{X: 3, Y: 3}, o)
	require.EqualValues(t, 8, o.Calls())
}

func TestNeighborSymmetry(t *testing.T) {
	g := GridSpec{Spacing: 0.5}
	wall := OracleFunc(func(a, b Point) bool {
		// symmetric: a vertical wall at x=0.75 between y=-1 and y=1
		lo, hi := math.Min(a.X, b.X), math.Max(a.X, b.X)
		return lo < 0.75 && hi > 0.75 && math.Abs(a.Y) <= 1 && math.Abs(b.Y) <= 1
	})
	for _, a := range []Point{{}, {X: 0.5, Y: 0.5}, {X: 1, Y: -0.5}} {
		for _, e := range g.Neighbors(a, wall) {
			back := g.Neighbors(e.To, wall)
			found := false
			for _, r := range back {
				if r.To == a {
					require.InDelta(t, e.Cost, r.Cost, 1e-12)
					found = true
				}
			}
			require.True(t, found, "%v -> %v has no reverse edge", a, e.To)
		}
	}
}
