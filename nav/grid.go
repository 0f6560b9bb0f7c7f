package nav

import (
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/navsim/common"
)

var ErrInvalidGrid = errors.New("nav: grid spacing must be > 0")

// GridSpec is a uniform square lattice.
type GridSpec struct {
	Spacing float64
}

func (g GridSpec) Validate() error {
	if !(g.Spacing > 0) || math.IsInf(g.Spacing, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidGrid, g.Spacing)
	}
	return nil
}

// Snap returns the nearest lattice node to p, rounding each axis on its own.
func (g GridSpec) Snap(p Point) Point {
	return Point{
		X: common.RoundTo(p.X, g.Spacing),
		Y: common.RoundTo(p.Y, g.Spacing),
	}
}

// Edge is a weighted connection to a neighbouring node.
type Edge[N comparable] struct {
	To   N
	Cost float64
}

var compass = [8][2]float64{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Neighbors lists the lattice nodes around n reachable by an unobstructed
// straight segment, weighted by offset length. Order is fixed so searches are
// reproducible; each node appears at most once.
func (g GridSpec) Neighbors(n Point, oracle Oracle) []Edge[Point] {
	if oracle == nil {
		oracle = Open
	}
	out := make([]Edge[Point], 0, len(compass))
	for _, d := range compass {
		offset := Point{X: d[0] * g.Spacing, Y: d[1] * g.Spacing}
		candidate := g.Snap(n.Add(offset))
		if candidate == n || containsEdge(out, candidate) {
			continue
		}
		if oracle.Blocked(n, candidate) {
			continue
		}
		out = append(out, Edge[Point]{To: candidate, Cost: offset.Length()})
	}
	return out
}

func containsEdge(edges []Edge[Point], p Point) bool {
	for _, e := range edges {
		if e.To == p {
			return true
		}
	}
	return false
}

// FindPath snaps both endpoints and runs a budgeted search over the lattice
// using the squared-distance heuristic.
func (g GridSpec) FindPath(from, to Point, budget int, oracle Oracle) ([]Point, SearchStats, error) {
	if err := g.Validate(); err != nil {
		return nil, SearchStats{}, err
	}
	neighbors := func(n Point) []Edge[Point] {
		return g.Neighbors(n, oracle)
	}
	return SearchWithStats(g.Snap(from), g.Snap(to), budget, neighbors, SquaredDistance)
}
