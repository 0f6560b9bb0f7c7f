package nav

import (
	"container/heap"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the parent of every search failure.
	ErrNotFound        = errors.New("nav: path not found")
	ErrNoPath          = fmt.Errorf("%w: open set exhausted", ErrNotFound)
	ErrBudgetExhausted = fmt.Errorf("%w: search budget exhausted", ErrNotFound)
	ErrInvalidBudget   = errors.New("nav: search budget must be > 0")
)

// SearchStats describes the work a search performed.
type SearchStats struct {
	// Visited counts dequeued nodes, including the goal. Never exceeds the budget.
	Visited int
	// Expansions counts nodes whose neighbours were generated.
	Expansions int
}

type searchItem[N comparable] struct {
	node  N
	g, f  float64
	seq   uint64
	index int
}

type openList[N comparable] []*searchItem[N]

func (ol openList[N]) Len() int { return len(ol) }

func (ol openList[N]) Less(i, j int) bool {
	if ol[i].f != ol[j].f {
		return ol[i].f < ol[j].f
	}
	return ol[i].seq < ol[j].seq
}

func (ol openList[N]) Swap(i, j int) {
	ol[i], ol[j] = ol[j], ol[i]
	ol[i].index = i
	ol[j].index = j
}

func (ol *openList[N]) Push(x any) {
	n := x.(*searchItem[N])
	n.index = len(*ol)
	*ol = append(*ol, n)
}

func (ol *openList[N]) Pop() any {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	n.index = -1
	*ol = old[:len(old)-1]
	return n
}

// Search finds a path from start to goal, expanding the open node with the
// lowest g+h first. budget caps the number of dequeued nodes. Ties are broken
// by insertion order, so identical inputs give identical paths.
func Search[N comparable](start, goal N, budget int, neighbors func(N) []Edge[N], heuristic func(a, b N) float64) ([]N, error) {
	path, _, err := SearchWithStats(start, goal, budget, neighbors, heuristic)
	return path, err
}

// SearchWithStats is Search that also reports how much work was done.
func SearchWithStats[N comparable](start, goal N, budget int, neighbors func(N) []Edge[N], heuristic func(a, b N) float64) ([]N, SearchStats, error) {
	var stats SearchStats
	if budget <= 0 {
		return nil, stats, fmt.Errorf("%w: got %d", ErrInvalidBudget, budget)
	}

	var seq uint64
	open := &openList[N]{}
	heap.Push(open, &searchItem[N]{node: start, f: heuristic(start, goal), seq: seq})
	gScore := map[N]float64{start: 0}
	cameFrom := make(map[N]N)

	for open.Len() > 0 && stats.Visited < budget {
		cur := heap.Pop(open).(*searchItem[N])
		if cur.g > gScore[cur.node] {
			// superseded by a cheaper route pushed later
			continue
		}
		stats.Visited++
		if cur.node == goal {
			return reconstructPath(cameFrom, start, goal), stats, nil
		}

		stats.Expansions++
		for _, e := range neighbors(cur.node) {
			tentative := cur.g + e.Cost
			if prev, seen := gScore[e.To]; seen && tentative >= prev {
				continue
			}
			gScore[e.To] = tentative
			cameFrom[e.To] = cur.node
			seq++
			heap.Push(open, &searchItem[N]{
				node: e.To,
				g:    tentative,
				f:    tentative + heuristic(e.To, goal),
				seq:  seq,
			})
		}
	}

	if open.Len() == 0 {
		return nil, stats, ErrNoPath
	}
	return nil, stats, ErrBudgetExhausted
}

func reconstructPath[N comparable](cameFrom map[N]N, start, goal N) []N {
	path := []N{goal}
	for cur := goal; cur != start; {
		prev, ok := cameFrom[cur]
		if !ok || len(path) > len(cameFrom) {
			return nil
		}
		path = append(path, prev)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
