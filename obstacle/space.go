package obstacle

import (
	"sync"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/navsim/nav"
)

// Space answers segment queries against static Chipmunk shapes. Queries are
// serialised; cp.Space is not safe for concurrent use.
type Space struct {
	mu        sync.Mutex
	space     *cp.Space
	clearance float64
	count     int
}

// NewSpace creates an empty space. clearance thickens every query segment,
// so a positive value keeps paths that far away from geometry.
func NewSpace(clearance float64) *Space {
	if clearance < 0 {
		clearance = 0
	}
	return &Space{space: cp.NewSpace(), clearance: clearance}
}

// AddRect adds a static box.
func (s *Space) AddRect(r Rect) {
	bb := cp.BB{L: r.Min.X, B: r.Min.Y, R: r.Max.X, T: r.Max.Y}
	s.add(cp.NewBox2(s.space.StaticBody, bb, 0))
}

// AddCircle adds a static disc.
func (s *Space) AddCircle(c Circle) {
	s.add(cp.NewCircle(s.space.StaticBody, c.Radius, c.Center))
}

// AddSegment adds a static wall with the given thickness radius.
func (s *Space) AddSegment(a, b nav.Point, radius float64) {
	s.add(cp.NewSegment(s.space.StaticBody, a, b, radius))
}

// AddBounds walls in the rectangle [min, max].
func (s *Space) AddBounds(min, max nav.Point) {
	corners := []nav.Point{
		{X: min.X, Y: min.Y},
		{X: max.X, Y: min.Y},
		{X: max.X, Y: max.Y},
		{X: min.X, Y: max.Y},
	}
	for i := range corners {
		s.AddSegment(corners[i], corners[(i+1)%len(corners)], 0)
	}
}

func (s *Space) add(shape *cp.Shape) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.space.AddShape(shape)
	s.count++
}

// Len returns the number of shapes added.
func (s *Space) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Blocked reports whether the segment a->b hits any shape. A zero-length
// segment crosses nothing and is never blocked. Segments that start inside a
// box are not reported by Chipmunk; use Shapes when that matters.
func (s *Space) Blocked(a, b nav.Point) bool {
	if a == b {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	info := s.space.SegmentQueryFirst(a, b, s.clearance, cp.SHAPE_FILTER_ALL)
	return info.Shape != nil
}

var (
	_ nav.Oracle = (*Space)(nil)
	_ nav.Oracle = Shapes{}
)
