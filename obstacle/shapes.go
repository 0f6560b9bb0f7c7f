// Package obstacle provides nav.Oracle implementations: a Chipmunk space for
// arbitrary static geometry and a plain list of rectangles and circles.
package obstacle

import (
	"math"

	"github.com/milk9111/navsim/nav"
)

// Rect is an axis-aligned box.
type Rect struct {
	Min nav.Point
	Max nav.Point
}

// RectAt builds a Rect from its center and full size.
func RectAt(center nav.Point, w, h float64) Rect {
	return Rect{
		Min: nav.Point{X: center.X - w/2, Y: center.Y - h/2},
		Max: nav.Point{X: center.X + w/2, Y: center.Y + h/2},
	}
}

func (r Rect) Contains(p nav.Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Inflate grows r by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{
		Min: nav.Point{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: nav.Point{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// Walls returns the four edges of [min, max] as zero-thickness rects.
func Walls(min, max nav.Point) []Rect {
	return []Rect{
		{Min: min, Max: nav.Point{X: max.X, Y: min.Y}},
		{Min: nav.Point{X: max.X, Y: min.Y}, Max: max},
		{Min: nav.Point{X: min.X, Y: max.Y}, Max: max},
		{Min: min, Max: nav.Point{X: min.X, Y: max.Y}},
	}
}

// Circle is a round obstacle.
type Circle struct {
	Center nav.Point
	Radius float64
}

// Shapes is an immutable set of obstacles tested analytically. Safe for
// concurrent use. A segment touching an edge counts as blocked.
type Shapes struct {
	Rects   []Rect
	Circles []Circle
}

// Contains reports whether p lies inside or on any shape.
func (s Shapes) Contains(p nav.Point) bool {
	for _, r := range s.Rects {
		if r.Contains(p) {
			return true
		}
	}
	for _, c := range s.Circles {
		if p.DistanceSq(c.Center) <= c.Radius*c.Radius {
			return true
		}
	}
	return false
}

func (s Shapes) Blocked(a, b nav.Point) bool {
	d := b.Sub(a)
	for _, r := range s.Rects {
		if hit, _ := segmentAABBHit(a, d, r); hit {
			return true
		}
	}
	for _, c := range s.Circles {
		if segmentCircleHit(a, b, c) {
			return true
		}
	}
	return false
}

func segmentAABBHit(o, d nav.Point, r Rect) (bool, float64) {
	tmin := 0.0
	tmax := 1.0

	if d.X != 0 {
		invD := 1.0 / d.X
		t1 := (r.Min.X - o.X) * invD
		t2 := (r.Max.X - o.X) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	} else if o.X < r.Min.X || o.X > r.Max.X {
		return false, 0
	}

	if d.Y != 0 {
		invD := 1.0 / d.Y
		t1 := (r.Min.Y - o.Y) * invD
		t2 := (r.Max.Y - o.Y) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	} else if o.Y < r.Min.Y || o.Y > r.Max.Y {
		return false, 0
	}

	if tmax >= tmin {
		return true, tmin
	}
	return false, 0
}

func segmentCircleHit(a, b nav.Point, c Circle) bool {
	if c.Radius <= 0 {
		return false
	}
	r2 := c.Radius * c.Radius
	if a.DistanceSq(c.Center) <= r2 || b.DistanceSq(c.Center) <= r2 {
		return true
	}

	d := b.Sub(a)
	f := a.Sub(c.Center)
	qa := d.Dot(d)
	if qa == 0 {
		return false
	}
	qb := 2 * f.Dot(d)
	qc := f.Dot(f) - r2

	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return false
	}
	sqrtDisc := math.Sqrt(disc)
	t1 := (-qb - sqrtDisc) / (2 * qa)
	t2 := (-qb + sqrtDisc) / (2 * qa)
	return (t1 >= 0 && t1 <= 1) || (t2 >= 0 && t2 <= 1)
}
