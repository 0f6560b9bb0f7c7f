package nav

// WaypointQueue is the ordered list of points an agent still has to visit.
// Only a Mover removes points; planners swap the whole queue with Replace.
type WaypointQueue struct {
	points []Point
}

func NewWaypointQueue(points ...Point) *WaypointQueue {
	q := &WaypointQueue{}
	q.Replace(points)
	return q
}

// Replace swaps the queue contents for a copy of points.
func (q *WaypointQueue) Replace(points []Point) {
	if q == nil {
		return
	}
	q.points = append(q.points[:0:0], points...)
}

func (q *WaypointQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.points)
}

// Front returns the next waypoint.
func (q *WaypointQueue) Front() (Point, bool) {
	if q.Len() == 0 {
		return Point{}, false
	}
	return q.points[0], true
}

// Points returns a copy of the remaining waypoints.
func (q *WaypointQueue) Points() []Point {
	if q == nil {
		return nil
	}
	return append([]Point(nil), q.points...)
}

func (q *WaypointQueue) pop() {
	q.points[0] = Point{}
	q.points = q.points[1:]
}

// Mover advances a position along a WaypointQueue at constant speed.
type Mover struct {
	Speed float64
}

// Step moves pos one tick toward the front waypoint. When the result is
// within Speed of the waypoint it snaps onto it and retires it. At most one
// waypoint is retired per call. The bool reports whether one was retired.
func (m Mover) Step(pos Point, q *WaypointQueue) (Point, bool) {
	wp, ok := q.Front()
	if !ok {
		return pos, false
	}
	dir := wp.Sub(pos)
	if length := dir.Length(); length > 0 {
		pos = pos.Add(dir.Mult(m.Speed / length))
	}
	if pos.DistanceSq(wp) <= m.Speed*m.Speed {
		q.pop()
		return wp, true
	}
	return pos, false
}
