package agent

import (
	"github.com/milk9111/navsim/nav"
)

// Command replans from the agent's snapped position to the snapped dest and
// replaces the waypoint queue with the result. On failure the queue is left
// as it was and false is returned.
func (a *Agent) Command(dest nav.Point) bool {
	from := a.grid.Snap(a.position)
	to := a.grid.Snap(dest)

	path, stats, err := a.grid.FindPath(from, to, a.cfg.Patience, a.oracle)
	a.search = SearchResult{Stats: stats, Err: err}
	if err != nil {
		a.logger.Debug("agent: search failed", "from", from, "to", to, "visited", stats.Visited, "err", err)
		return false
	}

	var waypoints []nav.Point
	if a.cfg.SearchShortcut && len(path) > 0 {
		waypoints = a.cfg.ShortcutMode.Simplify(path, a.oracle)
	} else {
		waypoints = make([]nav.Point, len(path), len(path)+1)
		copy(waypoints, path)
		if !a.cfg.SnapToGrid {
			waypoints = append(waypoints, dest)
		}
	}
	a.queue.Replace(trimStart(waypoints, from))
	a.logger.Debug("agent: replanned", "kind", a.decision.Kind, "to", dest, "nodes", len(path), "waypoints", a.queue.Len())
	return true
}

// trimStart drops leading copies of start while something follows them. An
// agent standing on start would otherwise retire it every tick and never
// leave. The hop from the real position to the first kept waypoint is not
// checked against the oracle.
func trimStart(points []nav.Point, start nav.Point) []nav.Point {
	for len(points) > 1 && points[0] == start {
		points = points[1:]
	}
	return points
}
