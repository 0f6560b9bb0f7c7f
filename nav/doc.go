// Package nav is the grid navigation core: lattice snapping, obstacle-aware
// neighbour expansion, a budgeted A* search, path shortcutting, target
// selection between attacking and fleeing, and waypoint motion.
//
// Nothing in the package holds state between calls except WaypointQueue,
// which is owned by a single agent. Obstacles are only ever observed through
// an injected Oracle.
package nav
