package common

// Navigator defaults. Increase Patience or GridSize for larger arenas.
const (
	DefaultGridSize     = 0.5
	DefaultSpeed        = 0.05
	DefaultPatience     = 1000
	DefaultSafeDistance = 5.0

	DefaultAgentRadius = 0.25
	DefaultSpawnCount  = 20
	DefaultSpawnMin    = -5
	DefaultSpawnMax    = 5
)
