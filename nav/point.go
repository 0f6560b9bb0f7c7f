package nav

import "github.com/jakecoffman/cp"

// Point is a 2D coordinate. Equality and map hashing are exact-value.
type Point = cp.Vector

// Distance is the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return a.Distance(b)
}

// SquaredDistance is the search heuristic used by the navigator. It is not
// admissible, so returned paths are not guaranteed to be shortest.
func SquaredDistance(a, b Point) float64 {
	return a.DistanceSq(b)
}
