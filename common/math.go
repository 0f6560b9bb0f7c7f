package common

import "math"

// RoundTo rounds v to the nearest multiple of step. Halves round to even.
func RoundTo(v, step float64) float64 {
	return math.RoundToEven(v/step) * step
}
