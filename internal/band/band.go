// Package band computes overall band scores from per-criterion scores.
// This is pure domain logic - no I/O, no side effects.
package band

import "math"

// Overall returns the arithmetic mean of scores rounded to the nearest half
// band. Rounding doubles the mean, rounds half away from zero, and halves the
// result, so a mean of 6.75 rounds up to 7.0. Defined only for non-empty
// input; an empty slice returns 0.
func Overall(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(len(scores))
	return math.Round(mean*2) / 2
}
