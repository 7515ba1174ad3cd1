// Package util provides common utility functions for price-grid
// calculations.
package util

import "math"

// RoundToTick rounds x to the nearest tick increment. Strike gaps are
// rounded this way before counting, so float noise in broker-reported
// strikes does not split the mode.
func RoundToTick(x, tick float64) float64 {
	if tick <= 0 {
		return x
	}
	return math.Round(x/tick) * tick
}

// ModalValue returns the value occurring most often in values, false
// when no value occurs more than once. Ties resolve to the smaller
// value so the result is deterministic.
func ModalValue(values []float64) (float64, bool) {
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	var best float64
	bestCount := 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	if bestCount < 2 {
		return 0, false
	}
	return best, true
}
