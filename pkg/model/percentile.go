package model

import (
	"math"
	"sort"
)

// Quantile computes the q-quantile of values with linear interpolation
// between closest ranks, ignoring NaN. Returns NaN when no usable value
// remains. The interpolation matches what the plots were originally tuned
// against.
func Quantile(values []float64, q float64) float64 {

	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)

	if q <= 0 {
		return clean[0]
	}
	if q >= 1 {
		return clean[len(clean)-1]
	}

	pos := q * float64(len(clean)-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if lo+1 >= len(clean) {
		return clean[lo]
	}
	return clean[lo] + frac*(clean[lo+1]-clean[lo])
}

// ClipToPercentile clamps a methylation value into [start, end] for marker
// coloring. NaN values color grey since the charting layer handles colors
// directly.
func ClipToPercentile(v, start, end float64) any {
	if math.IsNaN(v) {
		return "grey"
	}
	if v < start {
		return start
	}
	if v > end {
		return end
	}
	return v
}

// median of the non-NaN values. NaN when none.
func median(values []float64) float64 {

	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)

	n := len(clean)
	if n%2 == 1 {
		return clean[n/2]
	}
	return (clean[n/2-1] + clean[n/2]) / 2
}
