package utils

import "math"

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// Hundredths converts an hour amount to integer hundredths so sums and
// comparisons are exact.
func Hundredths(v float64) int64 {
	return int64(math.Round(v * 100))
}

// HasAtMostDecimals reports whether v survives rounding to places unchanged.
func HasAtMostDecimals(v float64, places int) bool {
	return Round(v, places) == v
}
