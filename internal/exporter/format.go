package exporter

import (
	"math"
	"strconv"
)

// formatFloat formats a float64 with the shortest exact representation.
// Missing values (NaN) are written as empty cells.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatFixed formats a float64 with the given number of decimals
func formatFixed(f float64, decimals int) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
