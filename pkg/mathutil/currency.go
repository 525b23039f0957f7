// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/salemate/franchise-performance/pkg/constants"
)

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// SafeDivide divides numerator by denominator, resolving a zero denominator to 0.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// SafeDivideInt divides by an integer count such as a headcount, resolving 0 to 0.
func SafeDivideInt(numerator float64, denominator int) float64 {
	if denominator <= 0 {
		return 0
	}
	return numerator / float64(denominator)
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// CeilCount rounds a positive gap up to a whole number of items; gaps at or
// below zero yield 0.
func CeilCount(gap float64) int {
	if gap <= 0 || math.IsNaN(gap) || math.IsInf(gap, 0) {
		return 0
	}
	return int(math.Ceil(gap - 1e-9))
}

// PerMillion converts a sales volume into millions for per-million cut rates.
func PerMillion(volume float64) float64 {
	return volume / constants.Million
}
