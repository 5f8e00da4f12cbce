// Package normalize converts raw recipe signals into comparable [0,1] scores.
//
// Every function is total: NaN, infinities and out-of-range inputs are clamped
// instead of reported.
package normalize

import (
	"math"
	"time"
)

// Defaults used by the primitives.
const (
	DefaultMaxRating         = 5.0
	DefaultHalfLifeDays      = 30.0
	TrendingHalfLifeDays     = 7.0
	unboundedCountLogDivisor = 3.0 // log10(1000): counts saturate near 1000
	hoursPerDay              = 24.0
)

// Clamp01 limits v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 1:
		return 1
	default:
		return v
	}
}

// Rating maps a star rating onto [0,1] against max. A non-positive max uses
// DefaultMaxRating.
func Rating(value, maxRating float64) float64 {
	if maxRating <= 0 || math.IsNaN(maxRating) {
		maxRating = DefaultMaxRating
	}
	if math.IsNaN(value) || value <= 0 {
		return 0
	}
	if value >= maxRating {
		return 1
	}
	return value / maxRating
}

// Count compresses a popularity count logarithmically: min(log10(v+1)/3, 1).
func Count(value float64) float64 {
	if math.IsNaN(value) || value <= 0 {
		return 0
	}
	return math.Min(math.Log10(value+1)/unboundedCountLogDivisor, 1)
}

// CountBounded compresses a count against a known maximum:
// min(log(v+1)/log(max+1), 1). A non-positive max falls back to Count.
func CountBounded(value, maxCount float64) float64 {
	if math.IsNaN(maxCount) || maxCount <= 0 {
		return Count(value)
	}
	if math.IsNaN(value) || value <= 0 {
		return 0
	}
	return math.Min(math.Log(value+1)/math.Log(maxCount+1), 1)
}

// Similarity clamps an upstream similarity into [0,1].
func Similarity(value float64) float64 {
	return Clamp01(value)
}

// Recency is an exponential decay 2^(-days/halfLife) measured from now.
// Timestamps at or after now score 1. A non-positive half-life uses
// DefaultHalfLifeDays.
func Recency(ts, now time.Time, halfLifeDays float64) float64 {
	if halfLifeDays <= 0 || math.IsNaN(halfLifeDays) {
		halfLifeDays = DefaultHalfLifeDays
	}
	days := now.Sub(ts).Hours() / hoursPerDay
	if days <= 0 {
		return 1
	}
	return Clamp01(math.Exp2(-days / halfLifeDays))
}
