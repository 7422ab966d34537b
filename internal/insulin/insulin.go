// Package insulin holds the dose arithmetic of the tracker: estimating a dose
// from carbohydrates, deciding whether a recorded dose is far enough from the
// estimate to flag it, and keeping the per-day sensitivity history.
//
// PURE FUNCTIONS ONLY:
// Nothing in this package touches storage, HTTP, or the clock. Every function
// takes its inputs as arguments and returns a new value, so the service layer
// can call it from any request and tests need no setup at all.
package insulin

import (
	"errors"
	"math"
)

// Sentinel errors. The service layer maps these to apperror.ValidationFailed.
var (
	ErrInvalidSensitivity = errors.New("insulin: sensitivity must be a positive number")
	ErrInvalidCarbs       = errors.New("insulin: carbs must be a non-negative number")
	ErrMalformedEntry     = errors.New("insulin: history entry is missing its date or value")
	ErrDuplicateDay       = errors.New("insulin: history has more than one entry for the same day")
	ErrUnordered          = errors.New("insulin: history entries are not in ascending date order")
	ErrFutureEntry        = errors.New("insulin: history entry is dated after today")
	ErrUnknownExercise    = errors.New("insulin: unknown exercise recency")
)

// Round rounds x to the given number of decimal places, half away from zero.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func validSensitivity(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
