package insulin

import (
	"fmt"
	"strings"
)

// ExerciseRecency is how long ago the user last exercised. Recent activity
// lowers the effective sensitivity by a fixed percentage.
type ExerciseRecency string

const (
	ExerciseNone        ExerciseRecency = "None"
	ExerciseLast6Hours  ExerciseRecency = "Last6Hours"
	ExerciseLast12Hours ExerciseRecency = "Last12Hours"
	ExerciseLast24Hours ExerciseRecency = "Last24Hours"
)

// ReductionPercent returns the sensitivity reduction for the bucket. The
// zero value and ExerciseNone both mean no reduction.
func (r ExerciseRecency) ReductionPercent() (float64, error) {
	switch r {
	case "", ExerciseNone:
		return 0, nil
	case ExerciseLast6Hours:
		return 20, nil
	case ExerciseLast12Hours:
		return 12, nil
	case ExerciseLast24Hours:
		return 7, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownExercise, string(r))
}

// ParseExerciseRecency accepts the bucket names case-insensitively. An empty
// string parses to ExerciseNone.
func ParseExerciseRecency(s string) (ExerciseRecency, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ExerciseNone, nil
	}
	for _, r := range []ExerciseRecency{ExerciseNone, ExerciseLast6Hours, ExerciseLast12Hours, ExerciseLast24Hours} {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownExercise, s)
}

// ExerciseAdjustedSensitivity returns base * (100 - reduction) / 100 rounded
// to two places.
func ExerciseAdjustedSensitivity(base float64, recency ExerciseRecency) (float64, error) {
	if !validSensitivity(base) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidSensitivity, base)
	}
	pct, err := recency.ReductionPercent()
	if err != nil {
		return 0, err
	}
	return Round(base*(100-pct)/100, ExerciseEstimatePrecision), nil
}
