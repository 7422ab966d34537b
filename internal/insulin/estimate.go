package insulin

import (
	"fmt"
	"math"
)

// Display precision for estimates.
const (
	EstimatePrecision         = 4
	ExerciseEstimatePrecision = 2
)

// EstimateDose returns carbs / sensitivity, unrounded.
//
// A zero, negative or non-finite sensitivity is rejected instead of producing
// Inf or NaN.
func EstimateDose(carbs, sensitivity float64) (float64, error) {
	if !validSensitivity(sensitivity) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidSensitivity, sensitivity)
	}
	if carbs < 0 || math.IsNaN(carbs) || math.IsInf(carbs, 0) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidCarbs, carbs)
	}
	return carbs / sensitivity, nil
}

// EstimateDoseRounded is EstimateDose rounded to EstimatePrecision places,
// the value shown on a meal card and fed to the mismatch classifier.
func EstimateDoseRounded(carbs, sensitivity float64) (float64, error) {
	dose, err := EstimateDose(carbs, sensitivity)
	if err != nil {
		return 0, err
	}
	return Round(dose, EstimatePrecision), nil
}

// EstimateDoseWithExercise estimates a dose against the exercise-adjusted
// sensitivity, rounded to ExerciseEstimatePrecision places.
func EstimateDoseWithExercise(carbs, baseSensitivity float64, recency ExerciseRecency) (float64, error) {
	adjusted, err := ExerciseAdjustedSensitivity(baseSensitivity, recency)
	if err != nil {
		return 0, err
	}
	dose, err := EstimateDose(carbs, adjusted)
	if err != nil {
		return 0, err
	}
	return Round(dose, ExerciseEstimatePrecision), nil
}
