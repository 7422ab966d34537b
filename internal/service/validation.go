package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sakif/insulog/internal/apperror"
	"github.com/sakif/insulog/internal/insulin"
)

// Validation limits. These match the limits of the meal and sensitivity forms
// so that anything the browser accepts, the API accepts too.
const (
	MinMealNameLength    = 2
	MaxMealNameLength    = 50
	MaxDescriptionLength = 100
	MaxImageURLLength    = 2048

	MinCarbs    = 1
	MaxCarbs    = 1000
	CarbsPlaces = 2

	MinInsulin    = 1
	MaxInsulin    = 100
	InsulinPlaces = 4

	MinSensitivity    = 1
	MaxSensitivity    = 100
	SensitivityPlaces = 4
)

// checkNumber enforces a closed range and a maximum number of decimal places.
func checkNumber(field string, v, min, max float64, places int) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return apperror.ValidationFailed(field, fmt.Sprintf("%s must be a number", field))
	}
	if v < min || v > max {
		return apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be between %g and %g", field, min, max))
	}
	if decimalPlaces(v) > places {
		return apperror.ValidationFailed(field,
			fmt.Sprintf("%s must have at most %d decimal places", field, places))
	}
	return nil
}

// decimalPlaces counts the digits after the point in the shortest decimal
// form of v, so 0.1 has one place even though its binary value doesn't end.
func decimalPlaces(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// checkLength counts characters, not bytes: "Ñoquis" is six characters.
func checkLength(field, s string, min, max int) error {
	n := utf8.RuneCountInString(s)
	if n < min {
		if min == 1 {
			return apperror.ValidationFailed(field, fmt.Sprintf("%s is required", field))
		}
		return apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be at least %d characters", field, min))
	}
	if n > max {
		return apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be %d characters or less", field, max))
	}
	return nil
}

// fromInsulinError turns a sentinel from the insulin package into a
// validation failure on the request field it concerns. Other errors pass
// through unchanged.
func fromInsulinError(err error) error {
	var field string
	switch {
	case errors.Is(err, insulin.ErrInvalidCarbs):
		field = "carbs"
	case errors.Is(err, insulin.ErrUnknownExercise):
		field = "exercise"
	case errors.Is(err, insulin.ErrInvalidSensitivity):
		field = "insulinSensitivity"
	case errors.Is(err, insulin.ErrMalformedEntry),
		errors.Is(err, insulin.ErrDuplicateDay),
		errors.Is(err, insulin.ErrUnordered),
		errors.Is(err, insulin.ErrFutureEntry):
		field = "historialInsulinSensitivity"
	default:
		return err
	}
	return apperror.Invalid(field, err)
}
