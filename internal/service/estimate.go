package service

import (
	"github.com/sakif/insulog/internal/insulin"
)

// EstimateRequest is the input of a dose calculation. Insulin is the dose
// actually given, if any; without it no mismatch is reported.
type EstimateRequest struct {
	Carbs       float64
	Sensitivity float64
	Insulin     *float64
	Exercise    insulin.ExerciseRecency
}

// Estimate is the result of a dose calculation.
type Estimate struct {
	EstimatedInsulin float64 `json:"estimatedInsulin"`
	// Set only when the request named an exercise bucket other than None.
	EstimatedWithExercise *float64 `json:"estimatedInsulinWithExercise,omitempty"`
	// Set only when the request carried an actual dose.
	Mismatch *bool `json:"mismatch,omitempty"`
}

// Estimator turns carbs and sensitivity into dose estimates. It holds no
// state besides the classifier and is safe for concurrent use.
type Estimator struct {
	classifier *insulin.Classifier
}

// NewEstimator returns an Estimator. A nil classifier uses the default bands.
func NewEstimator(classifier *insulin.Classifier) *Estimator {
	if classifier == nil {
		classifier = insulin.NewClassifier()
	}
	return &Estimator{classifier: classifier}
}

// Estimate computes the rounded dose, then the exercise-adjusted dose and the
// mismatch flag when the request asks for them. The mismatch is judged on the
// rounded estimate, the same number the user sees.
func (e *Estimator) Estimate(req EstimateRequest) (*Estimate, error) {
	dose, err := insulin.EstimateDoseRounded(req.Carbs, req.Sensitivity)
	if err != nil {
		return nil, fromInsulinError(err)
	}
	out := &Estimate{EstimatedInsulin: dose}

	if req.Exercise != "" && req.Exercise != insulin.ExerciseNone {
		adjusted, err := insulin.EstimateDoseWithExercise(req.Carbs, req.Sensitivity, req.Exercise)
		if err != nil {
			return nil, fromInsulinError(err)
		}
		out.EstimatedWithExercise = &adjusted
	}

	if req.Insulin != nil {
		mismatch := e.classifier.IsMismatch(dose, *req.Insulin)
		out.Mismatch = &mismatch
	}
	return out, nil
}
