package service

import (
	"errors"
	"testing"

	"github.com/sakif/insulog/internal/apperror"
	"github.com/sakif/insulog/internal/insulin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimator_Estimate(t *testing.T) {
	e := NewEstimator(nil)

	t.Run("dose only", func(t *testing.T) {
		got, err := e.Estimate(EstimateRequest{Carbs: 45, Sensitivity: 11})
		require.NoError(t, err)
		assert.Equal(t, 4.0909, got.EstimatedInsulin)
		assert.Nil(t, got.EstimatedWithExercise)
		assert.Nil(t, got.Mismatch)
	})

	t.Run("with actual dose", func(t *testing.T) {
		got, err := e.Estimate(EstimateRequest{Carbs: 100, Sensitivity: 10, Insulin: ptr(13.0)})
		require.NoError(t, err)
		require.NotNil(t, got.Mismatch)
		assert.True(t, *got.Mismatch, "10 vs 13 is over the mid band tolerance")
	})

	t.Run("with exercise", func(t *testing.T) {
		got, err := e.Estimate(EstimateRequest{Carbs: 60, Sensitivity: 10, Exercise: insulin.ExerciseLast6Hours})
		require.NoError(t, err)
		require.NotNil(t, got.EstimatedWithExercise)
		assert.Equal(t, 7.5, *got.EstimatedWithExercise)
		assert.Equal(t, 6.0, got.EstimatedInsulin)
	})

	t.Run("exercise None adds nothing", func(t *testing.T) {
		got, err := e.Estimate(EstimateRequest{Carbs: 60, Sensitivity: 10, Exercise: insulin.ExerciseNone})
		require.NoError(t, err)
		assert.Nil(t, got.EstimatedWithExercise)
	})
}

func TestEstimator_MismatchUsesRoundedEstimate(t *testing.T) {
	// 6.00004 rounds to 6.0000, which is within one unit of 7.
	e := NewEstimator(nil)
	got, err := e.Estimate(EstimateRequest{Carbs: 60.0004, Sensitivity: 10, Insulin: ptr(7.0)})
	require.NoError(t, err)
	assert.Equal(t, 6.0, got.EstimatedInsulin)
	assert.False(t, *got.Mismatch)
}

func TestEstimator_Errors(t *testing.T) {
	tests := []struct {
		name      string
		req       EstimateRequest
		wantField string
	}{
		{"zero sensitivity", EstimateRequest{Carbs: 50}, "insulinSensitivity"},
		{"negative carbs", EstimateRequest{Carbs: -1, Sensitivity: 10}, "carbs"},
		{"unknown exercise", EstimateRequest{Carbs: 50, Sensitivity: 10, Exercise: "Yesterday"}, "exercise"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEstimator(nil).Estimate(tt.req)
			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr), "error = %v, want *AppError", err)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.wantField, appErr.Field)
		})
	}
}

func TestDecimalPlaces(t *testing.T) {
	tests := []struct {
		v    float64
		want int
	}{
		{60, 0},
		{0.1, 1},
		{12.34, 2},
		{1.2345, 4},
		{9.12345, 5},
	}
	for _, tt := range tests {
		if got := decimalPlaces(tt.v); got != tt.want {
			t.Errorf("decimalPlaces(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}
