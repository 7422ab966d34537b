package insulin

import (
	"errors"
	"math"
	"testing"
)

func TestEstimateDose(t *testing.T) {
	tests := []struct {
		name        string
		carbs       float64
		sensitivity float64
		want        float64
	}{
		{"even split", 60, 10, 6},
		{"zero carbs", 0, 11, 0},
		{"fractional", 45, 11, 45.0 / 11},
		{"large meal", 1000, 7.5, 1000 / 7.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EstimateDose(tt.carbs, tt.sensitivity)
			if err != nil {
				t.Fatalf("EstimateDose(%v, %v) error = %v", tt.carbs, tt.sensitivity, err)
			}
			// The raw estimate is the exact quotient, no rounding applied.
			if got != tt.want {
				t.Errorf("EstimateDose(%v, %v) = %v, want %v", tt.carbs, tt.sensitivity, got, tt.want)
			}
		})
	}
}

func TestEstimateDose_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name        string
		carbs       float64
		sensitivity float64
		wantErr     error
	}{
		{"zero sensitivity", 50, 0, ErrInvalidSensitivity},
		{"negative sensitivity", 50, -3, ErrInvalidSensitivity},
		{"NaN sensitivity", 50, math.NaN(), ErrInvalidSensitivity},
		{"infinite sensitivity", 50, math.Inf(1), ErrInvalidSensitivity},
		{"negative carbs", -1, 10, ErrInvalidCarbs},
		{"NaN carbs", math.NaN(), 10, ErrInvalidCarbs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EstimateDose(tt.carbs, tt.sensitivity)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("EstimateDose(%v, %v) error = %v, want %v", tt.carbs, tt.sensitivity, err, tt.wantErr)
			}
		})
	}
}

func TestEstimateDoseRounded(t *testing.T) {
	got, err := EstimateDoseRounded(45, 11)
	if err != nil {
		t.Fatalf("EstimateDoseRounded() error = %v", err)
	}
	if got != 4.0909 {
		t.Errorf("EstimateDoseRounded(45, 11) = %v, want 4.0909", got)
	}
}

func TestExerciseAdjustedSensitivity(t *testing.T) {
	tests := []struct {
		recency ExerciseRecency
		want    float64
	}{
		{ExerciseLast6Hours, 8.00},
		{ExerciseLast12Hours, 8.80},
		{ExerciseLast24Hours, 9.30},
		{ExerciseNone, 10.00},
		{"", 10.00},
	}

	for _, tt := range tests {
		t.Run(string(tt.recency), func(t *testing.T) {
			got, err := ExerciseAdjustedSensitivity(10, tt.recency)
			if err != nil {
				t.Fatalf("ExerciseAdjustedSensitivity() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExerciseAdjustedSensitivity(10, %q) = %v, want %v", tt.recency, got, tt.want)
			}
		})
	}
}

func TestExerciseAdjustedSensitivity_UnknownBucket(t *testing.T) {
	_, err := ExerciseAdjustedSensitivity(10, "LastWeek")
	if !errors.Is(err, ErrUnknownExercise) {
		t.Errorf("error = %v, want ErrUnknownExercise", err)
	}
}

func TestParseExerciseRecency(t *testing.T) {
	tests := []struct {
		in      string
		want    ExerciseRecency
		wantErr bool
	}{
		{"", ExerciseNone, false},
		{"none", ExerciseNone, false},
		{"Last6Hours", ExerciseLast6Hours, false},
		{"last12hours", ExerciseLast12Hours, false},
		{" LAST24HOURS ", ExerciseLast24Hours, false},
		{"yesterday", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExerciseRecency(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseExerciseRecency(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseExerciseRecency(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEstimateDoseWithExercise(t *testing.T) {
	// 60g at 10 g/U with a workout in the last 6 hours: 60 / 8 = 7.5
	got, err := EstimateDoseWithExercise(60, 10, ExerciseLast6Hours)
	if err != nil {
		t.Fatalf("EstimateDoseWithExercise() error = %v", err)
	}
	if got != 7.5 {
		t.Errorf("EstimateDoseWithExercise(60, 10, Last6Hours) = %v, want 7.5", got)
	}

	// 50 / 9.3 = 5.376... → 5.38
	got, err = EstimateDoseWithExercise(50, 10, ExerciseLast24Hours)
	if err != nil {
		t.Fatalf("EstimateDoseWithExercise() error = %v", err)
	}
	if got != 5.38 {
		t.Errorf("EstimateDoseWithExercise(50, 10, Last24Hours) = %v, want 5.38", got)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		x      float64
		places int
		want   float64
	}{
		{1.23456, 4, 1.2346},
		{1.23454, 4, 1.2345},
		{2.5, 0, 3},
		{8.004, 2, 8},
	}
	for _, tt := range tests {
		if got := Round(tt.x, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.x, tt.places, got, tt.want)
		}
	}
}
