package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/sakif/insulog/internal/apperror"
	"github.com/sakif/insulog/internal/insulin"
	"github.com/sakif/insulog/internal/model"
	"github.com/sakif/insulog/internal/state"
)

// MealCard is a meal as the dashboard shows it: the record plus the dose the
// current sensitivity suggests and whether the recorded dose is far from it.
//
// model.Meal is embedded, so its JSON fields appear at the top level of the
// card next to the computed ones.
type MealCard struct {
	model.Meal
	EstimatedInsulin      float64  `json:"estimatedInsulin"`
	EstimatedWithExercise *float64 `json:"estimatedInsulinWithExercise,omitempty"`
	Mismatch              bool     `json:"mismatch"`
}

// Dashboard is the meal list of one user.
type Dashboard struct {
	UserID             string                  `json:"userId"`
	InsulinSensitivity float64                 `json:"insulinSensitivity"`
	Query              string                  `json:"query"`
	Exercise           insulin.ExerciseRecency `json:"exercise"`
	Meals              []MealCard              `json:"meals"`
}

// DashboardService builds meal cards from the user's cached snapshot.
type DashboardService struct {
	store     *state.Store
	estimator *Estimator
	logger    *slog.Logger
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(store *state.Store, estimator *Estimator, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		store:     store,
		estimator: estimator,
		logger:    logger,
	}
}

// Build returns the dashboard of userID. A non-empty query keeps only meals
// whose name fuzzy-matches it, and exercise adds an adjusted estimate to every
// card. Cards are ordered by most recent edit.
func (s *DashboardService) Build(ctx context.Context, userID, query, exercise string) (*Dashboard, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	recency, err := insulin.ParseExerciseRecency(exercise)
	if err != nil {
		return nil, fromInsulinError(err)
	}

	user, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	meals := filterMeals(user.Meals, query)
	slices.SortStableFunc(meals, func(a, b model.Meal) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	cards := make([]MealCard, 0, len(meals))
	for _, m := range meals {
		est, err := s.estimator.Estimate(EstimateRequest{
			Carbs:       m.Carbs,
			Sensitivity: user.InsulinSensitivity,
			Insulin:     &m.Insulin,
			Exercise:    recency,
		})
		if err != nil {
			// Stored meals passed validation, so this is a data problem.
			s.logger.Error("failed to estimate stored meal",
				slog.String("meal_id", m.ID),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("estimating meal %s: %w", m.ID, err)
		}
		cards = append(cards, MealCard{
			Meal:                  m,
			EstimatedInsulin:      est.EstimatedInsulin,
			EstimatedWithExercise: est.EstimatedWithExercise,
			Mismatch:              *est.Mismatch,
		})
	}

	return &Dashboard{
		UserID:             user.ID,
		InsulinSensitivity: user.InsulinSensitivity,
		Query:              query,
		Exercise:           recency,
		Meals:              cards,
	}, nil
}

// mealNames adapts a meal slice to fuzzy.Source.
type mealNames []model.Meal

func (m mealNames) String(i int) string { return m[i].Name }
func (m mealNames) Len() int             { return len(m) }

// filterMeals returns the meals whose name contains the letters of query in
// order, ignoring case. An empty query keeps every meal.
func filterMeals(meals []model.Meal, query string) []model.Meal {
	if query == "" {
		return slices.Clone(meals)
	}
	matches := fuzzy.FindFrom(query, mealNames(meals))
	out := make([]model.Meal, 0, len(matches))
	for _, match := range matches {
		out = append(out, meals[match.Index])
	}
	return out
}
