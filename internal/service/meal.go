package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/insulog/internal/apperror"
	"github.com/sakif/insulog/internal/model"
	"github.com/sakif/insulog/internal/repository"
	"github.com/sakif/insulog/internal/state"
)

// MealInput is everything a user fills in when recording a meal.
type MealInput struct {
	Name        string
	Description string
	Carbs       float64
	Insulin     float64
	ImageURL    string
}

// MealService records and edits meals.
type MealService struct {
	meals  repository.MealRepository
	store  *state.Store
	logger *slog.Logger
}

// NewMealService creates a MealService.
func NewMealService(meals repository.MealRepository, store *state.Store, logger *slog.Logger) *MealService {
	return &MealService{
		meals:  meals,
		store:  store,
		logger: logger,
	}
}

// Create validates and saves a meal for userID.
// Returns apperror.ErrNotFound if the user doesn't exist.
func (s *MealService) Create(ctx context.Context, userID string, in MealInput) (*model.Meal, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	meal := &model.Meal{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Carbs:       in.Carbs,
		Insulin:     in.Insulin,
		ImageURL:    imageOrDefault(in.ImageURL),
	}
	if err := validateMeal(meal); err != nil {
		return nil, err
	}

	if err := s.meals.CreateMeal(ctx, meal); err != nil {
		s.store.Invalidate(userID)
		return nil, fmt.Errorf("creating meal: %w", err)
	}
	s.store.Update(userID, state.WithMeal(*meal))

	s.logger.Info("meal created",
		slog.String("id", meal.ID),
		slog.String("user_id", userID),
	)
	return meal, nil
}

// Get retrieves a meal by its ID.
func (s *MealService) Get(ctx context.Context, id string) (*model.Meal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "meal ID is required")
	}
	return s.meals.GetMeal(ctx, id)
}

// Update applies patch to a meal. Fields left nil keep their current value.
//
// Fetch, patch, validate, save: the whole meal is validated after patching,
// so a patch can't sneak a bad value past the rules by leaving it unchanged.
func (s *MealService) Update(ctx context.Context, id string, patch model.MealPatch) (*model.Meal, error) {
	meal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		meal.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		meal.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Carbs != nil {
		meal.Carbs = *patch.Carbs
	}
	if patch.Insulin != nil {
		meal.Insulin = *patch.Insulin
	}
	if patch.ImageURL != nil {
		meal.ImageURL = imageOrDefault(*patch.ImageURL)
	}

	if err := validateMeal(meal); err != nil {
		return nil, err
	}

	if err := s.meals.UpdateMeal(ctx, meal); err != nil {
		s.logger.Error("failed to update meal",
			slog.String("id", meal.ID),
			slog.String("error", err.Error()),
		)
		s.store.Invalidate(meal.UserID)
		return nil, fmt.Errorf("updating meal: %w", err)
	}
	s.store.Update(meal.UserID, state.WithMeal(*meal))

	s.logger.Info("meal updated", slog.String("id", meal.ID))
	return meal, nil
}

func validateMeal(m *model.Meal) error {
	if err := checkLength("name", m.Name, MinMealNameLength, MaxMealNameLength); err != nil {
		return err
	}
	if err := checkLength("description", m.Description, 0, MaxDescriptionLength); err != nil {
		return err
	}
	if err := checkLength("imageUrl", m.ImageURL, 1, MaxImageURLLength); err != nil {
		return err
	}
	if err := checkNumber("carbs", m.Carbs, MinCarbs, MaxCarbs, CarbsPlaces); err != nil {
		return err
	}
	return checkNumber("insulin", m.Insulin, MinInsulin, MaxInsulin, InsulinPlaces)
}

func imageOrDefault(url string) string {
	if url = strings.TrimSpace(url); url == "" {
		return model.DefaultImageURL
	}
	return url
}
