package repository

import (
	"context"

	"github.com/sakif/insulog/internal/insulin"
	"github.com/sakif/insulog/internal/model"
)

type UserRepository interface {
	// CreateUser assigns user.ID and persists the account with its history.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUser loads the account and all of its meals.
	GetUser(ctx context.Context, id string) (*model.User, error)
	// SaveSensitivity replaces the stored history and current value wholesale.
	SaveSensitivity(ctx context.Context, id string, history []insulin.Entry, current float64) error
	DeleteUser(ctx context.Context, id string) error
}

type MealRepository interface {
	CreateMeal(ctx context.Context, meal *model.Meal) error
	GetMeal(ctx context.Context, id string) (*model.Meal, error)
	UpdateMeal(ctx context.Context, meal *model.Meal) error
	ListMeals(ctx context.Context, userID string) ([]model.Meal, error)
}
