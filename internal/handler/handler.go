// Package handler contains the HTTP handlers of the insulog API.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the request (path values, query, JSON body)
//  2. Call the service layer
//  3. Write the response (status code, headers, JSON body)
//
// Handlers hold no business rules. Validation and dose arithmetic live in
// the service and insulin packages; a handler only translates.
//
// ACCEPT INTERFACES:
// Each handler depends on a small interface listing just the service methods
// it calls. *service.UserService and friends satisfy them, and tests can
// substitute a stub without touching SQLite.
package handler

import (
	"context"

	"github.com/sakif/insulog/internal/insulin"
	"github.com/sakif/insulog/internal/model"
	"github.com/sakif/insulog/internal/service"
)

// UserService is the account API used by UserHandler.
type UserService interface {
	Create(ctx context.Context) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	UpdateSensitivity(ctx context.Context, id string, value float64) (*model.User, error)
	ReplaceHistory(ctx context.Context, id string, history []insulin.Entry, current float64) (*model.User, error)
}

// MealService is the meal API used by MealHandler.
type MealService interface {
	Create(ctx context.Context, userID string, in service.MealInput) (*model.Meal, error)
	Update(ctx context.Context, id string, patch model.MealPatch) (*model.Meal, error)
}

// DashboardBuilder builds the meal card list.
type DashboardBuilder interface {
	Build(ctx context.Context, userID, query, exercise string) (*service.Dashboard, error)
}

// DoseEstimator computes stateless dose estimates.
type DoseEstimator interface {
	Estimate(req service.EstimateRequest) (*service.Estimate, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ UserService      = (*service.UserService)(nil)
	_ MealService      = (*service.MealService)(nil)
	_ DashboardBuilder = (*service.DashboardService)(nil)
	_ DoseEstimator    = (*service.Estimator)(nil)
)
