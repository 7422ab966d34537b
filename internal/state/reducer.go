package state

import (
	"slices"
	"time"

	"github.com/sakif/insulog/internal/insulin"
	"github.com/sakif/insulog/internal/model"
)

// WithMeal records a created or edited meal. Any older copy of the meal is
// removed and m goes to the front, keeping meals ordered by most recent edit.
func WithMeal(m model.Meal) Reducer {
	return func(u *model.User) *model.User {
		meals := slices.DeleteFunc(u.Meals, func(existing model.Meal) bool {
			return existing.ID == m.ID
		})
		u.Meals = append([]model.Meal{m}, meals...)
		if m.UpdatedAt.After(u.UpdatedAt) {
			u.UpdatedAt = m.UpdatedAt
		}
		return u
	}
}

// WithSensitivity replaces the sensitivity history and current value.
func WithSensitivity(history []insulin.Entry, current float64, at time.Time) Reducer {
	history = slices.Clone(history)
	return func(u *model.User) *model.User {
		u.History = slices.Clone(history)
		u.InsulinSensitivity = current
		u.UpdatedAt = at
		return u
	}
}
