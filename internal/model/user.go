package model

import (
	"slices"
	"time"

	"github.com/sakif/insulog/internal/insulin"
)

// DefaultSensitivity is the grams-per-unit value a new account starts with.
const DefaultSensitivity = 11

// User is an anonymous account. Its ID is the only credential: whoever holds
// it can read and write the account.
//
// InsulinSensitivity always equals the value of the last History entry. It
// is stored separately so the dashboard can read it without walking History.
type User struct {
	ID                 string          `json:"_id"`
	History            []insulin.Entry `json:"historialInsulinSensitivity"`
	InsulinSensitivity float64         `json:"insulinSensitivity"`
	Meals              []Meal          `json:"meals"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// NewUser returns a fresh account seeded with the default sensitivity for
// the day of now. The repository assigns the ID.
func NewUser(now time.Time) *User {
	return &User{
		History:            []insulin.Entry{{Date: now, Value: DefaultSensitivity}},
		InsulinSensitivity: DefaultSensitivity,
		Meals:              []Meal{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Clone returns a deep copy, so the copy's slices can be changed without
// touching u.
func (u *User) Clone() *User {
	c := *u
	c.History = slices.Clone(u.History)
	c.Meals = slices.Clone(u.Meals)
	return &c
}
