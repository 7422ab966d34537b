// Package model defines the data structures used throughout the application.
// Structs here carry their JSON tags, so the same value flows from SQLite
// through the services to the HTTP response.
package model

import "time"

// DefaultImageURL is stored when a meal is saved without a photo.
const DefaultImageURL = "/placeholder.svg"

// Meal is one recorded meal: what was eaten, how many grams of carbohydrate it
// had, and how many units of insulin were actually administered for it.
//
// The `json:"..."` tags keep the wire names the dashboard already speaks
// (`_id`, `carbs`, `insulin`, `imageUrl`), so a Meal can be sent to the
// browser as-is.
type Meal struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Carbs       float64   `json:"carbs"`   // grams
	Insulin     float64   `json:"insulin"` // units
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MealPatch carries an edit to a meal. A nil field means "leave unchanged".
//
// WHY POINTERS?
// A JSON body of {"carbs": 0} and a body that omits carbs entirely both
// decode to 0 in a plain float64. Pointers let us tell the two apart, so a
// client can edit only the fields it sends.
type MealPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Carbs       *float64 `json:"carbs"`
	Insulin     *float64 `json:"insulin"`
	ImageURL    *string  `json:"imageUrl"`
}
