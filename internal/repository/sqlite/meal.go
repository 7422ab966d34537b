package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/insulog/internal/apperror"
	"github.com/sakif/insulog/internal/model"
	"github.com/sakif/insulog/internal/repository"
)

// compile-time check that *DB implements repository.MealRepository
var _ repository.MealRepository = (*DB)(nil)

// CreateMeal inserts a meal under meal.UserID.
//
// The foreign key rejects meals for a user that doesn't exist. We check first
// anyway so the caller gets a clean NotFound instead of a constraint error.
func (db *DB) CreateMeal(ctx context.Context, meal *model.Meal) error {
	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE id = ?`, meal.UserID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: looking up user %s: %w", meal.UserID, err)
	}
	if exists == 0 {
		return apperror.NotFound("user", meal.UserID)
	}

	meal.ID = xid.New().String()
	now := time.Now().UTC()
	meal.CreatedAt = now
	meal.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO meals (id, user_id, name, description, carbs, insulin, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meal.ID,
		meal.UserID,
		meal.Name,
		meal.Description,
		meal.Carbs,
		meal.Insulin,
		meal.ImageURL,
		meal.CreatedAt,
		meal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating meal: %w", err)
	}

	return nil
}

// GetMeal retrieves a single meal by its ID.
func (db *DB) GetMeal(ctx context.Context, id string) (*model.Meal, error) {
	var m model.Meal

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, carbs, insulin, image_url, created_at, updated_at
		 FROM meals WHERE id = ?`,
		id,
	).Scan(
		&m.ID, &m.UserID, &m.Name, &m.Description,
		&m.Carbs, &m.Insulin, &m.ImageURL,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("meal", id)
		}
		return nil, fmt.Errorf("sqlite: getting meal %s: %w", id, err)
	}

	return &m, nil
}

// UpdateMeal writes every user-editable field and refreshes updated_at.
// id, user_id and created_at never change.
func (db *DB) UpdateMeal(ctx context.Context, meal *model.Meal) error {
	meal.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE meals
		 SET name = ?, description = ?, carbs = ?, insulin = ?, image_url = ?, updated_at = ?
		 WHERE id = ?`,
		meal.Name,
		meal.Description,
		meal.Carbs,
		meal.Insulin,
		meal.ImageURL,
		meal.UpdatedAt,
		meal.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating meal %s: %w", meal.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("meal", meal.ID)
	}

	return nil
}

// ListMeals returns all meals of a user, most recently edited first.
//
// SORTING IN GO, NOT SQL:
// DATETIME values are stored as text, and text with a variable number of
// fractional-second digits doesn't sort chronologically. We sort the scanned
// time.Time values instead. A user has at most a few thousand meals.
func (db *DB) ListMeals(ctx context.Context, userID string) ([]model.Meal, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, name, description, carbs, insulin, image_url, created_at, updated_at
		 FROM meals WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing meals of user %s: %w", userID, err)
	}
	defer rows.Close()

	meals := []model.Meal{}
	for rows.Next() {
		var m model.Meal
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Name, &m.Description,
			&m.Carbs, &m.Insulin, &m.ImageURL,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning meal row: %w", err)
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating meals: %w", err)
	}

	slices.SortStableFunc(meals, func(a, b model.Meal) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	return meals, nil
}
