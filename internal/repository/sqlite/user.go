package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sakif/insulog/internal/apperror"
	"github.com/sakif/insulog/internal/insulin"
	"github.com/sakif/insulog/internal/model"
	"github.com/sakif/insulog/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new anonymous account.
//
// WHY A RANDOM UUID AND NOT AN xid?
// Meals use xid (sortable, compact). A user ID is different: the browser keeps it
// as the only proof of who it is, and anyone who can guess it can read the account.
// xids start with a timestamp and a machine ID, so neighbouring IDs are easy to guess.
// A version 4 UUID carries 122 random bits.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = uuid.NewString()

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	history, err := encodeHistory(user.History)
	if err != nil {
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, insulin_sensitivity, history, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.InsulinSensitivity,
		history,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetUser retrieves an account together with its meals, newest edit first.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUser(ctx context.Context, id string) (*model.User, error) {
	var (
		u       model.User
		history string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, insulin_sensitivity, history, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.InsulinSensitivity,
		&history,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	if u.History, err = decodeHistory(history); err != nil {
		return nil, fmt.Errorf("sqlite: decoding history of user %s: %w", id, err)
	}

	// The row scan above has released the connection, so this second query
	// does not deadlock on the single-connection pool.
	if u.Meals, err = db.ListMeals(ctx, id); err != nil {
		return nil, err
	}

	return &u, nil
}

// SaveSensitivity overwrites the stored history and current sensitivity.
func (db *DB) SaveSensitivity(ctx context.Context, id string, history []insulin.Entry, current float64) error {
	encoded, err := encodeHistory(history)
	if err != nil {
		return fmt.Errorf("sqlite: saving sensitivity of user %s: %w", id, err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET history = ?, insulin_sensitivity = ?, updated_at = ?
		 WHERE id = ?`,
		encoded,
		current,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving sensitivity of user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}

// DeleteUser removes an account. ON DELETE CASCADE removes its meals.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}

func encodeHistory(history []insulin.Entry) (string, error) {
	if history == nil {
		history = []insulin.Entry{}
	}
	b, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("encoding history: %w", err)
	}
	return string(b), nil
}

func decodeHistory(s string) ([]insulin.Entry, error) {
	history := []insulin.Entry{}
	if err := json.Unmarshal([]byte(s), &history); err != nil {
		return nil, err
	}
	return history, nil
}
