// Package service contains the business rules of the tracker.
//
// THE THREE LAYERS:
//
//	Handler (HTTP)     → parses requests, writes responses
//	Service (rules)    → validates, reconciles, computes doses
//	Repository (data)  → reads and writes SQLite
//
// Services take repository interfaces, not *sqlite.DB, so tests can hand them
// an in-memory fake. They know nothing about HTTP: they return apperror
// values and the handler picks the status code.
//
// READS GO THROUGH THE STATE STORE:
// Every service that reads a user asks the state.Store, which serves a cached
// snapshot or loads it from the repository once. Writes hit the repository
// first and are then folded into the store with a reducer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sakif/insulog/internal/apperror"
	"github.com/sakif/insulog/internal/insulin"
	"github.com/sakif/insulog/internal/model"
	"github.com/sakif/insulog/internal/repository"
	"github.com/sakif/insulog/internal/state"
)

// UserService manages anonymous accounts and their sensitivity history.
type UserService struct {
	users  repository.UserRepository
	store  *state.Store
	logger *slog.Logger
	now    func() time.Time

	// sensitivityMu serialises read-modify-write cycles on a history, so two
	// updates on the same day can't both start from the old history.
	sensitivityMu sync.Mutex
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, store *state.Store, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Create registers a new account with the default sensitivity.
func (s *UserService) Create(ctx context.Context) (*model.User, error) {
	user := model.NewUser(s.now().UTC())

	if err := s.users.CreateUser(ctx, user); err != nil {
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating user: %w", err)
	}
	s.store.Put(user)

	s.logger.Info("user created", slog.String("id", user.ID))
	return user, nil
}

// Get returns the account with its meals, most recently edited first.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.store.Get(ctx, id)
}

// UpdateSensitivity records value as today's sensitivity. A second update on
// the same UTC day replaces the first instead of adding an entry.
func (s *UserService) UpdateSensitivity(ctx context.Context, id string, value float64) (*model.User, error) {
	if err := checkNumber("insulinSensitivity", value, MinSensitivity, MaxSensitivity, SensitivityPlaces); err != nil {
		return nil, err
	}

	s.sensitivityMu.Lock()
	defer s.sensitivityMu.Unlock()

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	history, err := insulin.ApplyNewEntry(user.History, insulin.Entry{Date: now, Value: value})
	if err != nil {
		return nil, fromInsulinError(err)
	}

	return s.save(ctx, user, history, value, now)
}

// ReplaceHistory stores a history reconciled by the client. Every entry must
// pass the same checks as a single update, the history must be valid and end
// no later than today, and current must equal its last value.
func (s *UserService) ReplaceHistory(ctx context.Context, id string, history []insulin.Entry, current float64) (*model.User, error) {
	if len(history) == 0 {
		return nil, apperror.ValidationFailed("historialInsulinSensitivity", "history must have at least one entry")
	}
	for i, e := range history {
		field := fmt.Sprintf("historialInsulinSensitivity[%d]", i)
		if err := checkNumber(field, e.Value, MinSensitivity, MaxSensitivity, SensitivityPlaces); err != nil {
			return nil, err
		}
	}
	if err := insulin.ValidateHistoryAt(history, s.now()); err != nil {
		return nil, fromInsulinError(err)
	}
	if err := checkNumber("insulinSensitivity", current, MinSensitivity, MaxSensitivity, SensitivityPlaces); err != nil {
		return nil, err
	}
	if last, _ := insulin.Current(history); last != current {
		return nil, apperror.ValidationFailed("insulinSensitivity",
			fmt.Sprintf("insulinSensitivity %g does not match the last history entry %g", current, last))
	}

	normalised := make([]insulin.Entry, len(history))
	for i, e := range history {
		normalised[i] = insulin.Entry{Date: e.Date.UTC(), Value: e.Value}
	}

	s.sensitivityMu.Lock()
	defer s.sensitivityMu.Unlock()

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, user, normalised, current, s.now().UTC())
}

func (s *UserService) save(ctx context.Context, user *model.User, history []insulin.Entry, current float64, now time.Time) (*model.User, error) {
	if err := s.users.SaveSensitivity(ctx, user.ID, history, current); err != nil {
		s.logger.Error("failed to save sensitivity",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		// The write may or may not have landed. Drop the snapshot so the next
		// read comes from storage.
		s.store.Invalidate(user.ID)
		return nil, fmt.Errorf("saving sensitivity: %w", err)
	}

	reduce := state.WithSensitivity(history, current, now)
	s.store.Update(user.ID, reduce)

	s.logger.Info("sensitivity updated",
		slog.String("user_id", user.ID),
		slog.Float64("value", current),
		slog.Int("entries", len(history)),
	)
	return reduce(user), nil
}
