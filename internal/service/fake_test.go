package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/sakif/insulog/internal/apperror"
	"github.com/sakif/insulog/internal/insulin"
	"github.com/sakif/insulog/internal/model"
	"github.com/sakif/insulog/internal/repository"
	"github.com/sakif/insulog/internal/state"
)

// =========================================================================
// FAKE REPOSITORY
// =========================================================================
//
// fakeRepo keeps users and meals in maps and implements both repository
// interfaces, the same way *sqlite.DB does. Setting failWith makes every
// write fail, to exercise the error paths.

type fakeRepo struct {
	mu       sync.Mutex
	users    map[string]*model.User
	meals    map[string]*model.Meal
	nextID   int
	loads    int
	failWith error
}

var (
	_ repository.UserRepository = (*fakeRepo)(nil)
	_ repository.MealRepository = (*fakeRepo)(nil)
)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users: make(map[string]*model.User),
		meals: make(map[string]*model.Meal),
	}
}

func (f *fakeRepo) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeRepo) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	user.ID = f.id("user")
	f.users[user.ID] = user.Clone()
	return nil
}

func (f *fakeRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := u.Clone()
	out.Meals = f.mealsOf(id)
	return out, nil
}

func (f *fakeRepo) SaveSensitivity(_ context.Context, id string, history []insulin.Entry, current float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.History = slices.Clone(history)
	u.InsulinSensitivity = current
	return nil
}

func (f *fakeRepo) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.users, id)
	return nil
}

func (f *fakeRepo) CreateMeal(_ context.Context, meal *model.Meal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.users[meal.UserID]; !ok {
		return apperror.NotFound("user", meal.UserID)
	}
	meal.ID = f.id("meal")
	meal.CreatedAt = f.tick()
	meal.UpdatedAt = meal.CreatedAt
	stored := *meal
	f.meals[meal.ID] = &stored
	return nil
}

func (f *fakeRepo) GetMeal(_ context.Context, id string) (*model.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meals[id]
	if !ok {
		return nil, apperror.NotFound("meal", id)
	}
	out := *m
	return &out, nil
}

func (f *fakeRepo) UpdateMeal(_ context.Context, meal *model.Meal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.meals[meal.ID]; !ok {
		return apperror.NotFound("meal", meal.ID)
	}
	meal.UpdatedAt = f.tick()
	stored := *meal
	f.meals[meal.ID] = &stored
	return nil
}

func (f *fakeRepo) ListMeals(_ context.Context, userID string) ([]model.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mealsOf(userID), nil
}

func (f *fakeRepo) mealsOf(userID string) []model.Meal {
	out := []model.Meal{}
	for _, m := range f.meals {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	slices.SortFunc(out, func(a, b model.Meal) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out
}

// tick returns a strictly increasing time so ordering by UpdatedAt is
// deterministic. Called with f.mu held.
func (f *fakeRepo) tick() time.Time {
	f.nextID++
	return time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.nextID) * time.Minute)
}

var errDatabaseDown = errors.New("database is down")

// =========================================================================
// TEST WIRING
// =========================================================================

type testServices struct {
	repo      *fakeRepo
	store     *state.Store
	users     *UserService
	meals     *MealService
	dashboard *DashboardService
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServices() *testServices {
	repo := newFakeRepo()
	store := state.New(repo.GetUser)
	logger := newTestLogger()
	return &testServices{
		repo:      repo,
		store:     store,
		users:     NewUserService(repo, store, logger),
		meals:     NewMealService(repo, store, logger),
		dashboard: NewDashboardService(store, NewEstimator(nil), logger),
	}
}

func ptr[T any](v T) *T { return &v }
