package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/insulog/internal/apperror"
	"github.com/sakif/insulog/internal/model"
)

func validInput() MealInput {
	return MealInput{Name: "Pasta", Description: "with tomato", Carbs: 60, Insulin: 6}
}

func TestMealCreate(t *testing.T) {
	ts := newTestServices()
	user, _ := ts.users.Create(context.Background())

	in := validInput()
	in.Name = "  Pasta  "
	meal, err := ts.meals.Create(context.Background(), user.ID, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if meal.ID == "" {
		t.Error("Create() returned a meal without an ID")
	}
	if meal.Name != "Pasta" {
		t.Errorf("Name = %q, want trimmed %q", meal.Name, "Pasta")
	}
	if meal.ImageURL != model.DefaultImageURL {
		t.Errorf("ImageURL = %q, want default %q", meal.ImageURL, model.DefaultImageURL)
	}

	// The cached user sees the meal without a reload.
	cached, _ := ts.users.Get(context.Background(), user.ID)
	if len(cached.Meals) != 1 || cached.Meals[0].ID != meal.ID {
		t.Errorf("cached Meals = %+v, want the new meal", cached.Meals)
	}
	if ts.repo.loads != 0 {
		t.Errorf("repository loads = %d, want 0", ts.repo.loads)
	}
}

func TestMealCreate_UnknownUser(t *testing.T) {
	ts := newTestServices()

	_, err := ts.meals.Create(context.Background(), "nobody", validInput())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Create() error = %v, want ErrNotFound", err)
	}
}

func TestMealCreate_Validation(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*MealInput)
		wantField string
	}{
		{"name too short", func(in *MealInput) { in.Name = "P" }, "name"},
		{"name blank after trim", func(in *MealInput) { in.Name = "    " }, "name"},
		{"name too long", func(in *MealInput) { in.Name = strings.Repeat("a", MaxMealNameLength+1) }, "name"},
		{"description too long", func(in *MealInput) { in.Description = strings.Repeat("a", MaxDescriptionLength+1) }, "description"},
		{"carbs zero", func(in *MealInput) { in.Carbs = 0 }, "carbs"},
		{"carbs too high", func(in *MealInput) { in.Carbs = 1000.5 }, "carbs"},
		{"carbs three decimals", func(in *MealInput) { in.Carbs = 12.345 }, "carbs"},
		{"insulin below one", func(in *MealInput) { in.Insulin = 0.5 }, "insulin"},
		{"insulin too high", func(in *MealInput) { in.Insulin = 150 }, "insulin"},
		{"insulin five decimals", func(in *MealInput) { in.Insulin = 2.12345 }, "insulin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServices()
			user, _ := ts.users.Create(context.Background())
			in := validInput()
			tt.modify(&in)

			_, err := ts.meals.Create(context.Background(), user.ID, in)
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) || !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Create() error = %v, want a validation error", err)
			}
			if appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.wantField)
			}
		})
	}
}

func TestMealCreate_AcceptsBoundaries(t *testing.T) {
	ts := newTestServices()
	user, _ := ts.users.Create(context.Background())

	in := MealInput{
		Name:        strings.Repeat("ñ", MaxMealNameLength), // 50 characters, 100 bytes
		Description: strings.Repeat("d", MaxDescriptionLength),
		Carbs:       999.99,
		Insulin:     1.2345,
	}
	if _, err := ts.meals.Create(context.Background(), user.ID, in); err != nil {
		t.Errorf("Create() error = %v, want nil", err)
	}
}

func TestMealUpdate_PartialPatch(t *testing.T) {
	ts := newTestServices()
	user, _ := ts.users.Create(context.Background())
	meal, _ := ts.meals.Create(context.Background(), user.ID, validInput())

	got, err := ts.meals.Update(context.Background(), meal.ID, model.MealPatch{Insulin: ptr(7.5)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if got.Insulin != 7.5 {
		t.Errorf("Insulin = %v, want 7.5", got.Insulin)
	}
	// Fields the patch left out stay as they were.
	if got.Name != "Pasta" || got.Carbs != 60 || got.Description != "with tomato" {
		t.Errorf("Update() changed untouched fields: %+v", got)
	}
	if !got.UpdatedAt.After(meal.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", got.UpdatedAt, meal.UpdatedAt)
	}
}

func TestMealUpdate_MovesMealToFrontOfCachedUser(t *testing.T) {
	ts := newTestServices()
	user, _ := ts.users.Create(context.Background())
	first, _ := ts.meals.Create(context.Background(), user.ID, validInput())
	second := validInput()
	second.Name = "Rice"
	ts.meals.Create(context.Background(), user.ID, second)

	if _, err := ts.meals.Update(context.Background(), first.ID, model.MealPatch{Name: ptr("Pasta bake")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	cached, _ := ts.users.Get(context.Background(), user.ID)
	if len(cached.Meals) != 2 {
		t.Fatalf("len(Meals) = %d, want 2", len(cached.Meals))
	}
	if cached.Meals[0].Name != "Pasta bake" {
		t.Errorf("Meals[0].Name = %q, want the edited meal first", cached.Meals[0].Name)
	}
}

func TestMealUpdate_ClearingImageRestoresDefault(t *testing.T) {
	ts := newTestServices()
	user, _ := ts.users.Create(context.Background())
	in := validInput()
	in.ImageURL = "https://img.example.com/pasta.jpg"
	meal, _ := ts.meals.Create(context.Background(), user.ID, in)

	got, err := ts.meals.Update(context.Background(), meal.ID, model.MealPatch{ImageURL: ptr("")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.ImageURL != model.DefaultImageURL {
		t.Errorf("ImageURL = %q, want %q", got.ImageURL, model.DefaultImageURL)
	}
}

func TestMealUpdate_InvalidPatch(t *testing.T) {
	ts := newTestServices()
	user, _ := ts.users.Create(context.Background())
	meal, _ := ts.meals.Create(context.Background(), user.ID, validInput())

	_, err := ts.meals.Update(context.Background(), meal.ID, model.MealPatch{Carbs: ptr(-5.0)})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update() error = %v, want ErrValidation", err)
	}

	stored, _ := ts.repo.GetMeal(context.Background(), meal.ID)
	if stored.Carbs != 60 {
		t.Errorf("stored Carbs = %v, want unchanged 60", stored.Carbs)
	}
}

func TestMealUpdate_NotFound(t *testing.T) {
	ts := newTestServices()

	_, err := ts.meals.Update(context.Background(), "nonexistent", model.MealPatch{Name: ptr("Soup")})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestMealWrites_RepositoryErrorDropsCachedSnapshot(t *testing.T) {
	ts := newTestServices()
	user, _ := ts.users.Create(context.Background())
	meal, err := ts.meals.Create(context.Background(), user.ID, validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	ts.repo.failWith = errDatabaseDown

	if _, err := ts.meals.Update(context.Background(), meal.ID, model.MealPatch{Name: ptr("Soup")}); !errors.Is(err, errDatabaseDown) {
		t.Fatalf("Update() error = %v, want %v", err, errDatabaseDown)
	}
	if ts.store.Len() != 0 {
		t.Errorf("store.Len() after failed Update = %d, want 0", ts.store.Len())
	}

	ts.repo.failWith = nil
	if _, err := ts.users.Get(context.Background(), user.ID); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	ts.repo.failWith = errDatabaseDown

	if _, err := ts.meals.Create(context.Background(), user.ID, validInput()); !errors.Is(err, errDatabaseDown) {
		t.Fatalf("Create() error = %v, want %v", err, errDatabaseDown)
	}
	if ts.store.Len() != 0 {
		t.Errorf("store.Len() after failed Create = %d, want 0", ts.store.Len())
	}
}
