package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/insulog/internal/model"
	"github.com/sakif/insulog/internal/service"
)

// MealHandler serves meal endpoints.
type MealHandler struct {
	meals  MealService
	logger *slog.Logger
}

// NewMealHandler creates a new MealHandler.
func NewMealHandler(meals MealService, logger *slog.Logger) *MealHandler {
	return &MealHandler{meals: meals, logger: logger}
}

type createMealRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Carbs       float64 `json:"carbs"`
	Insulin     float64 `json:"insulin"`
	ImageURL    string  `json:"imageUrl"`
}

// HandleCreate records a meal for a user.
//
// HTTP: POST /api/user/{id}/meal
// REQUEST BODY: {"name": "Pasta", "carbs": 60, "insulin": 6, "description": "", "imageUrl": ""}
func (h *MealHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createMealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid meal JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	meal, err := h.meals.Create(r.Context(), r.PathValue("id"), service.MealInput{
		Name:        req.Name,
		Description: req.Description,
		Carbs:       req.Carbs,
		Insulin:     req.Insulin,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meal)
}

// HandleUpdate edits a meal. Only the fields present in the body change.
//
// HTTP: PUT /api/meal/{id}
// REQUEST BODY: {"insulin": 7}
func (h *MealHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.MealPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.logger.Warn("invalid meal patch JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	meal, err := h.meals.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meal)
}
