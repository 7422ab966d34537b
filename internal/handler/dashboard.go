package handler

import (
	"log/slog"
	"net/http"
)

// DashboardHandler serves the meal card list.
type DashboardHandler struct {
	dashboard DashboardBuilder
	logger    *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard DashboardBuilder, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// HandleGet returns the user's meal cards.
//
// HTTP: GET /api/user/{id}/dashboard?q=pasta&exercise=Last6Hours
//
// Both query parameters are optional. q filters meals by a fuzzy match on
// their name; exercise adds an exercise-adjusted estimate to every card.
func (h *DashboardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, err := h.dashboard.Build(r.Context(), r.PathValue("id"), q.Get("q"), q.Get("exercise"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
