package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/insulog/internal/apperror"
	"github.com/sakif/insulog/internal/insulin"
)

// UserHandler serves account and sensitivity endpoints.
type UserHandler struct {
	users  UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleCreate registers a new anonymous account.
//
// HTTP: POST /api/user
// No body. The response carries the new account; its _id is what the client
// keeps to come back later.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Create(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleGet returns an account with its meals and history.
//
// HTTP: GET /api/user/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// sensitivityRequest accepts two shapes:
//
//	{"value": 9.5}
//	{"historialInsulinSensitivity": [...], "insulinSensitivity": 9.5}
//
// The first lets the server reconcile today's entry. The second is what older
// clients send after reconciling the history themselves. A body with only
// insulinSensitivity is read as the first shape.
type sensitivityRequest struct {
	Value              *float64       `json:"value"`
	History            []historyEntry `json:"historialInsulinSensitivity"`
	InsulinSensitivity *float64       `json:"insulinSensitivity"`
}

// historyEntry uses pointers so a missing date or value is told apart from a
// zero one.
type historyEntry struct {
	Date  *time.Time `json:"date"`
	Value *float64   `json:"value"`
}

func toEntries(in []historyEntry) ([]insulin.Entry, error) {
	out := make([]insulin.Entry, len(in))
	for i, e := range in {
		if e.Date == nil || e.Value == nil {
			return nil, apperror.Invalid("historialInsulinSensitivity",
				fmt.Errorf("entry %d: %w", i, insulin.ErrMalformedEntry))
		}
		out[i] = insulin.Entry{Date: *e.Date, Value: *e.Value}
	}
	return out, nil
}

// HandleUpdateSensitivity records a new sensitivity value.
//
// HTTP: POST /api/user/{id}/insulinSensitivity
func (h *UserHandler) HandleUpdateSensitivity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req sensitivityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid sensitivity request", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	switch {
	case req.Value != nil && req.History != nil:
		writeError(w, apperror.ValidationFailed("value",
			"send either value or historialInsulinSensitivity, not both"))

	case req.History != nil:
		if req.InsulinSensitivity == nil {
			writeError(w, apperror.ValidationFailed("insulinSensitivity",
				"insulinSensitivity is required with historialInsulinSensitivity"))
			return
		}
		history, err := toEntries(req.History)
		if err != nil {
			writeError(w, err)
			return
		}
		user, err := h.users.ReplaceHistory(r.Context(), id, history, *req.InsulinSensitivity)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)

	default:
		value := req.Value
		if value == nil {
			value = req.InsulinSensitivity
		}
		if value == nil {
			writeError(w, apperror.ValidationFailed("value", "value is required"))
			return
		}
		user, err := h.users.UpdateSensitivity(r.Context(), id, *value)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
