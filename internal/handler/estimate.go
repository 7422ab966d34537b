package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/insulog/internal/apperror"
	"github.com/sakif/insulog/internal/insulin"
	"github.com/sakif/insulog/internal/service"
)

// EstimateHandler serves the stateless dose calculator.
type EstimateHandler struct {
	estimator DoseEstimator
	logger    *slog.Logger
}

// NewEstimateHandler creates a new EstimateHandler.
func NewEstimateHandler(estimator DoseEstimator, logger *slog.Logger) *EstimateHandler {
	return &EstimateHandler{estimator: estimator, logger: logger}
}

type estimateRequest struct {
	Carbs       *float64 `json:"carbs"`
	Sensitivity *float64 `json:"sensitivity"`
	Insulin     *float64 `json:"insulin"`
	Exercise    string   `json:"exercise"`
}

// HandleEstimate computes a dose without touching any account.
//
// HTTP: POST /api/estimate
// REQUEST BODY: {"carbs": 60, "sensitivity": 10, "insulin": 7, "exercise": "Last12Hours"}
// insulin and exercise are optional.
func (h *EstimateHandler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Carbs == nil {
		writeError(w, apperror.ValidationFailed("carbs", "carbs is required"))
		return
	}
	if req.Sensitivity == nil {
		writeError(w, apperror.ValidationFailed("sensitivity", "sensitivity is required"))
		return
	}
	recency, err := insulin.ParseExerciseRecency(req.Exercise)
	if err != nil {
		writeError(w, apperror.Invalid("exercise", err))
		return
	}

	est, err := h.estimator.Estimate(service.EstimateRequest{
		Carbs:       *req.Carbs,
		Sensitivity: *req.Sensitivity,
		Insulin:     req.Insulin,
		Exercise:    recency,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}
