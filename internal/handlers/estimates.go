package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/models"
	"github.com/auxy/roadside-assist/internal/service"
)

// EstimateHandler serves price estimation.
type EstimateHandler struct {
	estimator *service.Estimator
}

// NewEstimateHandler creates the estimate handler.
func NewEstimateHandler(estimator *service.Estimator) *EstimateHandler {
	return &EstimateHandler{estimator: estimator}
}

// Create handles POST /api/v1/estimates.
func (h *EstimateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ServiceType models.ServiceType      `json:"serviceType"`
		Location    *models.RequestLocation `json:"location"`
		VehicleType string                  `json:"vehicleType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apperrors.RespondError(w, apperrors.Validation("Invalid JSON"))
		return
	}

	var missing []string
	if body.ServiceType == "" {
		missing = append(missing, "serviceType")
	}
	if body.Location == nil {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		apperrors.RespondError(w, apperrors.Validation("Missing required fields: %s", strings.Join(missing, ", ")))
		return
	}

	result, err := h.estimator.Estimate(r.Context(), body.ServiceType, *body.Location, body.VehicleType)
	if err != nil {
		apperrors.RespondError(w, err)
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    result,
	})
}
