package handlers

import (
	"net/http"
	"strconv"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/models"
	"github.com/auxy/roadside-assist/internal/service"
)

const defaultSearchRadiusKm = 10

// ProviderHandler serves provider discovery.
type ProviderHandler struct {
	locator *service.Locator
}

// NewProviderHandler creates the provider discovery handler.
func NewProviderHandler(locator *service.Locator) *ProviderHandler {
	return &ProviderHandler{locator: locator}
}

// Nearby handles GET /api/v1/providers.
func (h *ProviderHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, errLat := strconv.ParseFloat(query.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(query.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		apperrors.RespondError(w, apperrors.Validation("lat and lng parameters are required"))
		return
	}

	radius := float64(defaultSearchRadiusKm)
	if raw := query.Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			apperrors.RespondError(w, apperrors.Validation("radius must be a non-negative number"))
			return
		}
		radius = parsed
	}

	serviceType := models.ServiceType(query.Get("serviceType"))
	if serviceType != "" && !models.IsValidServiceType(serviceType) {
		apperrors.RespondError(w, apperrors.Validation("Invalid service type"))
		return
	}

	providers, err := h.locator.FindNearby(r.Context(), lat, lng, radius, serviceType)
	if err != nil {
		apperrors.RespondError(w, err)
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    providers,
		"meta": map[string]any{
			"searchLocation": map[string]float64{"lat": lat, "lng": lng},
			"radius":         radius,
			"totalFound":     len(providers),
		},
	})
}
