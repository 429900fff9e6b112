package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/models"
	"github.com/auxy/roadside-assist/internal/service"
)

// RequestHandler serves the public /api/v1/requests endpoints.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler creates the request handler.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// Create handles POST /api/v1/requests.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperrors.RespondError(w, apperrors.Validation("Invalid JSON"))
		return
	}

	result, err := h.requests.Create(r.Context(), input)
	if err != nil {
		apperrors.RespondError(w, err)
		return
	}

	apperrors.RespondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    result,
		"message": "Service request created successfully",
	})
}

// List handles GET /api/v1/requests.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		apperrors.RespondError(w, apperrors.Validation("clientId parameter is required"))
		return
	}

	status := models.RequestStatus(r.URL.Query().Get("status"))

	limit := int64(10)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			apperrors.RespondError(w, apperrors.Validation("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	requests, err := h.requests.List(r.Context(), clientID, status, limit)
	if err != nil {
		apperrors.RespondError(w, err)
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    requests,
		"pagination": map[string]any{
			"total":  len(requests),
			"limit":  limit,
			"offset": 0,
		},
	})
}

// GetByID handles GET /api/v1/requests/{id}.
func (h *RequestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	req, err := h.requests.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		apperrors.RespondError(w, err)
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    req,
	})
}

// Patch handles PATCH /api/v1/requests/{id}. Only contact metadata may
// change; unknown fields are ignored.
func (h *RequestHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var input models.UpdateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		apperrors.RespondError(w, apperrors.Validation("Invalid JSON"))
		return
	}

	if _, err := h.requests.Update(r.Context(), r.PathValue("id"), input); err != nil {
		apperrors.RespondError(w, err)
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Service request updated successfully",
	})
}

// Cancel handles POST /api/v1/requests/{id}/cancel.
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	// A missing or empty body means "no reason given".
	_ = json.NewDecoder(r.Body).Decode(&body)

	if _, err := h.requests.Cancel(r.Context(), r.PathValue("id"), body.Reason); err != nil {
		apperrors.RespondError(w, err)
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Service request cancelled successfully",
	})
}
