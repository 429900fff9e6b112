package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/middleware"
	"github.com/auxy/roadside-assist/internal/models"
	"github.com/auxy/roadside-assist/internal/service"
)

// ProviderActionsHandler serves the provider side of the lifecycle:
// claiming, starting and completing requests. JWT-gated for providers;
// admins may act on behalf of a provider by passing providerId.
type ProviderActionsHandler struct {
	requests *service.RequestService
}

// NewProviderActionsHandler creates the provider actions handler.
func NewProviderActionsHandler(requests *service.RequestService) *ProviderActionsHandler {
	return &ProviderActionsHandler{requests: requests}
}

// Assign handles POST /api/provider/requests/{id}/assign. A provider
// claims the pending request for themselves; when two providers race,
// the conditional update lets exactly one win.
func (h *ProviderActionsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		apperrors.RespondError(w, apperrors.Unauthorized("User context not found"))
		return
	}

	providerID := claims.UserID
	if claims.Role == models.RoleAdmin || claims.Role == models.RoleSuperAdmin {
		var body struct {
			ProviderID string `json:"providerId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.ProviderID == "" {
			apperrors.RespondError(w, apperrors.Validation("providerId is required"))
			return
		}
		providerID = body.ProviderID
	}

	updated, err := h.requests.Assign(r.Context(), r.PathValue("id"), providerID)
	if err != nil {
		apperrors.RespondError(w, err)
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    updated,
	})
}

// Start handles POST /api/provider/requests/{id}/start.
func (h *ProviderActionsHandler) Start(w http.ResponseWriter, r *http.Request) {
	req, err := h.ownRequest(r)
	if err != nil {
		apperrors.RespondError(w, err)
		return
	}

	updated, err := h.requests.Start(r.Context(), req)
	if err != nil {
		apperrors.RespondError(w, err)
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    updated,
	})
}

// Complete handles POST /api/provider/requests/{id}/complete.
func (h *ProviderActionsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	req, err := h.ownRequest(r)
	if err != nil {
		apperrors.RespondError(w, err)
		return
	}

	var input models.CompleteRequestInput
	_ = json.NewDecoder(r.Body).Decode(&input)

	updated, err := h.requests.Complete(r.Context(), req, input)
	if err != nil {
		apperrors.RespondError(w, err)
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    updated,
	})
}

// ownRequest checks that a provider only acts on requests assigned to
// them. Admin roles skip the ownership check.
func (h *ProviderActionsHandler) ownRequest(r *http.Request) (string, error) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return "", apperrors.Unauthorized("User context not found")
	}

	id := r.PathValue("id")
	if claims.Role == models.RoleAdmin || claims.Role == models.RoleSuperAdmin {
		return id, nil
	}

	req, err := h.requests.Get(r.Context(), id)
	if err != nil {
		return "", err
	}
	if req.ProviderID != claims.UserID {
		return "", apperrors.Forbidden("Request is assigned to another provider")
	}
	return id, nil
}
