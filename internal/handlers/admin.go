package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/auth"
	"github.com/auxy/roadside-assist/internal/db"
	"github.com/auxy/roadside-assist/internal/models"
	"github.com/auxy/roadside-assist/internal/notify"
	log "github.com/sirupsen/logrus"
)

// AdminHandler serves platform administration: API key management and
// provider approval. All routes are JWT-gated for admin roles.
type AdminHandler struct {
	keys             db.ApiKeyCollection
	keyService       *auth.KeyService
	users            db.UserCollection
	events           notify.Events
	defaultRateLimit int
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(keys db.ApiKeyCollection, keyService *auth.KeyService, users db.UserCollection, events notify.Events, defaultRateLimit int) *AdminHandler {
	return &AdminHandler{
		keys:             keys,
		keyService:       keyService,
		users:            users,
		events:           events,
		defaultRateLimit: defaultRateLimit,
	}
}

// CreateApiKey handles POST /api/admin/keys. The secret is returned
// once at creation and never regenerated.
func (h *AdminHandler) CreateApiKey(w http.ResponseWriter, r *http.Request) {
	var req models.CreateApiKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.RespondError(w, apperrors.Validation("Invalid JSON"))
		return
	}

	if req.Name == "" {
		apperrors.RespondError(w, apperrors.Validation("Name is required"))
		return
	}
	if len(req.Permissions) == 0 {
		apperrors.RespondError(w, apperrors.Validation("At least one permission is required"))
		return
	}
	for _, p := range req.Permissions {
		if !models.IsValidPermission(p) {
			apperrors.RespondError(w, apperrors.Validation("Unknown permission: %s", p))
			return
		}
	}

	rateLimit := req.RateLimit
	if rateLimit <= 0 {
		rateLimit = h.defaultRateLimit
	}

	secret, err := h.keyService.GenerateKey()
	if err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	apiKey := models.ApiKey{
		Key:         secret,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
		Permissions: req.Permissions,
		RateLimit:   rateLimit,
	}

	id, err := h.keys.InsertKey(r.Context(), apiKey)
	if err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	apperrors.RespondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data": map[string]any{
			"id":          id,
			"key":         secret,
			"name":        req.Name,
			"permissions": req.Permissions,
			"rate_limit":  rateLimit,
		},
		"message": "API key created successfully",
	})
}

// ListApiKeys handles GET /api/admin/keys.
func (h *AdminHandler) ListApiKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.FindKeys(r.Context())
	if err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}
	if keys == nil {
		keys = []models.ApiKey{}
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    keys,
	})
}

// ToggleApiKey handles POST /api/admin/keys/{id}/toggle: flips the
// active flag, which is the only revocation mechanism.
func (h *AdminHandler) ToggleApiKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apperrors.RespondError(w, apperrors.Validation("Invalid JSON"))
		return
	}

	if err := h.keys.SetActive(r.Context(), r.PathValue("id"), body.IsActive); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apperrors.RespondError(w, apperrors.NotFound("API key not found"))
			return
		}
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "API key updated successfully",
	})
}

// DeleteApiKey handles DELETE /api/admin/keys/{id}.
func (h *AdminHandler) DeleteApiKey(w http.ResponseWriter, r *http.Request) {
	if err := h.keys.DeleteKey(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apperrors.RespondError(w, apperrors.NotFound("API key not found"))
			return
		}
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "API key deleted successfully",
	})
}

// ListProviders handles GET /api/admin/providers?pending=true.
func (h *AdminHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.users.FindProviders(r.Context(), false)
	if err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	if r.URL.Query().Get("pending") == "true" {
		pending := []models.User{}
		for _, p := range providers {
			if !p.IsApproved {
				pending = append(pending, p)
			}
		}
		providers = pending
	}
	if providers == nil {
		providers = []models.User{}
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    providers,
	})
}

// ApproveProvider handles POST /api/admin/providers/{id}/approve.
// Approval is the gate that lets a provider appear in discovery.
func (h *AdminHandler) ApproveProvider(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.users.SetApproved(r.Context(), id, true); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apperrors.RespondError(w, apperrors.NotFound("Provider not found"))
			return
		}
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	if err := h.events.ProviderApproved(r.Context(), id); err != nil {
		log.WithField("provider_id", id).WithError(err).Warn("approval notification failed")
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Provider approved successfully",
	})
}
