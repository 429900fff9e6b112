package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/db"
	"github.com/auxy/roadside-assist/internal/middleware"
	"github.com/auxy/roadside-assist/internal/models"
)

// NotificationHandler serves the notification center for logged-in
// users.
type NotificationHandler struct {
	notifications db.NotificationCollection
}

// NewNotificationHandler creates the notification handler.
func NewNotificationHandler(notifications db.NotificationCollection) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /api/notifications: the session user's
// notifications plus their unread count.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		apperrors.RespondError(w, apperrors.Unauthorized("User context not found"))
		return
	}

	limit := int64(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifications, err := h.notifications.FindByUser(r.Context(), claims.UserID, limit)
	if err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	unread, err := h.notifications.CountUnread(r.Context(), claims.UserID)
	if err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    notifications,
		"unread":  unread,
	})
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apperrors.RespondError(w, apperrors.NotFound("Notification not found"))
			return
		}
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		apperrors.RespondError(w, apperrors.Unauthorized("User context not found"))
		return
	}

	if err := h.notifications.MarkAllRead(r.Context(), claims.UserID); err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}
