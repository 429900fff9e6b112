package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/auth"
	"github.com/auxy/roadside-assist/internal/db"
	"github.com/auxy/roadside-assist/internal/middleware"
	"github.com/auxy/roadside-assist/internal/models"
	"github.com/auxy/roadside-assist/internal/notify"
	log "github.com/sirupsen/logrus"
)

// AuthHandler handles account registration and login for the
// dashboards. The public v1 API is API-key gated and does not pass
// through here.
type AuthHandler struct {
	authService *auth.Service
	users       db.UserCollection
	events      notify.Events
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, users db.UserCollection, events notify.Events) *AuthHandler {
	return &AuthHandler{authService: authService, users: users, events: events}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		apperrors.RespondError(w, apperrors.Validation("Invalid JSON"))
		return
	}

	if loginReq.Email == "" || loginReq.Password == "" {
		apperrors.RespondError(w, apperrors.Validation("Email and password are required"))
		return
	}

	user, err := h.users.FindUserByEmail(r.Context(), loginReq.Email)
	if err != nil {
		apperrors.RespondError(w, apperrors.Unauthorized("Invalid credentials"))
		return
	}

	if !user.IsActive {
		apperrors.RespondError(w, apperrors.Unauthorized("Account is deactivated"))
		return
	}

	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		apperrors.RespondError(w, apperrors.Unauthorized("Invalid credentials"))
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	if err := h.users.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		log.WithError(err).Warn("failed to update last login")
	}

	apperrors.RespondJSON(w, http.StatusOK, models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// Register handles account creation. Provider accounts start
// unapproved and every admin is told there is a registration to review.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		apperrors.RespondError(w, apperrors.Validation("Invalid JSON"))
		return
	}

	if err := h.authService.ValidateEmail(registerReq.Email); err != nil {
		apperrors.RespondError(w, apperrors.Validation("%s", err.Error()))
		return
	}
	if err := h.authService.ValidatePassword(registerReq.Password); err != nil {
		apperrors.RespondError(w, apperrors.Validation("%s", err.Error()))
		return
	}
	if registerReq.Name == "" {
		apperrors.RespondError(w, apperrors.Validation("Name is required"))
		return
	}

	role := registerReq.Role
	if role == "" {
		role = models.RoleClient
	}
	if role != models.RoleClient && role != models.RoleProvider {
		apperrors.RespondError(w, apperrors.Validation("Invalid role"))
		return
	}

	if _, err := h.users.FindUserByEmail(r.Context(), registerReq.Email); err == nil {
		apperrors.RespondError(w, apperrors.Conflict("Email already exists"))
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	if role == models.RoleProvider && (registerReq.CompanyName == "" || registerReq.BusinessLicense == "") {
		apperrors.RespondError(w, apperrors.Validation("Providers must supply company_name and business_license"))
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	user := models.User{
		Email:           registerReq.Email,
		PasswordHash:    passwordHash,
		Role:            role,
		Name:            registerReq.Name,
		Phone:           registerReq.Phone,
		CompanyName:     registerReq.CompanyName,
		BusinessLicense: registerReq.BusinessLicense,
		ServiceZones:    registerReq.ServiceZones,
		IsApproved:      false,
	}

	id, err := h.users.InsertUser(r.Context(), user)
	if err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	created, err := h.users.FindUserByID(r.Context(), id)
	if err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	if role == models.RoleProvider {
		h.notifyAdmins(r, id, registerReq.Name)
	}

	token, err := h.authService.GenerateToken(created)
	if err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		apperrors.RespondError(w, apperrors.Internal(err))
		return
	}

	apperrors.RespondJSON(w, http.StatusCreated, models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         *created,
	})
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		apperrors.RespondError(w, apperrors.Unauthorized("User context not found"))
		return
	}

	user, err := h.users.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		apperrors.RespondError(w, apperrors.NotFound("User not found"))
		return
	}

	apperrors.RespondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) notifyAdmins(r *http.Request, providerID, providerName string) {
	admins, err := h.users.FindUsersByRole(r.Context(), models.RoleAdmin)
	if err != nil {
		log.WithError(err).Warn("failed to list admins for approval notification")
		return
	}
	for _, admin := range admins {
		if err := h.events.ProviderPendingApproval(r.Context(), admin.ID.Hex(), providerID, providerName); err != nil {
			log.WithError(err).Warn("provider approval notification failed")
		}
	}
}
