package middleware

import (
	"context"
	"net/http"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/auth"
	"github.com/auxy/roadside-assist/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	UserContextKey   contextKey = "user"
	ApiKeyContextKey contextKey = "api_key"
)

// AuthMiddleware guards dashboard endpoints with JWT sessions.
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate validates JWT tokens and adds user context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			apperrors.RespondError(w, apperrors.Unauthorized("Authorization header required"))
			return
		}

		claims, err := m.authService.ValidateToken(authHeader)
		if err != nil {
			apperrors.RespondError(w, apperrors.Unauthorized("Invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole checks that the session user holds one of the given
// roles. Super admins pass every check.
func (m *AuthMiddleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(UserContextKey).(*models.Claims)
			if !ok {
				apperrors.RespondError(w, apperrors.Unauthorized("User context not found"))
				return
			}

			if claims.Role == models.RoleSuperAdmin {
				next.ServeHTTP(w, r)
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			apperrors.RespondError(w, apperrors.Forbidden("Insufficient permissions"))
		})
	}
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok
}

// ApiKeyMiddleware fronts the public v1 API: it resolves the bearer
// credential, checks the required scope and records key usage.
type ApiKeyMiddleware struct {
	keys *auth.KeyService
}

// NewApiKeyMiddleware creates the API key gateway middleware.
func NewApiKeyMiddleware(keys *auth.KeyService) *ApiKeyMiddleware {
	return &ApiKeyMiddleware{keys: keys}
}

// Require authenticates the caller's API key and checks it for the
// permission scope. Usage is recorded exactly once per request here,
// however many downstream operations the handler performs.
func (m *ApiKeyMiddleware) Require(permission models.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, err := m.keys.Authenticate(r.Context(), r.Header.Get("Authorization"), r.Header.Get("x-api-key"))
			if err != nil {
				apperrors.RespondError(w, err)
				return
			}

			if err := m.keys.Authorize(apiKey, permission); err != nil {
				apperrors.RespondError(w, err)
				return
			}

			if err := m.keys.RecordUsage(r.Context(), apiKey); err != nil {
				apperrors.RespondError(w, apperrors.Internal(err))
				return
			}

			ctx := context.WithValue(r.Context(), ApiKeyContextKey, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetApiKeyFromContext extracts the authenticated API key from the
// request context.
func GetApiKeyFromContext(ctx context.Context) (*models.ApiKey, bool) {
	apiKey, ok := ctx.Value(ApiKeyContextKey).(*models.ApiKey)
	return apiKey, ok
}
