package handlers

import (
	"net/http"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/middleware"
	"github.com/auxy/roadside-assist/internal/models"
)

// Router bundles the handlers and middleware needed to build the HTTP
// surface.
type Router struct {
	Auth            *AuthHandler
	Requests        *RequestHandler
	Providers       *ProviderHandler
	Estimates       *EstimateHandler
	Admin           *AdminHandler
	ProviderActions *ProviderActionsHandler
	Notifications   *NotificationHandler

	ApiKeys   *middleware.ApiKeyMiddleware
	Sessions  *middleware.AuthMiddleware
	RateLimit *middleware.RateLimitMiddleware

	BurstLimit int
}

// Build wires every route. The public /api/v1 surface is API-key gated
// per scope; dashboard routes use JWT sessions.
func (rt *Router) Build() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		apperrors.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public API, versioned. Docs carry no key requirement.
	mux.HandleFunc("GET /api/v1/docs", Docs)

	key := func(p models.Permission, h http.HandlerFunc) http.Handler {
		return rt.ApiKeys.Require(p)(h)
	}
	mux.Handle("POST /api/v1/requests", key(models.PermRequestsCreate, rt.Requests.Create))
	mux.Handle("GET /api/v1/requests", key(models.PermRequestsRead, rt.Requests.List))
	mux.Handle("GET /api/v1/requests/{id}", key(models.PermRequestsRead, rt.Requests.GetByID))
	mux.Handle("PATCH /api/v1/requests/{id}", key(models.PermRequestsUpdate, rt.Requests.Patch))
	mux.Handle("POST /api/v1/requests/{id}/cancel", key(models.PermRequestsCancel, rt.Requests.Cancel))
	mux.Handle("GET /api/v1/providers", key(models.PermProvidersRead, rt.Providers.Nearby))
	mux.Handle("POST /api/v1/estimates", key(models.PermEstimatesCreate, rt.Estimates.Create))

	// Dashboard auth.
	mux.HandleFunc("POST /api/auth/register", rt.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", rt.Auth.Login)

	session := func(h http.HandlerFunc, roles ...models.Role) http.Handler {
		var wrapped http.Handler = h
		if len(roles) > 0 {
			wrapped = rt.Sessions.RequireRole(roles...)(wrapped)
		}
		return rt.Sessions.Authenticate(wrapped)
	}
	mux.Handle("GET /api/auth/profile", session(rt.Auth.GetProfile))

	mux.Handle("GET /api/notifications", session(rt.Notifications.List))
	mux.Handle("POST /api/notifications/{id}/read", session(rt.Notifications.MarkRead))
	mux.Handle("POST /api/notifications/read-all", session(rt.Notifications.MarkAllRead))

	mux.Handle("POST /api/provider/requests/{id}/assign",
		session(rt.ProviderActions.Assign, models.RoleProvider, models.RoleAdmin))
	mux.Handle("POST /api/provider/requests/{id}/start",
		session(rt.ProviderActions.Start, models.RoleProvider, models.RoleAdmin))
	mux.Handle("POST /api/provider/requests/{id}/complete",
		session(rt.ProviderActions.Complete, models.RoleProvider, models.RoleAdmin))

	mux.Handle("POST /api/admin/keys", session(rt.Admin.CreateApiKey, models.RoleAdmin))
	mux.Handle("GET /api/admin/keys", session(rt.Admin.ListApiKeys, models.RoleAdmin))
	mux.Handle("POST /api/admin/keys/{id}/toggle", session(rt.Admin.ToggleApiKey, models.RoleAdmin))
	mux.Handle("DELETE /api/admin/keys/{id}", session(rt.Admin.DeleteApiKey, models.RoleAdmin))
	mux.Handle("GET /api/admin/providers", session(rt.Admin.ListProviders, models.RoleAdmin))
	mux.Handle("POST /api/admin/providers/{id}/approve", session(rt.Admin.ApproveProvider, models.RoleAdmin))

	burst := rt.RateLimit.RateLimit(rt.BurstLimit, 60)
	return middleware.RequestLogger(burst(mux))
}
