package handlers

import (
	"net/http"

	"github.com/auxy/roadside-assist/internal/apperrors"
)

// Docs handles GET /api/v1/docs: a self-describing schema of the public
// API. No API key required.
func Docs(w http.ResponseWriter, r *http.Request) {
	documentation := map[string]any{
		"title":       "Auxy API v1",
		"version":     "1.0.0",
		"description": "Public API for requesting roadside assistance services",
		"authentication": map[string]any{
			"type": "API Key",
			"methods": []string{
				"Header: Authorization: Bearer YOUR_API_KEY",
				"Header: x-api-key: YOUR_API_KEY",
			},
		},
		"endpoints": map[string]any{
			"POST /requests": map[string]any{
				"description": "Create a new assistance request",
				"permissions": []string{"requests:create"},
				"parameters": map[string]any{
					"clientId":    map[string]any{"type": "string", "required": true},
					"type":        map[string]any{"type": "string", "required": true, "enum": []string{"towing", "battery", "tire", "fuel", "lockout", "other"}},
					"description": map[string]any{"type": "string", "required": true},
					"location": map[string]any{
						"type":     "object",
						"required": true,
						"properties": map[string]any{
							"lat":     map[string]any{"type": "number"},
							"lng":     map[string]any{"type": "number"},
							"address": map[string]any{"type": "string"},
						},
					},
					"contactPhone": map[string]any{"type": "string", "required": false},
					"contactName":  map[string]any{"type": "string", "required": false},
					"vehicleInfo":  map[string]any{"type": "string", "required": false},
					"priority":     map[string]any{"type": "string", "enum": []string{"low", "normal", "high"}, "default": "normal"},
				},
			},
			"GET /requests": map[string]any{
				"description": "List a client's requests",
				"permissions": []string{"requests:read"},
				"parameters": map[string]any{
					"clientId": map[string]any{"type": "string", "required": true},
					"status":   map[string]any{"type": "string", "required": false},
					"limit":    map[string]any{"type": "number", "default": 10},
				},
			},
			"GET /requests/{id}": map[string]any{
				"description": "Fetch one request",
				"permissions": []string{"requests:read"},
			},
			"PATCH /requests/{id}": map[string]any{
				"description": "Update a request's contact details",
				"permissions": []string{"requests:update"},
				"parameters": map[string]any{
					"description":  map[string]any{"type": "string"},
					"contactPhone": map[string]any{"type": "string"},
					"contactName":  map[string]any{"type": "string"},
					"vehicleInfo":  map[string]any{"type": "string"},
				},
			},
			"POST /requests/{id}/cancel": map[string]any{
				"description": "Cancel a request",
				"permissions": []string{"requests:cancel"},
				"parameters": map[string]any{
					"reason": map[string]any{"type": "string", "required": false},
				},
			},
			"GET /providers": map[string]any{
				"description": "Find available providers around a point",
				"permissions": []string{"providers:read"},
				"parameters": map[string]any{
					"lat":         map[string]any{"type": "number", "required": true},
					"lng":         map[string]any{"type": "number", "required": true},
					"radius":      map[string]any{"type": "number", "default": 10, "description": "Radius in kilometers"},
					"serviceType": map[string]any{"type": "string", "required": false},
				},
			},
			"POST /estimates": map[string]any{
				"description": "Get a price estimate for a service",
				"permissions": []string{"estimates:create"},
				"parameters": map[string]any{
					"serviceType": map[string]any{"type": "string", "required": true},
					"location":    map[string]any{"type": "object", "required": true},
					"vehicleType": map[string]any{"type": "string", "required": false},
				},
			},
		},
		"rateLimits": map[string]any{
			"default": "100 requests per hour per API key",
			"burst":   "10 requests per minute",
		},
		"errors": map[string]string{
			"400": "Bad Request - Invalid parameters",
			"401": "Unauthorized - Invalid or missing API key",
			"403": "Forbidden - Insufficient permissions",
			"404": "Not Found - Resource not found",
			"429": "Too Many Requests - Rate limit exceeded",
			"500": "Internal Server Error",
		},
	}

	apperrors.RespondJSON(w, http.StatusOK, documentation)
}
