package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Permission is one allowed API capability. Internally permissions are a
// closed set; raw strings only cross the wire at the API boundary so a
// typo in a stored key cannot silently grant access.
type Permission string

const (
	PermWildcard       Permission = "*"
	PermRequestsCreate Permission = "requests:create"
	PermRequestsRead   Permission = "requests:read"
	PermRequestsUpdate Permission = "requests:update"
	PermRequestsCancel Permission = "requests:cancel"
	PermProvidersRead  Permission = "providers:read"
	PermEstimatesCreate Permission = "estimates:create"
)

// Permissions lists every grantable scope, wildcard excluded.
var Permissions = []Permission{
	PermRequestsCreate, PermRequestsRead, PermRequestsUpdate,
	PermRequestsCancel, PermProvidersRead, PermEstimatesCreate,
}

// IsValidPermission checks if a permission scope is part of the closed set.
func IsValidPermission(p Permission) bool {
	if p == PermWildcard {
		return true
	}
	for _, known := range Permissions {
		if p == known {
			return true
		}
	}
	return false
}

// ApiKey is a bearer credential for the public API. The secret is
// generated once and never regenerated; revocation is the IsActive
// toggle.
type ApiKey struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Key         string             `bson:"key" json:"key"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	Permissions []Permission       `bson:"permissions" json:"permissions"`
	RateLimit   int                `bson:"rate_limit" json:"rate_limit"`
	UsageCount  int64              `bson:"usage_count" json:"usage_count"`
	LastUsed    *time.Time         `bson:"last_used,omitempty" json:"last_used,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// HasPermission reports whether the key grants the scope, either
// directly or through the wildcard.
func (k *ApiKey) HasPermission(p Permission) bool {
	for _, granted := range k.Permissions {
		if granted == p || granted == PermWildcard {
			return true
		}
	}
	return false
}

// CreateApiKeyRequest is the admin payload for minting a new key.
type CreateApiKeyRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Permissions []Permission `json:"permissions"`
	RateLimit   int          `json:"rate_limit,omitempty"`
}
