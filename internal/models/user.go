package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleClient     Role = "client"
	RoleProvider   Role = "provider"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// User represents a platform account. Provider accounts carry the extra
// company fields and must be approved by an admin before they can be
// matched to requests.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	Name         string             `bson:"name" json:"name"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	IsVerified   bool               `bson:"is_verified" json:"is_verified"`
	IsActive     bool               `bson:"is_active" json:"is_active"`

	// Provider fields.
	CompanyName     string        `bson:"company_name,omitempty" json:"company_name,omitempty"`
	BusinessLicense string        `bson:"business_license,omitempty" json:"business_license,omitempty"`
	ServiceZones    []string      `bson:"service_zones,omitempty" json:"service_zones,omitempty"`
	ServiceTypes    []ServiceType `bson:"service_types,omitempty" json:"service_types,omitempty"`
	IsApproved      bool          `bson:"is_approved" json:"is_approved"`
	IsAvailable     *bool         `bson:"is_available,omitempty" json:"is_available,omitempty"`
	Rating          float64       `bson:"rating" json:"rating"`
	TotalServices   int           `bson:"total_services" json:"total_services"`
	Location        *Location     `bson:"location,omitempty" json:"location,omitempty"`

	LastLogin *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// Available reports whether the provider accepts work. Missing flag
// counts as available, matching the dashboard behavior.
func (u *User) Available() bool {
	return u.IsAvailable == nil || *u.IsAvailable
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	Role            Role     `json:"role"`
	CompanyName     string   `json:"company_name,omitempty"`
	BusinessLicense string   `json:"business_license,omitempty"`
	ServiceZones    []string `json:"service_zones,omitempty"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Exp    int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleClient, RoleProvider, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// ProviderSummary is what provider discovery returns to callers: enough
// to pick a provider without exposing the full account document.
type ProviderSummary struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	CompanyName      string        `json:"companyName"`
	Rating           float64       `json:"rating"`
	TotalServices    int           `json:"totalServices"`
	DistanceKm       float64       `json:"distance"`
	ServiceTypes     []ServiceType `json:"serviceTypes"`
	EstimatedArrival int           `json:"estimatedArrival"`
	IsAvailable      bool          `json:"isAvailable"`
}
