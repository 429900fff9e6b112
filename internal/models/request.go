package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServiceType identifies the kind of roadside assistance requested.
type ServiceType string

const (
	ServiceTowing  ServiceType = "towing"
	ServiceBattery ServiceType = "battery"
	ServiceTire    ServiceType = "tire"
	ServiceFuel    ServiceType = "fuel"
	ServiceLockout ServiceType = "lockout"
	ServiceOther   ServiceType = "other"
)

// ServiceTypes lists every valid service type, in the order the public
// API documents them.
var ServiceTypes = []ServiceType{
	ServiceTowing, ServiceBattery, ServiceTire, ServiceFuel, ServiceLockout, ServiceOther,
}

// IsValidServiceType checks if a service type is valid.
func IsValidServiceType(t ServiceType) bool {
	switch t {
	case ServiceTowing, ServiceBattery, ServiceTire, ServiceFuel, ServiceLockout, ServiceOther:
		return true
	default:
		return false
	}
}

// RequestStatus is the lifecycle state of a service request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusAssigned   RequestStatus = "assigned"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
)

// IsTerminal reports whether no further transition may leave the status.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Priority of a service request. Informational only; it does not affect
// matching order.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// IsValidPriority checks if a priority value is valid.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	default:
		return false
	}
}

// ServiceRequest is a client's ask for roadside assistance, tracked
// through the pending → assigned → in_progress → completed lifecycle,
// with cancellation possible from any non-terminal state.
type ServiceRequest struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID           string             `bson:"client_id" json:"clientId"`
	ProviderID         string             `bson:"provider_id,omitempty" json:"providerId,omitempty"`
	DriverID           string             `bson:"driver_id,omitempty" json:"driverId,omitempty"`
	VehicleID          string             `bson:"vehicle_id,omitempty" json:"vehicleId,omitempty"`
	Type               ServiceType        `bson:"type" json:"type"`
	Description        string             `bson:"description" json:"description"`
	Location           RequestLocation    `bson:"location" json:"location"`
	Status             RequestStatus      `bson:"status" json:"status"`
	Priority           Priority           `bson:"priority" json:"priority"`
	EstimatedPrice     *float64           `bson:"estimated_price,omitempty" json:"estimatedPrice,omitempty"`
	FinalPrice         *float64           `bson:"final_price,omitempty" json:"finalPrice,omitempty"`
	ContactPhone       string             `bson:"contact_phone,omitempty" json:"contactPhone,omitempty"`
	ContactName        string             `bson:"contact_name,omitempty" json:"contactName,omitempty"`
	VehicleInfo        string             `bson:"vehicle_info,omitempty" json:"vehicleInfo,omitempty"`
	CancellationReason string             `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	Rating             *int               `bson:"rating,omitempty" json:"rating,omitempty"`
	Feedback           string             `bson:"feedback,omitempty" json:"feedback,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
	AssignedAt         *time.Time         `bson:"assigned_at,omitempty" json:"assignedAt,omitempty"`
	CompletedAt        *time.Time         `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	CancelledAt        *time.Time         `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
}

// CreateRequestInput is the payload for creating a service request.
type CreateRequestInput struct {
	ClientID       string          `json:"clientId"`
	Type           ServiceType     `json:"type"`
	Description    string          `json:"description"`
	Location       RequestLocation `json:"location"`
	Priority       Priority        `json:"priority,omitempty"`
	EstimatedPrice *float64        `json:"estimatedPrice,omitempty"`
	ContactPhone   string          `json:"contactPhone,omitempty"`
	ContactName    string          `json:"contactName,omitempty"`
	VehicleInfo    string          `json:"vehicleInfo,omitempty"`
}

// UpdateRequestInput carries the subset of fields a caller may change
// after creation. A nil pointer means "leave untouched".
type UpdateRequestInput struct {
	Description  *string `json:"description,omitempty"`
	ContactPhone *string `json:"contactPhone,omitempty"`
	ContactName  *string `json:"contactName,omitempty"`
	VehicleInfo  *string `json:"vehicleInfo,omitempty"`
}

// Empty reports whether no recognized field was supplied.
func (u UpdateRequestInput) Empty() bool {
	return u.Description == nil && u.ContactPhone == nil && u.ContactName == nil && u.VehicleInfo == nil
}

// CompleteRequestInput is the optional payload a provider sends when
// finishing a service.
type CompleteRequestInput struct {
	FinalPrice *float64 `json:"finalPrice,omitempty"`
	Rating     *int     `json:"rating,omitempty"`
	Feedback   string   `json:"feedback,omitempty"`
}
