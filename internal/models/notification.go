package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType categorizes a notification for the dashboard bell.
type NotificationType string

const (
	NotifyInfo       NotificationType = "info"
	NotifySuccess    NotificationType = "success"
	NotifyWarning    NotificationType = "warning"
	NotifyError      NotificationType = "error"
	NotifyRequest    NotificationType = "request"
	NotifyAssignment NotificationType = "assignment"
	NotifyCompletion NotificationType = "completion"
	NotifyPayment    NotificationType = "payment"
	NotifySystem     NotificationType = "system"
)

// Notification is a user-facing message produced by lifecycle events.
// Delivery is best effort; the document is the source of truth for the
// notification center.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   string             `bson:"event_id" json:"event_id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Type      NotificationType   `bson:"type" json:"type"`
	Read      bool               `bson:"read" json:"read"`
	Data      map[string]any     `bson:"data,omitempty" json:"data,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
