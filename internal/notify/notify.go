package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/auxy/roadside-assist/internal/db"
	"github.com/auxy/roadside-assist/internal/models"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Events is what the lifecycle emits. Implementations deliver best
// effort; callers never treat a delivery failure as an operation
// failure.
type Events interface {
	RequestCreated(ctx context.Context, clientID, requestID string, serviceType models.ServiceType) error
	RequestAssigned(ctx context.Context, clientID, providerID, requestID string) error
	RequestInProgress(ctx context.Context, clientID, providerID, requestID string) error
	RequestCompleted(ctx context.Context, clientID, providerID, requestID string) error
	RequestCancelled(ctx context.Context, providerID, requestID string) error
	PaymentReceived(ctx context.Context, providerID, requestID string, amount float64) error
	ProviderPendingApproval(ctx context.Context, adminID, providerID, providerName string) error
	ProviderApproved(ctx context.Context, providerID string) error
}

// Dispatcher persists notification documents and mirrors each one to an
// MQTT topic so connected dashboards receive it live. The document store
// is the source of truth; the publish is fire-and-forget.
type Dispatcher struct {
	store   db.NotificationCollection
	client  mqtt.Client
	timeout time.Duration
}

// NewDispatcher creates a dispatcher. The MQTT client may be nil, in
// which case events are only persisted.
func NewDispatcher(store db.NotificationCollection, client mqtt.Client, timeout time.Duration) *Dispatcher {
	return &Dispatcher{store: store, client: client, timeout: timeout}
}

// ConnectMQTT connects a paho client to the broker.
func ConnectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", err)
	}
	return client, nil
}

func (d *Dispatcher) send(ctx context.Context, n models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	n.EventID = uuid.NewString()
	if _, err := d.store.InsertNotification(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	if d.client == nil {
		return nil
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	topic := "notifications/" + n.UserID
	token := d.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(d.timeout) {
		log.WithField("topic", topic).Warn("mqtt publish timed out")
		return nil
	}
	if err := token.Error(); err != nil {
		log.WithField("topic", topic).WithError(err).Warn("mqtt publish failed")
	}
	return nil
}

// RequestCreated tells the client their request is pending assignment.
func (d *Dispatcher) RequestCreated(ctx context.Context, clientID, requestID string, serviceType models.ServiceType) error {
	return d.send(ctx, models.Notification{
		UserID:  clientID,
		Title:   "Service request created",
		Message: fmt.Sprintf("Your %s request has been created and is pending assignment.", serviceType),
		Type:    models.NotifyRequest,
		Data:    map[string]any{"requestId": requestID},
	})
}

// RequestAssigned tells both parties about a new assignment.
func (d *Dispatcher) RequestAssigned(ctx context.Context, clientID, providerID, requestID string) error {
	err := d.send(ctx, models.Notification{
		UserID:  clientID,
		Title:   "Service assigned",
		Message: "Your service request has been assigned to a provider.",
		Type:    models.NotifyAssignment,
		Data:    map[string]any{"requestId": requestID, "providerId": providerID},
	})
	if err != nil {
		return err
	}
	return d.send(ctx, models.Notification{
		UserID:  providerID,
		Title:   "New service assignment",
		Message: "You have been assigned a new service request.",
		Type:    models.NotifyAssignment,
		Data:    map[string]any{"requestId": requestID},
	})
}

// RequestInProgress tells the client help is on the way.
func (d *Dispatcher) RequestInProgress(ctx context.Context, clientID, providerID, requestID string) error {
	return d.send(ctx, models.Notification{
		UserID:  clientID,
		Title:   "Service in progress",
		Message: "Your service is on the way.",
		Type:    models.NotifyInfo,
		Data:    map[string]any{"requestId": requestID, "providerId": providerID},
	})
}

// RequestCompleted notifies both parties of completion.
func (d *Dispatcher) RequestCompleted(ctx context.Context, clientID, providerID, requestID string) error {
	err := d.send(ctx, models.Notification{
		UserID:  clientID,
		Title:   "Service completed",
		Message: "Your service has been completed. Thank you for using Auxy!",
		Type:    models.NotifyCompletion,
		Data:    map[string]any{"requestId": requestID, "providerId": providerID},
	})
	if err != nil {
		return err
	}
	return d.send(ctx, models.Notification{
		UserID:  providerID,
		Title:   "Service completed",
		Message: "You have successfully completed a service.",
		Type:    models.NotifyCompletion,
		Data:    map[string]any{"requestId": requestID},
	})
}

// RequestCancelled warns the assigned provider about a cancellation.
func (d *Dispatcher) RequestCancelled(ctx context.Context, providerID, requestID string) error {
	return d.send(ctx, models.Notification{
		UserID:  providerID,
		Title:   "Request cancelled",
		Message: fmt.Sprintf("Service request %s has been cancelled by the client.", requestID),
		Type:    models.NotifyWarning,
		Data:    map[string]any{"requestId": requestID},
	})
}

// PaymentReceived tells a provider a payment arrived.
func (d *Dispatcher) PaymentReceived(ctx context.Context, providerID, requestID string, amount float64) error {
	return d.send(ctx, models.Notification{
		UserID:  providerID,
		Title:   "Payment received",
		Message: fmt.Sprintf("You received a payment of $%.2f for your service.", amount),
		Type:    models.NotifyPayment,
		Data:    map[string]any{"requestId": requestID, "amount": amount},
	})
}

// ProviderPendingApproval tells an admin a provider awaits approval.
func (d *Dispatcher) ProviderPendingApproval(ctx context.Context, adminID, providerID, providerName string) error {
	return d.send(ctx, models.Notification{
		UserID:  adminID,
		Title:   "New provider registered",
		Message: fmt.Sprintf("%s has registered as a provider and requires approval.", providerName),
		Type:    models.NotifyInfo,
		Data:    map[string]any{"providerId": providerID},
	})
}

// ProviderApproved tells a provider their account was approved.
func (d *Dispatcher) ProviderApproved(ctx context.Context, providerID string) error {
	return d.send(ctx, models.Notification{
		UserID:  providerID,
		Title:   "Account approved",
		Message: "Your provider account has been approved. You can now receive service requests.",
		Type:    models.NotifySuccess,
	})
}
