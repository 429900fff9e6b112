package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/db"
	"github.com/auxy/roadside-assist/internal/models"
	"github.com/auxy/roadside-assist/internal/notify"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// estimatedResponseTime is the static response window quoted to clients
// on creation. It is not computed from live data.
const estimatedResponseTime = "15-30 minutes"

// defaultCancellationReason is stored when the API path cancels without
// an explicit reason.
const defaultCancellationReason = "Cancelled by client"

// RequestService owns the service request lifecycle: creation,
// assignment, progress, completion, cancellation and update. Every
// transition is a single conditional write, so concurrent actors racing
// on the same request resolve to exactly one winner. Notification
// delivery is best effort and never fails an operation.
type RequestService struct {
	requests db.RequestCollection
	users    db.UserCollection
	events   notify.Events
}

// NewRequestService creates the lifecycle service.
func NewRequestService(requests db.RequestCollection, users db.UserCollection, events notify.Events) *RequestService {
	return &RequestService{requests: requests, users: users, events: events}
}

// CreateResult is what a successful creation returns to the caller.
type CreateResult struct {
	RequestID             string    `json:"requestId"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"createdAt"`
	EstimatedResponseTime string    `json:"estimatedResponseTime"`
}

// Create validates the input and stores a new request in pending state.
func (s *RequestService) Create(ctx context.Context, input models.CreateRequestInput) (*CreateResult, error) {
	var missing []string
	if input.ClientID == "" {
		missing = append(missing, "clientId")
	}
	if input.Type == "" {
		missing = append(missing, "type")
	}
	if input.Description == "" {
		missing = append(missing, "description")
	}
	if input.Location == (models.RequestLocation{}) {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return nil, apperrors.Validation("Missing required fields: %s", strings.Join(missing, ", "))
	}

	if !models.IsValidServiceType(input.Type) {
		return nil, apperrors.Validation("Invalid service type. Must be one of: %s", joinServiceTypes())
	}

	if input.Location.Lat == 0 || input.Location.Lng == 0 || input.Location.Address == "" {
		return nil, apperrors.Validation("Location must include lat, lng, and address")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	if !models.IsValidPriority(priority) {
		return nil, apperrors.Validation("Invalid priority. Must be one of: low, normal, high")
	}

	req := models.ServiceRequest{
		ClientID:       input.ClientID,
		Type:           input.Type,
		Description:    input.Description,
		Location:       input.Location,
		Status:         models.StatusPending,
		Priority:       priority,
		EstimatedPrice: input.EstimatedPrice,
		ContactPhone:   input.ContactPhone,
		ContactName:    input.ContactName,
		VehicleInfo:    input.VehicleInfo,
	}

	id, err := s.requests.InsertRequest(ctx, req)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	created, err := s.requests.FindRequestByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.emit("request created", func() error {
		return s.events.RequestCreated(ctx, input.ClientID, id, input.Type)
	})

	return &CreateResult{
		RequestID:             id,
		Status:                string(models.StatusPending),
		CreatedAt:             created.CreatedAt,
		EstimatedResponseTime: estimatedResponseTime,
	}, nil
}

// Get fetches one request by id.
func (s *RequestService) Get(ctx context.Context, id string) (*models.ServiceRequest, error) {
	req, err := s.requests.FindRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.NotFound("Service request not found")
		}
		return nil, apperrors.Internal(err)
	}
	return req, nil
}

// List returns a client's requests, newest first, optionally filtered
// by status.
func (s *RequestService) List(ctx context.Context, clientID string, status models.RequestStatus, limit int64) ([]models.ServiceRequest, error) {
	if status != "" {
		switch status {
		case models.StatusPending, models.StatusAssigned, models.StatusInProgress, models.StatusCompleted, models.StatusCancelled:
		default:
			return nil, apperrors.Validation("Invalid status filter")
		}
	}
	requests, err := s.requests.FindRequests(ctx, clientID, status, limit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if requests == nil {
		requests = []models.ServiceRequest{}
	}
	return requests, nil
}

// Assign claims a pending request for a provider. The pending check and
// the write are one conditional update: when two providers race, only
// one wins and the other gets a conflict.
func (s *RequestService) Assign(ctx context.Context, requestID, providerID string) (*models.ServiceRequest, error) {
	provider, err := s.users.FindUserByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.NotFound("Provider not found")
		}
		return nil, apperrors.Internal(err)
	}
	if provider.Role != models.RoleProvider {
		return nil, apperrors.Validation("User is not a provider")
	}
	if !provider.IsApproved {
		return nil, apperrors.Forbidden("Provider is not approved")
	}

	now := time.Now()
	updated, err := s.requests.TransitionStatus(ctx, requestID,
		[]models.RequestStatus{models.StatusPending},
		bson.M{
			"status":      models.StatusAssigned,
			"provider_id": providerID,
			"assigned_at": now,
		})
	if err != nil {
		return nil, s.transitionError(ctx, requestID, err, func(current models.RequestStatus) error {
			if current == models.StatusCancelled {
				return apperrors.Conflict("Request is cancelled")
			}
			return apperrors.Conflict("Request already assigned")
		})
	}

	s.emit("request assigned", func() error {
		return s.events.RequestAssigned(ctx, updated.ClientID, providerID, requestID)
	})

	return updated, nil
}

// Start moves an assigned request to in_progress.
func (s *RequestService) Start(ctx context.Context, requestID string) (*models.ServiceRequest, error) {
	updated, err := s.requests.TransitionStatus(ctx, requestID,
		[]models.RequestStatus{models.StatusAssigned},
		bson.M{"status": models.StatusInProgress})
	if err != nil {
		return nil, s.transitionError(ctx, requestID, err, func(current models.RequestStatus) error {
			switch current {
			case models.StatusPending:
				return apperrors.Conflict("Request has not been assigned")
			case models.StatusInProgress:
				return apperrors.Conflict("Request is already in progress")
			default:
				return apperrors.Conflict("Request is " + string(current))
			}
		})
	}

	s.emit("request started", func() error {
		return s.events.RequestInProgress(ctx, updated.ClientID, updated.ProviderID, requestID)
	})

	return updated, nil
}

// Complete finishes a request. The canonical path is from in_progress,
// but completing straight from assigned is allowed for providers who
// never press start.
func (s *RequestService) Complete(ctx context.Context, requestID string, input models.CompleteRequestInput) (*models.ServiceRequest, error) {
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, apperrors.Validation("Rating must be between 1 and 5")
	}

	now := time.Now()
	set := bson.M{
		"status":       models.StatusCompleted,
		"completed_at": now,
	}
	if input.FinalPrice != nil {
		set["final_price"] = *input.FinalPrice
	}
	if input.Rating != nil {
		set["rating"] = *input.Rating
	}
	if input.Feedback != "" {
		set["feedback"] = input.Feedback
	}

	updated, err := s.requests.TransitionStatus(ctx, requestID,
		[]models.RequestStatus{models.StatusInProgress, models.StatusAssigned},
		set)
	if err != nil {
		return nil, s.transitionError(ctx, requestID, err, func(current models.RequestStatus) error {
			switch current {
			case models.StatusCompleted:
				return apperrors.Conflict("Request is already completed")
			case models.StatusCancelled:
				return apperrors.Conflict("Request is cancelled")
			default:
				return apperrors.Conflict("Request has not been assigned")
			}
		})
	}

	if input.Rating != nil && updated.ProviderID != "" {
		s.applyProviderRating(ctx, updated.ProviderID, *input.Rating)
	}

	s.emit("request completed", func() error {
		return s.events.RequestCompleted(ctx, updated.ClientID, updated.ProviderID, requestID)
	})
	if input.FinalPrice != nil && updated.ProviderID != "" {
		s.emit("payment received", func() error {
			return s.events.PaymentReceived(ctx, updated.ProviderID, requestID, *input.FinalPrice)
		})
	}

	return updated, nil
}

// Cancel moves a non-terminal request to cancelled. The assigned
// provider, if any, is notified in the background; a slow or failing
// notifier never delays or fails the cancellation.
func (s *RequestService) Cancel(ctx context.Context, requestID, reason string) (*models.ServiceRequest, error) {
	if reason == "" {
		reason = defaultCancellationReason
	}

	now := time.Now()
	updated, err := s.requests.TransitionStatus(ctx, requestID,
		[]models.RequestStatus{models.StatusPending, models.StatusAssigned, models.StatusInProgress},
		bson.M{
			"status":              models.StatusCancelled,
			"cancelled_at":        now,
			"cancellation_reason": reason,
		})
	if err != nil {
		return nil, s.transitionError(ctx, requestID, err, func(current models.RequestStatus) error {
			if current == models.StatusCompleted {
				return apperrors.Conflict("Cannot cancel a completed request")
			}
			return apperrors.Conflict("Request is already cancelled")
		})
	}

	if updated.ProviderID != "" {
		providerID := updated.ProviderID
		go func() {
			if err := s.events.RequestCancelled(context.Background(), providerID, requestID); err != nil {
				log.WithField("request_id", requestID).WithError(err).Warn("cancellation notification failed")
			}
		}()
	}

	return updated, nil
}

// Update edits the contact metadata of a request. Finished requests are
// immutable.
func (s *RequestService) Update(ctx context.Context, requestID string, input models.UpdateRequestInput) (*models.ServiceRequest, error) {
	if input.Empty() {
		return nil, apperrors.Validation("No valid fields to update")
	}

	set := bson.M{}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.ContactPhone != nil {
		set["contact_phone"] = *input.ContactPhone
	}
	if input.ContactName != nil {
		set["contact_name"] = *input.ContactName
	}
	if input.VehicleInfo != nil {
		set["vehicle_info"] = *input.VehicleInfo
	}

	updated, err := s.requests.UpdateRequestFields(ctx, requestID,
		[]models.RequestStatus{models.StatusCompleted, models.StatusCancelled}, set)
	if err != nil {
		return nil, s.transitionError(ctx, requestID, err, func(current models.RequestStatus) error {
			return apperrors.Conflict("Cannot update a " + string(current) + " request")
		})
	}
	return updated, nil
}

// transitionError turns a failed conditional update into the right API
// error: not found when the id is unknown, otherwise a conflict derived
// from the request's current status.
func (s *RequestService) transitionError(ctx context.Context, requestID string, err error, conflict func(models.RequestStatus) error) error {
	if !errors.Is(err, db.ErrNotFound) {
		return apperrors.Internal(err)
	}
	current, readErr := s.requests.FindRequestByID(ctx, requestID)
	if readErr != nil {
		if errors.Is(readErr, db.ErrNotFound) {
			return apperrors.NotFound("Service request not found")
		}
		return apperrors.Internal(readErr)
	}
	return conflict(current.Status)
}

// applyProviderRating folds a new rating into the provider's aggregate.
func (s *RequestService) applyProviderRating(ctx context.Context, providerID string, rating int) {
	provider, err := s.users.FindUserByID(ctx, providerID)
	if err != nil {
		log.WithField("provider_id", providerID).WithError(err).Warn("rating update skipped")
		return
	}

	total := provider.TotalServices + 1
	aggregate := (provider.Rating*float64(provider.TotalServices) + float64(rating)) / float64(total)
	aggregate = math.Round(aggregate*100) / 100

	if err := s.users.UpdateProviderRating(ctx, providerID, aggregate, total); err != nil {
		log.WithField("provider_id", providerID).WithError(err).Warn("rating update failed")
	}
}

// emit runs a notification send and logs failures instead of
// propagating them.
func (s *RequestService) emit(event string, fn func() error) {
	if err := fn(); err != nil {
		log.WithField("event", event).WithError(err).Warn("notification failed")
	}
}

func joinServiceTypes() string {
	names := make([]string, len(models.ServiceTypes))
	for i, t := range models.ServiceTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
