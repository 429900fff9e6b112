package service

import (
	"context"
	"sync"

	"github.com/auxy/roadside-assist/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
)

// MockRequestCollection is a mock implementation of db.RequestCollection
type MockRequestCollection struct {
	mock.Mock
}

func (m *MockRequestCollection) InsertRequest(ctx context.Context, req models.ServiceRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockRequestCollection) FindRequestByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *MockRequestCollection) FindRequests(ctx context.Context, clientID string, status models.RequestStatus, limit int64) ([]models.ServiceRequest, error) {
	args := m.Called(ctx, clientID, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ServiceRequest), args.Error(1)
}

func (m *MockRequestCollection) TransitionStatus(ctx context.Context, id string, from []models.RequestStatus, set bson.M) (*models.ServiceRequest, error) {
	args := m.Called(ctx, id, from, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *MockRequestCollection) UpdateRequestFields(ctx context.Context, id string, notIn []models.RequestStatus, set bson.M) (*models.ServiceRequest, error) {
	args := m.Called(ctx, id, notIn, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

// MockUserCollection is a mock implementation of db.UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindProviders(ctx context.Context, approvedOnly bool) ([]models.User, error) {
	args := m.Called(ctx, approvedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) FindUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateUser(ctx context.Context, id string, user models.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *MockUserCollection) SetApproved(ctx context.Context, id string, approved bool) error {
	args := m.Called(ctx, id, approved)
	return args.Error(0)
}

func (m *MockUserCollection) UpdateProviderRating(ctx context.Context, id string, rating float64, totalServices int) error {
	args := m.Called(ctx, id, rating, totalServices)
	return args.Error(0)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// stubEvents records emitted notifications and optionally fails every
// delivery, to verify the lifecycle never propagates notifier errors.
type stubEvents struct {
	mu      sync.Mutex
	calls   []string
	sendErr error
}

func (s *stubEvents) record(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
	return s.sendErr
}

func (s *stubEvents) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubEvents) RequestCreated(ctx context.Context, clientID, requestID string, serviceType models.ServiceType) error {
	return s.record("created")
}

func (s *stubEvents) RequestAssigned(ctx context.Context, clientID, providerID, requestID string) error {
	return s.record("assigned")
}

func (s *stubEvents) RequestInProgress(ctx context.Context, clientID, providerID, requestID string) error {
	return s.record("in_progress")
}

func (s *stubEvents) RequestCompleted(ctx context.Context, clientID, providerID, requestID string) error {
	return s.record("completed")
}

func (s *stubEvents) RequestCancelled(ctx context.Context, providerID, requestID string) error {
	return s.record("cancelled")
}

func (s *stubEvents) PaymentReceived(ctx context.Context, providerID, requestID string, amount float64) error {
	return s.record("payment")
}

func (s *stubEvents) ProviderPendingApproval(ctx context.Context, adminID, providerID, providerName string) error {
	return s.record("pending_approval")
}

func (s *stubEvents) ProviderApproved(ctx context.Context, providerID string) error {
	return s.record("approved")
}
