package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/db"
	"github.com/auxy/roadside-assist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockApiKeyCollection is a mock implementation of db.ApiKeyCollection
type MockApiKeyCollection struct {
	mock.Mock
}

func (m *MockApiKeyCollection) InsertKey(ctx context.Context, key models.ApiKey) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockApiKeyCollection) FindActiveByKey(ctx context.Context, key string) (*models.ApiKey, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApiKey), args.Error(1)
}

func (m *MockApiKeyCollection) FindKeys(ctx context.Context) ([]models.ApiKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ApiKey), args.Error(1)
}

func (m *MockApiKeyCollection) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockApiKeyCollection) DeleteKey(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockApiKeyCollection) RecordUsage(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestKeyService_GenerateKey(t *testing.T) {
	s := NewKeyService(new(MockApiKeyCollection))

	key, err := s.GenerateKey()
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "auxy_"))
	assert.Len(t, key, len("auxy_")+32)

	// Two keys should never collide.
	other, err := s.GenerateKey()
	assert.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestExtractCredential(t *testing.T) {
	// Bearer header takes precedence
	assert.Equal(t, "from-bearer", ExtractCredential("Bearer from-bearer", "from-header"))

	// Falls back to the x-api-key header
	assert.Equal(t, "from-header", ExtractCredential("", "from-header"))

	// A non-bearer Authorization header is ignored
	assert.Equal(t, "from-header", ExtractCredential("Basic dXNlcg==", "from-header"))

	// Nothing supplied
	assert.Equal(t, "", ExtractCredential("", ""))
}

func TestKeyService_Authenticate(t *testing.T) {
	activeKey := func() *models.ApiKey {
		return &models.ApiKey{
			ID:          primitive.NewObjectID(),
			Key:         "auxy_testkey",
			IsActive:    true,
			Permissions: []models.Permission{models.PermRequestsCreate},
			RateLimit:   100,
		}
	}

	t.Run("missing credential", func(t *testing.T) {
		s := NewKeyService(new(MockApiKeyCollection))

		_, err := s.Authenticate(context.Background(), "", "")

		assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
		assert.Contains(t, err.Error(), "API key is required")
	})

	t.Run("unknown credential", func(t *testing.T) {
		keys := new(MockApiKeyCollection)
		s := NewKeyService(keys)

		keys.On("FindActiveByKey", mock.Anything, "auxy_bogus").Return(nil, db.ErrNotFound)

		_, err := s.Authenticate(context.Background(), "", "auxy_bogus")

		assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
		assert.Contains(t, err.Error(), "Invalid API key")
	})

	t.Run("valid key with headroom", func(t *testing.T) {
		keys := new(MockApiKeyCollection)
		s := NewKeyService(keys)

		keys.On("FindActiveByKey", mock.Anything, "auxy_testkey").Return(activeKey(), nil)

		apiKey, err := s.Authenticate(context.Background(), "Bearer auxy_testkey", "")

		assert.NoError(t, err)
		assert.Equal(t, "auxy_testkey", apiKey.Key)
	})

	t.Run("exhausted allowance inside the window", func(t *testing.T) {
		keys := new(MockApiKeyCollection)
		s := NewKeyService(keys)
		now := time.Now()
		s.now = func() time.Time { return now }

		key := activeKey()
		key.UsageCount = 100
		lastUsed := now.Add(-10 * time.Minute)
		key.LastUsed = &lastUsed
		keys.On("FindActiveByKey", mock.Anything, "auxy_testkey").Return(key, nil)

		_, err := s.Authenticate(context.Background(), "", "auxy_testkey")

		assert.Equal(t, apperrors.KindRateLimited, apperrors.KindOf(err))
	})

	t.Run("window expiry restores access", func(t *testing.T) {
		keys := new(MockApiKeyCollection)
		s := NewKeyService(keys)
		now := time.Now()
		s.now = func() time.Time { return now }

		key := activeKey()
		key.UsageCount = 100
		lastUsed := now.Add(-61 * time.Minute)
		key.LastUsed = &lastUsed
		keys.On("FindActiveByKey", mock.Anything, "auxy_testkey").Return(key, nil)

		_, err := s.Authenticate(context.Background(), "", "auxy_testkey")

		assert.NoError(t, err)
	})

	t.Run("never-used key is never limited", func(t *testing.T) {
		keys := new(MockApiKeyCollection)
		s := NewKeyService(keys)

		key := activeKey()
		key.UsageCount = 100
		key.LastUsed = nil
		keys.On("FindActiveByKey", mock.Anything, "auxy_testkey").Return(key, nil)

		_, err := s.Authenticate(context.Background(), "", "auxy_testkey")

		assert.NoError(t, err)
	})
}

func TestKeyService_Authorize(t *testing.T) {
	s := NewKeyService(new(MockApiKeyCollection))

	scoped := &models.ApiKey{Permissions: []models.Permission{models.PermRequestsCreate}}
	assert.NoError(t, s.Authorize(scoped, models.PermRequestsCreate))

	err := s.Authorize(scoped, models.PermProvidersRead)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	wildcard := &models.ApiKey{Permissions: []models.Permission{models.PermWildcard}}
	assert.NoError(t, s.Authorize(wildcard, models.PermProvidersRead))
	assert.NoError(t, s.Authorize(wildcard, models.PermEstimatesCreate))
}

func TestKeyService_RecordUsage(t *testing.T) {
	keys := new(MockApiKeyCollection)
	s := NewKeyService(keys)

	key := &models.ApiKey{ID: primitive.NewObjectID()}
	keys.On("RecordUsage", mock.Anything, key.ID.Hex()).Return(nil)

	assert.NoError(t, s.RecordUsage(context.Background(), key))
	keys.AssertExpectations(t)
}
