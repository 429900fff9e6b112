package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auxy/roadside-assist/internal/auth"
	"github.com/auxy/roadside-assist/internal/db"
	"github.com/auxy/roadside-assist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAuthService() *auth.Service {
	return auth.NewService("test-secret", time.Hour)
}

func TestAuthHandler_Login(t *testing.T) {
	authService := newAuthService()

	t.Run("successful login", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, noopEvents{})

		passwordHash, err := authService.HashPassword("password123")
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Email:        "test@example.com",
			PasswordHash: passwordHash,
			Role:         models.RoleClient,
			IsActive:     true,
		}

		users.On("FindUserByEmail", mock.Anything, "test@example.com").Return(user, nil)
		users.On("UpdateLastLogin", mock.Anything, user.ID.Hex()).Return(nil)

		body, _ := json.Marshal(models.LoginRequest{Email: "test@example.com", Password: "password123"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp models.LoginResponse
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "test@example.com", resp.User.Email)
		assert.Empty(t, resp.User.PasswordHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, noopEvents{})

		passwordHash, _ := authService.HashPassword("password123")
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Email:        "test@example.com",
			PasswordHash: passwordHash,
			IsActive:     true,
		}
		users.On("FindUserByEmail", mock.Anything, "test@example.com").Return(user, nil)

		body, _ := json.Marshal(models.LoginRequest{Email: "test@example.com", Password: "nope"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, noopEvents{})

		users.On("FindUserByEmail", mock.Anything, "ghost@example.com").Return(nil, db.ErrNotFound)

		body, _ := json.Marshal(models.LoginRequest{Email: "ghost@example.com", Password: "password123"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, noopEvents{})

		passwordHash, _ := authService.HashPassword("password123")
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Email:        "test@example.com",
			PasswordHash: passwordHash,
			IsActive:     false,
		}
		users.On("FindUserByEmail", mock.Anything, "test@example.com").Return(user, nil)

		body, _ := json.Marshal(models.LoginRequest{Email: "test@example.com", Password: "password123"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(MockUserCollection), noopEvents{})

		body, _ := json.Marshal(models.LoginRequest{Email: "test@example.com"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	authService := newAuthService()

	clientPayload := func() models.RegisterRequest {
		return models.RegisterRequest{
			Email:    "new@example.com",
			Password: "password123",
			Name:     "New Client",
		}
	}

	t.Run("client registration", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, noopEvents{})

		created := &models.User{
			ID:       primitive.NewObjectID(),
			Email:    "new@example.com",
			Role:     models.RoleClient,
			Name:     "New Client",
			IsActive: true,
		}
		users.On("FindUserByEmail", mock.Anything, "new@example.com").Return(nil, db.ErrNotFound)
		users.On("InsertUser", mock.Anything, mock.Anything).Return(created.ID.Hex(), nil)
		users.On("FindUserByID", mock.Anything, created.ID.Hex()).Return(created, nil)

		body, _ := json.Marshal(clientPayload())
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp models.LoginResponse
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, noopEvents{})

		existing := &models.User{ID: primitive.NewObjectID(), Email: "new@example.com"}
		users.On("FindUserByEmail", mock.Anything, "new@example.com").Return(existing, nil)

		body, _ := json.Marshal(clientPayload())
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		result := decodeBody(t, w)
		assert.Contains(t, result["error"], "already exists")
	})

	t.Run("provider requires company details", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, noopEvents{})

		users.On("FindUserByEmail", mock.Anything, "new@example.com").Return(nil, db.ErrNotFound)

		payload := clientPayload()
		payload.Role = models.RoleProvider
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		result := decodeBody(t, w)
		assert.Contains(t, result["error"], "company_name")
	})

	t.Run("admin role cannot self-register", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(MockUserCollection), noopEvents{})

		payload := clientPayload()
		payload.Role = models.RoleAdmin
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("weak password", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(MockUserCollection), noopEvents{})

		payload := clientPayload()
		payload.Password = "short"
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("provider registration notifies admins", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, noopEvents{})

		created := &models.User{
			ID:       primitive.NewObjectID(),
			Email:    "new@example.com",
			Role:     models.RoleProvider,
			Name:     "Grúas del Valle",
			IsActive: true,
		}
		users.On("FindUserByEmail", mock.Anything, "new@example.com").Return(nil, db.ErrNotFound)
		users.On("InsertUser", mock.Anything, mock.Anything).Return(created.ID.Hex(), nil)
		users.On("FindUserByID", mock.Anything, created.ID.Hex()).Return(created, nil)
		users.On("FindUsersByRole", mock.Anything, models.RoleAdmin).
			Return([]models.User{{ID: primitive.NewObjectID(), Role: models.RoleAdmin}}, nil)

		payload := clientPayload()
		payload.Role = models.RoleProvider
		payload.Name = "Grúas del Valle"
		payload.CompanyName = "Grúas del Valle SA"
		payload.BusinessLicense = "LIC-1234"
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		users.AssertCalled(t, "FindUsersByRole", mock.Anything, models.RoleAdmin)
	})
}
