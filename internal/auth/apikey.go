package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/auxy/roadside-assist/internal/apperrors"
	"github.com/auxy/roadside-assist/internal/db"
	"github.com/auxy/roadside-assist/internal/models"
)

const (
	keyPrefix  = "auxy_"
	keyCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	keyLength  = 32

	// rateWindow anchors the hourly allowance to the key's most recent
	// use. A key resets only when a full hour passes without traffic.
	rateWindow = time.Hour
)

// KeyService is the gateway in front of the public API: it validates
// bearer credentials, enforces permission scopes and the per-key hourly
// rate limit.
type KeyService struct {
	keys db.ApiKeyCollection
	now  func() time.Time
}

// NewKeyService creates the API key gateway service.
func NewKeyService(keys db.ApiKeyCollection) *KeyService {
	return &KeyService{keys: keys, now: time.Now}
}

// GenerateKey mints a new key secret. Secrets are generated once and
// never rotated; revocation is the active toggle.
func (s *KeyService) GenerateKey() (string, error) {
	var b strings.Builder
	b.WriteString(keyPrefix)
	for i := 0; i < keyLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(keyCharset))))
		if err != nil {
			return "", err
		}
		b.WriteByte(keyCharset[n.Int64()])
	}
	return b.String(), nil
}

// ExtractCredential pulls the key secret out of the request headers.
// The Authorization bearer form takes precedence over x-api-key.
func ExtractCredential(authHeader, apiKeyHeader string) string {
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return apiKeyHeader
}

// Authenticate resolves a credential to an active API key and applies
// the rate limit. Errors are already mapped: missing or unknown
// credential is unauthorized, an exhausted allowance is rate-limited.
func (s *KeyService) Authenticate(ctx context.Context, authHeader, apiKeyHeader string) (*models.ApiKey, error) {
	credential := ExtractCredential(authHeader, apiKeyHeader)
	if credential == "" {
		return nil, apperrors.Unauthorized("API key is required")
	}

	apiKey, err := s.keys.FindActiveByKey(ctx, credential)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid API key")
		}
		return nil, apperrors.Internal(err)
	}

	if apiKey.LastUsed != nil &&
		apiKey.UsageCount >= int64(apiKey.RateLimit) &&
		s.now().Sub(*apiKey.LastUsed) < rateWindow {
		return nil, apperrors.RateLimited("Rate limit exceeded")
	}

	return apiKey, nil
}

// Authorize checks the key against a required scope. The wildcard
// grants everything.
func (s *KeyService) Authorize(apiKey *models.ApiKey, required models.Permission) error {
	if apiKey.HasPermission(required) {
		return nil
	}
	return apperrors.Forbidden("Insufficient permissions")
}

// RecordUsage bumps the key's counter and window anchor. Called exactly
// once per authenticated request, regardless of how many downstream
// operations the handler performs.
func (s *KeyService) RecordUsage(ctx context.Context, apiKey *models.ApiKey) error {
	return s.keys.RecordUsage(ctx, apiKey.ID.Hex())
}
