package service

import (
	"context"
	"crypto/subtle"

	"github.com/brightpath-ai/tutorflow/internal/domain"
)

// AuthService validates API keys against the single key configured for the
// deployment.
type AuthService struct {
	apiKey string
}

func NewAuthService(apiKey string) *AuthService {
	return &AuthService{apiKey: apiKey}
}

// Enabled reports whether a key is configured at all.
func (s *AuthService) Enabled() bool {
	return s.apiKey != ""
}

// ValidateAPIKey checks the presented token in constant time.
func (s *AuthService) ValidateAPIKey(ctx context.Context, token string) error {
	if s.apiKey == "" {
		return domain.ErrInvalidAPIKey
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.apiKey)) != 1 {
		return domain.ErrInvalidAPIKey
	}
	return nil
}
