package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"trivia-admin-service/internal/domain"
)

// SessionStore holds opaque admin session tokens with a TTL.
type SessionStore interface {
	Create(ctx context.Context, token string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
	Destroy(ctx context.Context, token string) error
}

// AuthService implements session-based admin authentication against a
// single configured credential pair.
type AuthService struct {
	sessions     SessionStore
	username     string
	passwordHash string
	ttl          time.Duration
}

func NewAuthService(sessions SessionStore, username, passwordHash string, ttl time.Duration) *AuthService {
	return &AuthService{sessions: sessions, username: username, passwordHash: passwordHash, ttl: ttl}
}

// SessionTTL exposes the configured session lifetime (cookie max-age).
func (s *AuthService) SessionTTL() time.Duration { return s.ttl }

// Login verifies the credentials and issues a fresh session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username != s.username {
		return "", domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.sessions.Create(ctx, token, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Validate reports whether the token belongs to a live session.
func (s *AuthService) Validate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return s.sessions.Exists(ctx, token)
}

// Logout destroys the session; unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}
