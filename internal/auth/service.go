// Package auth implements login, logout and session bookkeeping.
package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/brickline-erp/brickline-erp/internal/shared"
	"github.com/brickline-erp/brickline-erp/internal/users"
)

// UserSource abstracts account lookup for authentication.
type UserSource interface {
	GetUserByEmail(ctx context.Context, email string) (*users.User, error)
}

// SessionStore persists session metadata alongside the redis copy.
type SessionStore interface {
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, userAgent string) error
	DeleteSession(ctx context.Context, id string) error
}

// Service wraps authentication business rules.
type Service struct {
	userSource UserSource
	sessions   SessionStore
}

// NewService constructs a new Service.
func NewService(userSource UserSource, sessions SessionStore) *Service {
	return &Service{userSource: userSource, sessions: sessions}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.userSource.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.sessions.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.sessions.DeleteSession(ctx, id)
}
