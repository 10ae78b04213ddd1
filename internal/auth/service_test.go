package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brickline-erp/brickline-erp/internal/shared"
	"github.com/brickline-erp/brickline-erp/internal/users"
)

type memoryUserSource struct {
	byEmail map[string]*users.User
}

func (s *memoryUserSource) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

type memorySessionStore struct {
	sessions map[string]int64
}

func (s *memorySessionStore) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, userAgent string) error {
	s.sessions[id] = userID
	return nil
}

func (s *memorySessionStore) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func newTestAuthService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	source := &memoryUserSource{byEmail: map[string]*users.User{
		"sales@brickline.local": {
			ID: 7, Username: "sam.sales", Email: "sales@brickline.local",
			Role: shared.RoleSales, PasswordHash: string(hash), IsActive: true,
		},
		"gone@brickline.local": {
			ID: 8, Username: "gone", Email: "gone@brickline.local",
			Role: shared.RoleSales, PasswordHash: string(hash), IsActive: false,
		},
	}}
	return NewService(source, &memorySessionStore{sessions: make(map[string]int64)})
}

func TestAuthenticate(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "sales@brickline.local", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, int64(7), user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := newTestAuthService(t)
	_, err := svc.Authenticate(context.Background(), "sales@brickline.local", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := newTestAuthService(t)
	_, err := svc.Authenticate(context.Background(), "nobody@brickline.local", "correct-horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	svc := newTestAuthService(t)
	_, err := svc.Authenticate(context.Background(), "gone@brickline.local", "correct-horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
