package users

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/brickline-erp/brickline-erp/internal/rbac"
	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, u User) (int64, error)
	UpdateUser(ctx context.Context, id int64, updates map[string]any) error
	DeactivateUser(ctx context.Context, id int64) error
}

// Service provides account management business logic.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser retrieves a single account.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// Account satisfies the authorization middleware's lookup port.
func (s *Service) Account(ctx context.Context, id int64) (rbac.Account, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return rbac.Account{}, err
	}
	return rbac.Account{ID: u.ID, Username: u.Username, Role: u.Role, Active: u.IsActive}, nil
}

// CreateUser creates an account with a hashed password.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if !shared.ValidRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", shared.ErrValidation, req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.repo.GetUser(ctx, id)
}

// UpdateUser updates account fields. The active flag lives server side only;
// clients must never cache it as authority.
func (s *Service) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	updates := make(map[string]any)
	if req.Username != nil {
		updates["username"] = *req.Username
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Role != nil {
		if !shared.ValidRole(*req.Role) {
			return nil, fmt.Errorf("%w: unknown role %q", shared.ErrValidation, *req.Role)
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateUser(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}
	return s.repo.GetUser(ctx, id)
}

// DeactivateUser disables an account.
func (s *Service) DeactivateUser(ctx context.Context, id int64) error {
	return s.repo.DeactivateUser(ctx, id)
}
