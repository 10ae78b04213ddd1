package users

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brickline-erp/brickline-erp/internal/shared"
)

type memoryUserRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[int64]*User)}
}

func (r *memoryUserRepo) GetUser(ctx context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryUserRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryUserRepo) ListUsers(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memoryUserRepo) CreateUser(ctx context.Context, u User) (int64, error) {
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return 0, shared.ErrDuplicate
		}
	}
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = &u
	return u.ID, nil
}

func (r *memoryUserRepo) UpdateUser(ctx context.Context, id int64, updates map[string]any) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	for col, val := range updates {
		switch col {
		case "username":
			u.Username = val.(string)
		case "email":
			u.Email = val.(string)
		case "role":
			u.Role = val.(string)
		case "is_active":
			u.IsActive = val.(bool)
		}
	}
	return nil
}

func (r *memoryUserRepo) DeactivateUser(ctx context.Context, id int64) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = false
	return nil
}

func TestCreateUser(t *testing.T) {
	svc := NewService(newMemoryUserRepo())

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "fiona.finance", Email: "finance@brickline.local",
		Password: "finance123", Role: shared.RoleFinance,
	})
	require.NoError(t, err)
	require.True(t, user.IsActive)
	require.Equal(t, shared.RoleFinance, user.Role)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("finance123")))
}

func TestCreateUserUnknownRole(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "x", Email: "x@brickline.local", Password: "password1", Role: "janitor",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "sam.sales", Email: "sales@brickline.local", Password: "sales1234", Role: shared.RoleSales,
	})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateUserRequest{
		Username: "other.sam", Email: "sales@brickline.local", Password: "sales1234", Role: shared.RoleSales,
	})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpdateUserRole(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "carla.cashier", Email: "cashier@brickline.local", Password: "cashier12", Role: shared.RoleCashier,
	})
	require.NoError(t, err)

	role := shared.RoleFinance
	updated, err := svc.UpdateUser(ctx, user.ID, UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	require.Equal(t, shared.RoleFinance, updated.Role)

	bad := "janitor"
	_, err = svc.UpdateUser(ctx, user.ID, UpdateUserRequest{Role: &bad})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateUserMissing(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	name := "ghost"
	_, err := svc.UpdateUser(context.Background(), 99, UpdateUserRequest{Username: &name})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeactivateUserClearsAccount(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "eric.engineer", Email: "engineer@brickline.local", Password: "engineer1", Role: shared.RoleEngineer,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateUser(ctx, user.ID))

	// The authorization port reflects the server-side flag immediately.
	account, err := svc.Account(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, account.Active)
	require.Equal(t, user.Username, account.Username)
}
