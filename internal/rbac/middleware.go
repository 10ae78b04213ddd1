// Package rbac provides role based authorization middleware.
package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/brickline-erp/brickline-erp/internal/platform/httpx"
	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// Account is the slice of an account record authorization needs.
type Account struct {
	ID       int64
	Username string
	Role     string
	Active   bool
}

// AccountSource resolves a session user id into an account.
type AccountSource interface {
	Account(ctx context.Context, id int64) (Account, error)
}

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Accounts AccountSource
	Logger   *slog.Logger
}

// Authenticate resolves the session user into a request actor. Requests
// without a valid, active account are rejected. The account record in
// postgres is the sole authority for the active flag.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
			return
		}
		userID, err := strconv.ParseInt(sess.User(), 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
			return
		}
		account, err := m.Accounts.Account(r.Context(), userID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("resolve session user", slog.Any("error", err), slog.Int64("user_id", userID))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
			return
		}
		if !account.Active {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "account disabled")
			return
		}
		actor := shared.Actor{ID: account.ID, Username: account.Username, Role: account.Role}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

// RequireRole ensures the current actor holds one of the given roles.
func (m Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
				return
			}
			if _, ok := allowed[actor.Role]; !ok {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
