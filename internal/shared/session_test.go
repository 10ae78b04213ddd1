package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "brickline_session", "test-secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	sess.SetUser("42")
	sess.Set("csrf", "token-1")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "brickline_session", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	// A follow-up request with the cookie resolves the same session state.
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	sess2, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	require.Equal(t, "42", sess2.User())
	require.Equal(t, "token-1", sess2.Get("csrf"))
}

func TestSessionDestroy(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("42")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))
	cookie := rec.Result().Cookies()[0]

	req2 := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req2.AddCookie(cookie)
	sess2, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	sm.Destroy(sess2)

	rec2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec2, req2, sess2))
	expired := rec2.Result().Cookies()[0]
	require.Equal(t, -1, expired.MaxAge)

	// The old cookie no longer resolves to a user.
	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	req3.AddCookie(cookie)
	sess3, err := sm.Load(ctx, req3)
	require.NoError(t, err)
	require.Empty(t, sess3.User())
}

func TestCSRFTokenVerify(t *testing.T) {
	sm := newTestSessionManager(t)
	csrf := NewCSRFManager("csrf-secret")
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)

	token, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, csrf.VerifyToken(ctx, sess, token))
	require.ErrorIs(t, csrf.VerifyToken(ctx, sess, "forged"), ErrCSRFTokenMismatch)
	require.ErrorIs(t, csrf.VerifyToken(ctx, sess, ""), ErrCSRFTokenMissing)
}
