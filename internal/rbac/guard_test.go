package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

func newTestSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "teladan_session", "test-secret", time.Hour, false)
}

func sessionForUser(t *testing.T, sm *shared.SessionManager, userID string) *shared.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	if userID != "" {
		sess.SetUser(userID)
	}
	return sess
}

func requestWithSession(sess *shared.Session) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/roles", nil)
	if sess != nil {
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}
	return req
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestProtectRedirectsUnauthenticated(t *testing.T) {
	sm := newTestSessionManager(t)
	guard := Guard{Service: NewService(newMemStore(), nil, nil), Sessions: sm}

	var called bool
	rec := httptest.NewRecorder()
	guard.Protect(okHandler(&called)).ServeHTTP(rec, requestWithSession(sessionForUser(t, sm, "")))

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestProtectAllowsAdmin(t *testing.T) {
	store := newMemStore()
	role := store.addRole("Editor", shared.PermManageBerita)
	store.assign(7, role.ID)
	sm := newTestSessionManager(t)
	guard := Guard{Service: NewService(store, nil, nil), Sessions: sm}

	var called bool
	rec := httptest.NewRecorder()
	guard.Protect(okHandler(&called)).ServeHTTP(rec, requestWithSession(sessionForUser(t, sm, "7")))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectSignsOutUserWithoutRoles(t *testing.T) {
	sm := newTestSessionManager(t)
	guard := Guard{Service: NewService(newMemStore(), nil, nil), Sessions: sm}
	sess := sessionForUser(t, sm, "7")

	var called bool
	rec := httptest.NewRecorder()
	guard.Protect(okHandler(&called)).ServeHTTP(rec, requestWithSession(sess))

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.True(t, sess.Destroyed())

	// Retrying with the destroyed session still redirects.
	rec = httptest.NewRecorder()
	guard.Protect(okHandler(&called)).ServeHTTP(rec, requestWithSession(sess))
	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestProtectDeniesWithoutSignOutOnStoreError(t *testing.T) {
	store := newMemStore()
	store.rolesErr = errors.New("connection refused")
	sm := newTestSessionManager(t)
	guard := Guard{Service: NewService(store, nil, nil), Sessions: sm}
	sess := sessionForUser(t, sm, "7")

	var called bool
	rec := httptest.NewRecorder()
	guard.Protect(okHandler(&called)).ServeHTTP(rec, requestWithSession(sess))

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	// A transient store failure must not cost the user their session.
	assert.False(t, sess.Destroyed())
}

func TestProtectIgnoresMalformedPrincipal(t *testing.T) {
	sm := newTestSessionManager(t)
	guard := Guard{Service: NewService(newMemStore(), nil, nil), Sessions: sm}

	var called bool
	rec := httptest.NewRecorder()
	guard.Protect(okHandler(&called)).ServeHTTP(rec, requestWithSession(sessionForUser(t, sm, "not-a-number")))

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestRedirectAuthenticatedSendsAdminToLanding(t *testing.T) {
	store := newMemStore()
	role := store.addRole("Editor", shared.PermManageBerita)
	store.assign(7, role.ID)
	sm := newTestSessionManager(t)
	guard := Guard{Service: NewService(store, nil, nil), Sessions: sm}

	var called bool
	rec := httptest.NewRecorder()
	guard.RedirectAuthenticated(okHandler(&called)).ServeHTTP(rec, requestWithSession(sessionForUser(t, sm, "7")))

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRedirectAuthenticatedRendersForAnonymous(t *testing.T) {
	sm := newTestSessionManager(t)
	guard := Guard{Service: NewService(newMemStore(), nil, nil), Sessions: sm}

	var called bool
	rec := httptest.NewRecorder()
	guard.RedirectAuthenticated(okHandler(&called)).ServeHTTP(rec, requestWithSession(sessionForUser(t, sm, "")))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAnyDeniesMissingPermission(t *testing.T) {
	store := newMemStore()
	role := store.addRole("Editor", shared.PermManageBerita)
	store.assign(7, role.ID)
	sm := newTestSessionManager(t)
	mw := Middleware{Service: NewService(store, nil, nil)}

	var called bool
	rec := httptest.NewRecorder()
	mw.RequireAny(shared.PermManageRoles)(okHandler(&called)).ServeHTTP(rec, requestWithSession(sessionForUser(t, sm, "7")))

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAnyAllowsGrantedPermission(t *testing.T) {
	store := newMemStore()
	role := store.addRole("Editor", shared.PermManageBerita)
	store.assign(7, role.ID)
	sm := newTestSessionManager(t)
	mw := Middleware{Service: NewService(store, nil, nil)}

	var called bool
	rec := httptest.NewRecorder()
	mw.RequireAny(shared.PermManageBerita, shared.PermManageRoles)(okHandler(&called)).ServeHTTP(rec, requestWithSession(sessionForUser(t, sm, "7")))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAllNeedsEveryPermission(t *testing.T) {
	store := newMemStore()
	role := store.addRole("Editor", shared.PermManageBerita, shared.PermManagePesan)
	store.assign(7, role.ID)
	sm := newTestSessionManager(t)
	mw := Middleware{Service: NewService(store, nil, nil)}

	var called bool
	rec := httptest.NewRecorder()
	mw.RequireAll(shared.PermManageBerita, shared.PermManageRoles)(okHandler(&called)).ServeHTTP(rec, requestWithSession(sessionForUser(t, sm, "7")))
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	mw.RequireAll(shared.PermManageBerita, shared.PermManagePesan)(okHandler(&called)).ServeHTTP(rec, requestWithSession(sessionForUser(t, sm, "7")))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}
