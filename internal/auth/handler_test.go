package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/rbac"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
	_ "github.com/Satu-Teladan-App/admin-dashboard/internal/testing/guard"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/view"
)

type stubRepo struct {
	user            *User
	sessionsCreated int
	sessionsDeleted int
}

func (r *stubRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if r.user == nil || r.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return r.user, nil
}

func (r *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	r.sessionsCreated++
	return nil
}

func (r *stubRepo) DeleteSession(ctx context.Context, id string) error {
	r.sessionsDeleted++
	return nil
}

type stubStore struct {
	rbac.Store
}

func (stubStore) RolesForUser(ctx context.Context, userID int64) ([]rbac.Role, error) {
	return nil, nil
}

func newTestHandler(t *testing.T, repo *stubRepo) (*Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sm := shared.NewSessionManager(client, "teladan_session", "test-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")
	templates, err := view.NewEngine()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	guard := rbac.Guard{Service: rbac.NewService(stubStore{}, nil, nil), Sessions: sm}
	handler := NewHandler(logger, NewService(repo), templates, sm, csrf, guard)
	return handler, sm
}

func activeUser(t *testing.T, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &User{
		ID:           7,
		Email:        "pengurus@satuteladan.org",
		Name:         "Pengurus",
		PasswordHash: string(hash),
		IsActive:     true,
	}
}

func withSession(t *testing.T, sm *shared.SessionManager, req *http.Request) (*http.Request, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess)), sess
}

func TestShowLoginRendersForm(t *testing.T) {
	handler, sm := newTestHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	req, _ = withSession(t, sm, req)
	rec := httptest.NewRecorder()
	handler.ShowLoginForTest(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Masuk")
	assert.Contains(t, rec.Body.String(), "csrf_token")
}

func TestHandleLoginSuccessRedirects(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "rahasia-panjang")}
	handler, sm := newTestHandler(t, repo)

	form := url.Values{"email": {"pengurus@satuteladan.org"}, "password": {"rahasia-panjang"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req, sess := withSession(t, sm, req)
	rec := httptest.NewRecorder()
	handler.HandleLoginForTest(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "7", sess.User())
	assert.Equal(t, 1, repo.sessionsCreated)
}

func TestHandleLoginWrongPassword(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "rahasia-panjang")}
	handler, sm := newTestHandler(t, repo)

	form := url.Values{"email": {"pengurus@satuteladan.org"}, "password": {"password-salah"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req, sess := withSession(t, sm, req)
	rec := httptest.NewRecorder()
	handler.HandleLoginForTest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email atau password tidak valid")
	assert.Empty(t, sess.User())
	assert.Zero(t, repo.sessionsCreated)
}

func TestHandleLoginInactiveAccount(t *testing.T) {
	user := activeUser(t, "rahasia-panjang")
	user.IsActive = false
	repo := &stubRepo{user: user}
	handler, sm := newTestHandler(t, repo)

	form := url.Values{"email": {"pengurus@satuteladan.org"}, "password": {"rahasia-panjang"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req, _ = withSession(t, sm, req)
	rec := httptest.NewRecorder()
	handler.HandleLoginForTest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email atau password tidak valid")
}

func TestHandleLoginValidation(t *testing.T) {
	handler, sm := newTestHandler(t, &stubRepo{})

	form := url.Values{"email": {"bukan-email"}, "password": {"pendek"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req, _ = withSession(t, sm, req)
	rec := httptest.NewRecorder()
	handler.HandleLoginForTest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
