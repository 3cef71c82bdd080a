package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaflow/aquaflow/internal/auth"
	"github.com/aquaflow/aquaflow/internal/config"
	"github.com/aquaflow/aquaflow/internal/middleware"
	"github.com/aquaflow/aquaflow/internal/model"
	"github.com/aquaflow/aquaflow/internal/repository"
	"github.com/aquaflow/aquaflow/internal/utils"
)

type memIdentities struct {
	nextID int64
	users  map[int64]model.User
}

func newMemIdentities() *memIdentities {
	return &memIdentities{nextID: 1, users: map[int64]model.User{}}
}

func (m *memIdentities) GetByMobile(_ context.Context, mobile string) (*model.User, error) {
	for _, u := range m.users {
		if u.Mobile == mobile {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memIdentities) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (m *memIdentities) Create(_ context.Context, u *model.User) error {
	if existing, err := m.GetByMobile(context.Background(), u.Mobile); err == nil && existing != nil {
		return repository.ErrMobileExists
	}
	u.ID = m.nextID
	m.nextID++
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	m.users[u.ID] = *u
	return nil
}

type memSessions struct {
	rows map[string]model.Session
}

func newMemSessions() *memSessions { return &memSessions{rows: map[string]model.Session{}} }

func (m *memSessions) Create(_ context.Context, s *model.Session) error {
	m.rows[s.SID] = *s
	return nil
}

func (m *memSessions) Get(_ context.Context, sid string) (*model.Session, error) {
	s, ok := m.rows[sid]
	if !ok || s.Expired(time.Now().UTC()) {
		return nil, repository.ErrNotFound
	}
	out := s
	return &out, nil
}

func (m *memSessions) Touch(_ context.Context, sid string, expiresAt time.Time) error {
	if s, ok := m.rows[sid]; ok {
		s.ExpiresAt = expiresAt
		m.rows[sid] = s
	}
	return nil
}

func (m *memSessions) Delete(_ context.Context, sid string) error {
	delete(m.rows, sid)
	return nil
}

type authFixture struct {
	e        *echo.Echo
	users    *memIdentities
	sessions *memSessions
}

func newAuthFixture() *authFixture {
	users := newMemIdentities()
	sessions := newMemSessions()
	h := NewAuthHandler(config.Config{Env: "test", Port: "0"}, users, sessions)

	e := echo.New()
	e.Validator = NewValidator()
	e.POST("/api/register", h.Register)
	e.POST("/api/login", h.Login)
	e.POST("/api/logout", h.Logout)
	e.GET("/api/user", h.CurrentUser, middleware.SessionAuth(sessions, users))
	return &authFixture{e: e, users: users, sessions: sessions}
}

func (f *authFixture) post(path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == auth.CookieName {
			return ck
		}
	}
	t.Fatalf("no %s cookie in response", auth.CookieName)
	return nil
}

// seed inserts a user with a real derived credential, bypassing the handler.
func (f *authFixture) seed(t *testing.T, mobile, password, role string) *model.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := &model.User{Mobile: mobile, PasswordHash: hash, Role: role}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestRegisterCreatesIdentityAndSession(t *testing.T) {
	f := newAuthFixture()

	rec := f.post("/api/register", `{"mobile":"9876543210","password":"hunter22","role":"manager"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"manager"`)
	assert.NotContains(t, rec.Body.String(), "hunter22")

	ck := sessionCookie(t, rec)
	assert.NotEmpty(t, ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.False(t, ck.Secure) // not production

	_, ok := f.sessions.rows[ck.Value]
	assert.True(t, ok, "session row must exist before cookie is issued")

	// Stored credential is derived, never the plaintext.
	u, err := f.users.GetByMobile(context.Background(), "9876543210")
	require.NoError(t, err)
	match, err := utils.VerifyPassword(u.PasswordHash, "hunter22")
	require.NoError(t, err)
	assert.True(t, match)
}

func TestRegisterNormalizesUnknownRole(t *testing.T) {
	f := newAuthFixture()
	rec := f.post("/api/register", `{"mobile":"9876543211","password":"hunter22","role":"superboss"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"technician"`)
}

func TestRegisterDuplicateMobile(t *testing.T) {
	f := newAuthFixture()
	f.seed(t, "9876543210", "first-pass", "admin")

	rec := f.post("/api/register", `{"mobile":"9876543210","password":"second-pass"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mobile number already registered")
	assert.Empty(t, rec.Result().Cookies())
	assert.Len(t, f.users.users, 1, "no new identity on duplicate mobile")
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture()

	rec := f.post("/api/register", `{"mobile":"98","password":"hunter22"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation failed")
	assert.Contains(t, rec.Body.String(), `"errors"`)

	rec = f.post("/api/register", `{"mobile":"9876543210","password":"shrt"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.post("/api/register", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture()
	f.seed(t, "9876543210", "correct-horse", "admin")

	rec := f.post("/api/login", `{"mobile":"9876543210","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	ck := sessionCookie(t, rec)
	sess, ok := f.sessions.rows[ck.Value]
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().UTC().Add(auth.SessionTTL), sess.ExpiresAt, time.Minute)
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	f := newAuthFixture()
	f.seed(t, "9876543210", "correct-horse", "admin")

	wrongPass := f.post("/api/login", `{"mobile":"9876543210","password":"battery-staple"}`)
	unknownUser := f.post("/api/login", `{"mobile":"0000000000","password":"battery-staple"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	// Both failure modes produce the identical body.
	assert.Equal(t, wrongPass.Body.String(), unknownUser.Body.String())
	assert.Contains(t, wrongPass.Body.String(), "Invalid credentials")
	assert.Empty(t, wrongPass.Result().Cookies())
}

func TestCurrentUserRoundTrip(t *testing.T) {
	f := newAuthFixture()
	rec := f.post("/api/register", `{"mobile":"9876543210","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	ck := sessionCookie(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	get := httptest.NewRecorder()
	f.e.ServeHTTP(get, req)

	assert.Equal(t, http.StatusOK, get.Code)
	assert.Contains(t, get.Body.String(), `"mobile":"9876543210"`)
	assert.NotContains(t, get.Body.String(), "hunter22")
}

func TestCookieAttributesInProduction(t *testing.T) {
	h := NewAuthHandler(config.Config{Env: "production"}, nil, nil)
	ck := h.cookie("sid", time.Now().Add(time.Hour))
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	assert.Equal(t, "/", ck.Path)
}

func TestLogoutDestroysSessionAndIsIdempotent(t *testing.T) {
	f := newAuthFixture()
	rec := f.post("/api/register", `{"mobile":"9876543210","password":"hunter22"}`)
	ck := sessionCookie(t, rec)

	out := f.post("/api/logout", ``, &http.Cookie{Name: ck.Name, Value: ck.Value})
	assert.Equal(t, http.StatusOK, out.Code)
	_, ok := f.sessions.rows[ck.Value]
	assert.False(t, ok)

	cleared := sessionCookie(t, out)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))

	// The cookie is now dead for authenticated routes.
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	get := httptest.NewRecorder()
	f.e.ServeHTTP(get, req)
	assert.Equal(t, http.StatusUnauthorized, get.Code)

	// Logging out again, or with no cookie at all, still succeeds.
	again := f.post("/api/logout", ``, &http.Cookie{Name: ck.Name, Value: ck.Value})
	assert.Equal(t, http.StatusOK, again.Code)
	bare := f.post("/api/logout", ``)
	assert.Equal(t, http.StatusOK, bare.Code)
}
