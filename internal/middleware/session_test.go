package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaflow/aquaflow/internal/auth"
	"github.com/aquaflow/aquaflow/internal/model"
	"github.com/aquaflow/aquaflow/internal/repository"
)

type fakeSessions struct {
	rows    map[string]model.Session
	touched map[string]time.Time
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{rows: map[string]model.Session{}, touched: map[string]time.Time{}}
}

func (f *fakeSessions) Create(_ context.Context, s *model.Session) error {
	f.rows[s.SID] = *s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, sid string) (*model.Session, error) {
	s, ok := f.rows[sid]
	if !ok || s.Expired(time.Now().UTC()) {
		return nil, repository.ErrNotFound
	}
	out := s
	return &out, nil
}

func (f *fakeSessions) Touch(_ context.Context, sid string, expiresAt time.Time) error {
	if s, ok := f.rows[sid]; ok {
		s.ExpiresAt = expiresAt
		f.rows[sid] = s
	}
	f.touched[sid] = expiresAt
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, sid string) error {
	delete(f.rows, sid)
	return nil
}

type fakeIdentities struct {
	byID map[int64]model.User
}

func (f *fakeIdentities) GetByMobile(_ context.Context, mobile string) (*model.User, error) {
	for _, u := range f.byID {
		if u.Mobile == mobile {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeIdentities) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (f *fakeIdentities) Create(_ context.Context, u *model.User) error {
	u.ID = int64(len(f.byID) + 1)
	f.byID[u.ID] = *u
	return nil
}

func gatedEcho(sessions auth.SessionStore, users auth.IdentityStore, extra ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	mws := append([]echo.MiddlewareFunc{SessionAuth(sessions, users)}, extra...)
	e.GET("/api/probe", func(c echo.Context) error {
		u := IdentityFrom(c)
		if u == nil { // never reached when the gate rejects
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, u)
	}, mws...)
	return e
}

func doProbe(e *echo.Echo, sid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/probe", nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: sid})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSessionAuthHappyPath(t *testing.T) {
	sessions := newFakeSessions()
	users := &fakeIdentities{byID: map[int64]model.User{
		7: {ID: 7, Mobile: "9876543210", Role: "manager"},
	}}
	sessions.rows["sid-1"] = model.Session{
		SID: "sid-1", UserID: 7, ExpiresAt: time.Now().UTC().Add(time.Hour),
	}

	e := gatedEcho(sessions, users)
	rec := doProbe(e, "sid-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mobile":"9876543210"`)

	// Expiry was re-stamped to roughly a week out.
	touched, ok := sessions.touched["sid-1"]
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().UTC().Add(auth.SessionTTL), touched, time.Minute)
}

func TestSessionAuthRejectsMissingCookie(t *testing.T) {
	e := gatedEcho(newFakeSessions(), &fakeIdentities{byID: map[int64]model.User{}})
	rec := doProbe(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized")
}

func TestSessionAuthRejectsUnknownSession(t *testing.T) {
	e := gatedEcho(newFakeSessions(), &fakeIdentities{byID: map[int64]model.User{}})
	rec := doProbe(e, "never-issued")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthRejectsExpiredSession(t *testing.T) {
	sessions := newFakeSessions()
	users := &fakeIdentities{byID: map[int64]model.User{1: {ID: 1, Role: "admin"}}}
	sessions.rows["stale"] = model.Session{
		SID: "stale", UserID: 1, ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}

	rec := doProbe(gatedEcho(sessions, users), "stale")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthDropsSessionOfDeletedIdentity(t *testing.T) {
	sessions := newFakeSessions()
	users := &fakeIdentities{byID: map[int64]model.User{}} // user is gone
	sessions.rows["orphan"] = model.Session{
		SID: "orphan", UserID: 42, ExpiresAt: time.Now().UTC().Add(time.Hour),
	}

	rec := doProbe(gatedEcho(sessions, users), "orphan")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, exists := sessions.rows["orphan"]
	assert.False(t, exists, "orphaned session should be deleted")
}

func seededGate(t *testing.T, role string, extra ...echo.MiddlewareFunc) *echo.Echo {
	t.Helper()
	sessions := newFakeSessions()
	users := &fakeIdentities{byID: map[int64]model.User{
		1: {ID: 1, Mobile: "9000000001", Role: role},
	}}
	sessions.rows["sid"] = model.Session{
		SID: "sid", UserID: 1, ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	return gatedEcho(sessions, users, extra...)
}

func TestRequireCapability(t *testing.T) {
	cases := []struct {
		role string
		cap  auth.Capability
		want int
	}{
		{"admin", auth.CapUsersManage, http.StatusOK},
		{"manager", auth.CapCustomersWrite, http.StatusOK},
		{"manager", auth.CapInventory, http.StatusForbidden},
		{"technician", auth.CapServicesRead, http.StatusOK},
		{"technician", auth.CapServicesWrite, http.StatusForbidden},
		{"technician", auth.CapRentDues, http.StatusForbidden},
		{"technician", auth.CapPurchases, http.StatusForbidden},
		{"technician", auth.CapInventory, http.StatusOK},
		{"manager", auth.CapUsersManage, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.role+"/"+string(tc.cap), func(t *testing.T) {
			e := seededGate(t, tc.role, RequireCapability(tc.cap))
			rec := doProbe(e, "sid")
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusForbidden {
				assert.Contains(t, rec.Body.String(), "not permitted")
			}
		})
	}
}

func TestRequireCapabilityWithoutGateIs401(t *testing.T) {
	e := echo.New()
	e.GET("/naked", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireCapability(auth.CapCustomersRead))

	req := httptest.NewRequest(http.MethodGet, "/naked", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
