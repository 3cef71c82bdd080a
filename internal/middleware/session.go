// Package middleware provides the per-request authentication gate, the
// role-authorization filter, and the optional redis-backed rate limiting and
// response caching.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/aquaflow/internal/auth"
	"github.com/aquaflow/aquaflow/internal/model"
	"github.com/aquaflow/aquaflow/internal/repository"
)

// Context keys populated by the session gate.
const (
	ContextIdentity = "identity" // *model.User
	ContextRole     = "role"     // auth.Role
	ContextSID      = "sid"      // session id string
)

// SessionAuth returns the session authentication gate. Each request
// rehydrates the identity from storage: cookie -> unexpired session row ->
// user by id. A missing cookie, vanished session, or vanished identity
// demotes the request to 401; only datastore failures surface as 500. The
// session expiry is re-stamped on every request that passes.
func SessionAuth(sessions auth.SessionStore, users auth.IdentityStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(auth.CookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
			}
			ctx := c.Request().Context()

			sess, err := sessions.Get(ctx, cookie.Value)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
				}
				slog.Error("session lookup failed", "error", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
			}

			user, err := users.GetByID(ctx, sess.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					// Identity deleted since login: the session is dead.
					_ = sessions.Delete(ctx, sess.SID)
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
				}
				slog.Error("identity rehydration failed", "error", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
			}

			// Sliding expiry. A failed touch is not fatal to the request.
			if err := sessions.Touch(ctx, sess.SID, time.Now().UTC().Add(auth.SessionTTL)); err != nil {
				slog.Warn("session touch failed", "error", err)
			}

			c.Set(ContextIdentity, user)
			c.Set(ContextRole, auth.Role(user.Role))
			c.Set(ContextSID, sess.SID)
			return next(c)
		}
	}
}

// IdentityFrom returns the authenticated identity placed in context by
// SessionAuth, or nil when the gate did not run.
func IdentityFrom(c echo.Context) *model.User {
	u, _ := c.Get(ContextIdentity).(*model.User)
	return u
}
