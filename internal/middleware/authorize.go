package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/aquaflow/internal/auth"
)

// RequireCapability enforces the declarative policy table for one capability.
// It must run after SessionAuth. The check is a pure predicate re-evaluated
// on every request; nothing is cached, so an admin changing a user's role
// takes effect on that user's very next request.
func RequireCapability(cap auth.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextRole).(auth.Role)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
			}
			if !auth.Allowed(role, cap) {
				return c.JSON(http.StatusForbidden, echo.Map{
					"message": fmt.Sprintf("%s role is not permitted to perform this action", role),
				})
			}
			return next(c)
		}
	}
}
