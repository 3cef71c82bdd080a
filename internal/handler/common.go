// Package handler contains the HTTP handlers. Error bodies are always
// {"message": ...}; validation failures additionally carry {"errors": ...}
// with per-field detail. Internal detail is logged server-side only.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/aquaflow/aquaflow/internal/repository"
)

// dbTimeout bounds every handler-initiated database round-trip.
const dbTimeout = 5 * time.Second

// Validator adapts go-playground/validator to echo's Validator interface.
type Validator struct{ validate *validator.Validate }

func NewValidator() *Validator { return &Validator{validate: validator.New()} }

func (v *Validator) Validate(i any) error { return v.validate.Struct(i) }

// bindAndValidate decodes the JSON body into dst and validates it, writing
// the 400 response itself on failure. Callers stop when ok is false.
func bindAndValidate(c echo.Context, dst any) bool {
	if err := c.Bind(dst); err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
		return false
	}
	if err := c.Validate(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			_ = c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation failed", "errors": fields})
			return false
		}
		_ = c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
		return false
	}
	return true
}

// pathID parses the numeric :id route parameter.
func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// reqContext derives a bounded context for database work.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// repoError maps repository sentinels onto HTTP responses; anything
// unexpected is logged and surfaced as a generic 500.
func repoError(c echo.Context, err error, notFoundMsg, conflictMsg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": notFoundMsg})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"message": conflictMsg})
	case errors.Is(err, repository.ErrMobileExists):
		return c.JSON(http.StatusConflict, echo.Map{"message": "Mobile number already in use"})
	}
	slog.Error("datastore operation failed", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
}

// todayUTC returns the current UTC day truncated to midnight, the reference
// for all "today" queries.
func todayUTC() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}
