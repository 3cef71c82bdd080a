package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/aquaflow/internal/auth"
	"github.com/aquaflow/aquaflow/internal/middleware"
	"github.com/aquaflow/aquaflow/internal/model"
	"github.com/aquaflow/aquaflow/internal/repository"
	"github.com/aquaflow/aquaflow/internal/utils"
)

// UserHandler implements admin user management at /api/users.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(users *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: users}
}

type createUserReq struct {
	Mobile    string `json:"mobile" validate:"required,min=10,max=15"`
	Password  string `json:"password" validate:"required,min=6"`
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
	Role      string `json:"role" validate:"omitempty,oneof=admin manager technician"`
}

type updateUserReq struct {
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
	Role      string `json:"role" validate:"omitempty,oneof=admin manager technician"`
	Password  string `json:"password" validate:"omitempty,min=6"`
}

// List handles GET /api/users.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return repoError(c, err, "User not found", "")
	}
	return c.JSON(http.StatusOK, users)
}

// Create handles POST /api/users: an admin provisioning an account directly.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		slog.Error("credential derivation failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	user := &model.User{
		Mobile:       strings.TrimSpace(req.Mobile),
		PasswordHash: hash,
		Email:        strings.TrimSpace(req.Email),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         string(auth.NormalizeRole(req.Role)),
	}
	if err := h.Users.Create(ctx, user); err != nil {
		return repoError(c, err, "User not found", "")
	}
	return c.JSON(http.StatusCreated, user)
}

// Update handles PUT /api/users/:id: profile, role, and optional password
// replacement. The mobile login key never changes.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	var req updateUserReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "User not found", "")
	}

	user.Email = strings.TrimSpace(req.Email)
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	if req.Role != "" {
		user.Role = string(auth.NormalizeRole(req.Role))
	}
	if err := h.Users.Update(ctx, user); err != nil {
		return repoError(c, err, "User not found", "")
	}

	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			slog.Error("credential derivation failed", "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}
		if err := h.Users.UpdatePassword(ctx, id, hash); err != nil {
			return repoError(c, err, "User not found", "")
		}
	}

	updated, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "User not found", "")
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/users/:id. Self-deletion is rejected: an admin
// cannot remove the account they are acting as.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	if caller := middleware.IdentityFrom(c); caller != nil && caller.ID == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Cannot delete your own account"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		return repoError(c, err, "User not found", "")
	}
	return c.NoContent(http.StatusNoContent)
}
