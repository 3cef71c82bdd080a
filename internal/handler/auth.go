package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/aquaflow/internal/auth"
	"github.com/aquaflow/aquaflow/internal/config"
	"github.com/aquaflow/aquaflow/internal/middleware"
	"github.com/aquaflow/aquaflow/internal/model"
	"github.com/aquaflow/aquaflow/internal/repository"
	"github.com/aquaflow/aquaflow/internal/utils"
)

// AuthHandler implements login, registration, logout and the current-user
// lookup on top of the identity and session stores.
type AuthHandler struct {
	Cfg      config.Config
	Users    auth.IdentityStore
	Sessions auth.SessionStore
}

func NewAuthHandler(cfg config.Config, users auth.IdentityStore, sessions auth.SessionStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Sessions: sessions}
}

type registerReq struct {
	Mobile    string `json:"mobile" validate:"required,min=10,max=15"`
	Password  string `json:"password" validate:"required,min=6"`
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
	Role      string `json:"role" validate:"omitempty"`
}

type loginReq struct {
	Mobile   string `json:"mobile" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// dummyCredential is verified against when the mobile is unknown so that the
// unknown-user and wrong-password paths cost the same.
var dummyCredential string

func init() {
	cred, err := utils.HashPassword("aquaflow-timing-pad")
	if err != nil {
		panic("auth: failed to derive dummy credential: " + err.Error())
	}
	dummyCredential = cred
}

// Register handles POST /api/register: creates an Identity and immediately
// establishes a session for it. A duplicate mobile makes no state change.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if !bindAndValidate(c, &req) {
		return nil
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		slog.Error("credential derivation failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	user := &model.User{
		Mobile:       strings.TrimSpace(req.Mobile),
		PasswordHash: hash,
		Email:        strings.TrimSpace(req.Email),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         string(auth.NormalizeRole(req.Role)),
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrMobileExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Mobile number already registered"})
		}
		slog.Error("register failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	if err := h.establishSession(c, user.ID); err != nil {
		slog.Error("session establish failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusCreated, user)
}

// Login handles POST /api/login. Unknown mobile and wrong password are
// indistinguishable to the client: both yield the same 401 and comparable
// response time.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if !bindAndValidate(c, &req) {
		return nil
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	user, err := h.Users.GetByMobile(ctx, strings.TrimSpace(req.Mobile))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		slog.Error("login lookup failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	stored := dummyCredential
	if user != nil {
		stored = user.PasswordHash
	}
	match, err := utils.VerifyPassword(stored, req.Password)
	if err != nil {
		slog.Error("credential verification failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if user == nil || !match {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials"})
	}

	if err := h.establishSession(c, user.ID); err != nil {
		slog.Error("session establish failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, user)
}

// Logout handles POST /api/logout: destroys the session server-side and
// expires the cookie. Idempotent — a second call without a live session is
// still a 200.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		ctx, cancel := reqContext(c)
		defer cancel()
		if err := h.Sessions.Delete(ctx, cookie.Value); err != nil {
			slog.Error("logout failed", "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}
	}
	c.SetCookie(h.cookie("", time.Unix(0, 0)))
	return c.NoContent(http.StatusOK)
}

// CurrentUser handles GET /api/user behind the gate: returns the rehydrated
// identity's public projection.
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	user := middleware.IdentityFrom(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	return c.JSON(http.StatusOK, user)
}

// establishSession mints an opaque session id, persists the session row, and
// sets the cookie. No cookie is written unless the row exists.
func (h *AuthHandler) establishSession(c echo.Context, userID int64) error {
	sid, err := utils.NewSessionID()
	if err != nil {
		return err
	}
	expires := time.Now().UTC().Add(auth.SessionTTL)

	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Sessions.Create(ctx, &model.Session{SID: sid, UserID: userID, ExpiresAt: expires}); err != nil {
		return err
	}
	c.SetCookie(h.cookie(sid, expires))
	return nil
}

// cookie builds the session cookie: HTTP-only always, Secure and SameSite
// Strict in production, Lax elsewhere so local non-TLS development works.
func (h *AuthHandler) cookie(value string, expires time.Time) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if h.Cfg.IsProduction() {
		sameSite = http.SameSiteStrictMode
	}
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.Cfg.IsProduction(),
		SameSite: sameSite,
	}
}
