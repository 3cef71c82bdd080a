package auth

import (
	"context"
	"time"

	"github.com/aquaflow/aquaflow/internal/model"
)

// SessionTTL is the fixed session lifetime. Expiry is re-stamped on each
// authenticated request, so a week of inactivity ends the session.
const SessionTTL = 7 * 24 * time.Hour

// CookieName is the session cookie set on login and cleared on logout.
const CookieName = "aquaflow_session"

// IdentityStore is the slice of user storage the authentication flows need.
// Implemented by repository.UserRepo; faked in tests.
type IdentityStore interface {
	GetByMobile(ctx context.Context, mobile string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// SessionStore persists server-side sessions keyed by opaque id. Get must
// treat expired rows as absent. Implemented by repository.SessionRepo.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, sid string) (*model.Session, error)
	Touch(ctx context.Context, sid string, expiresAt time.Time) error
	Delete(ctx context.Context, sid string) error
}
