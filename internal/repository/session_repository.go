package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aquaflow/aquaflow/internal/database"
	"github.com/aquaflow/aquaflow/internal/model"
)

// SessionRepo persists server-side sessions in the `sessions` table. The
// table is independent of the business schema; concurrent logins for one
// identity simply create independent rows.
type SessionRepo struct{ b *database.Backend }

func NewSessionRepo(b *database.Backend) *SessionRepo { return &SessionRepo{b: b} }

// Create inserts a new session row.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	_, err := r.b.ExecContext(ctx,
		"INSERT INTO sessions (sid, user_id, expires_at) VALUES (?,?,?)",
		s.SID, s.UserID, s.ExpiresAt.UTC())
	return err
}

// Get loads a session by id. Expired rows are treated as absent even before
// the purge catches them.
func (r *SessionRepo) Get(ctx context.Context, sid string) (*model.Session, error) {
	var s model.Session
	err := r.b.QueryRowContext(ctx,
		"SELECT sid, user_id, expires_at FROM sessions WHERE sid = ? LIMIT 1", sid,
	).Scan(&s.SID, &s.UserID, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.Expired(time.Now().UTC()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Touch re-stamps the expiry. A vanished row is not an error; the next Get
// will miss and the gate demotes the request.
func (r *SessionRepo) Touch(ctx context.Context, sid string, expiresAt time.Time) error {
	_, err := r.b.ExecContext(ctx,
		"UPDATE sessions SET expires_at = ? WHERE sid = ?", expiresAt.UTC(), sid)
	return err
}

// Delete destroys a session. Deleting an absent session is a no-op so that
// logout stays idempotent.
func (r *SessionRepo) Delete(ctx context.Context, sid string) error {
	_, err := r.b.ExecContext(ctx, "DELETE FROM sessions WHERE sid = ?", sid)
	return err
}

// PurgeExpired removes stale rows. Run periodically from cmd/server; the gate
// never relies on it for correctness.
func (r *SessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.b.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
