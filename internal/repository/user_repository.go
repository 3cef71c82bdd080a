package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aquaflow/aquaflow/internal/database"
	"github.com/aquaflow/aquaflow/internal/model"
)

// UserRepo persists identities in the `users` table.
type UserRepo struct{ b *database.Backend }

func NewUserRepo(b *database.Backend) *UserRepo { return &UserRepo{b: b} }

const userCols = "id, mobile, password_hash, COALESCE(email,''), COALESCE(first_name,''), COALESCE(last_name,''), role, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Mobile, &u.PasswordHash, &u.Email, &u.FirstName,
		&u.LastName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts the identity and populates its ID. The password hash must
// already be derived; this layer never sees plaintext.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Mobile = strings.TrimSpace(u.Mobile)
	id, err := r.b.InsertReturningID(ctx,
		"INSERT INTO users (mobile, password_hash, email, first_name, last_name, role) VALUES (?,?,?,?,?,?)",
		u.Mobile, u.PasswordHash, u.Email, u.FirstName, u.LastName, u.Role)
	if err != nil {
		if database.IsDuplicate(err) {
			return ErrMobileExists
		}
		return err
	}
	u.ID = id
	return r.b.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM users WHERE id = ?", id,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
}

// GetByMobile fetches an identity by its login key.
func (r *UserRepo) GetByMobile(ctx context.Context, mobile string) (*model.User, error) {
	mobile = strings.TrimSpace(mobile)
	return scanUser(r.b.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE mobile = ? LIMIT 1", mobile))
}

// GetByID fetches an identity by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(r.b.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id = ? LIMIT 1", id))
}

// List returns all identities ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.b.QueryContext(ctx,
		"SELECT "+userCols+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update rewrites profile fields and role. The mobile number is immutable
// once assigned and is deliberately absent here.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	res, err := r.b.ExecContext(ctx,
		"UPDATE users SET email = ?, first_name = ?, last_name = ?, role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		u.Email, u.FirstName, u.LastName, u.Role, u.ID)
	if err != nil {
		return err
	}
	return noneAffectedIsNotFound(res)
}

// UpdatePassword replaces the credential wholesale.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.b.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		passwordHash, id)
	if err != nil {
		return err
	}
	return noneAffectedIsNotFound(res)
}

// Delete removes the identity. Sessions referencing it become dead and are
// rejected at the gate on the next request.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.b.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	return noneAffectedIsNotFound(res)
}

func noneAffectedIsNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
