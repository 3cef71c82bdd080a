package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aquaflow/aquaflow/internal/database"
	"github.com/aquaflow/aquaflow/internal/model"
)

// RentDueRepo persists monthly rent installments.
type RentDueRepo struct{ b *database.Backend }

func NewRentDueRepo(b *database.Backend) *RentDueRepo { return &RentDueRepo{b: b} }

const rentDueCols = "id, customer_id, amount, due_date, status, paid_at, created_at, updated_at"

func scanRentDue(row interface{ Scan(...any) error }) (*model.RentDue, error) {
	var (
		d      model.RentDue
		paidAt sql.NullTime
	)
	err := row.Scan(&d.ID, &d.CustomerID, &d.Amount, &d.DueDate, &d.Status,
		&paidAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if paidAt.Valid {
		t := paidAt.Time
		d.PaidAt = &t
	}
	return &d, nil
}

// Create inserts a due and populates ID and timestamps.
func (r *RentDueRepo) Create(ctx context.Context, d *model.RentDue) error {
	id, err := r.b.InsertReturningID(ctx,
		"INSERT INTO rent_dues (customer_id, amount, due_date, status) VALUES (?,?,?,?)",
		d.CustomerID, d.Amount, dateOnly(d.DueDate), d.Status)
	if err != nil {
		return err
	}
	d.ID = id
	return r.b.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM rent_dues WHERE id = ?", id,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
}

// GetByID fetches one due.
func (r *RentDueRepo) GetByID(ctx context.Context, id int64) (*model.RentDue, error) {
	return scanRentDue(r.b.QueryRowContext(ctx,
		"SELECT "+rentDueCols+" FROM rent_dues WHERE id = ? LIMIT 1", id))
}

// List returns dues, optionally filtered by status or pinned to a single due
// date, earliest first.
func (r *RentDueRepo) List(ctx context.Context, status string, date time.Time) ([]*model.RentDue, error) {
	q := "SELECT " + rentDueCols + " FROM rent_dues"
	var args []any
	switch {
	case status != "" && !date.IsZero():
		q += " WHERE status = ? AND due_date = ?"
		args = append(args, status, dateOnly(date))
	case status != "":
		q += " WHERE status = ?"
		args = append(args, status)
	case !date.IsZero():
		q += " WHERE due_date = ?"
		args = append(args, dateOnly(date))
	}
	q += " ORDER BY due_date, id"

	rows, err := r.b.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.RentDue, 0)
	for rows.Next() {
		d, err := scanRentDue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update rewrites amount and due date on an unpaid due.
func (r *RentDueRepo) Update(ctx context.Context, d *model.RentDue) error {
	res, err := r.b.ExecContext(ctx,
		"UPDATE rent_dues SET amount = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = 'due'",
		d.Amount, dateOnly(d.DueDate), d.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish absent from already-paid for the handler.
		if _, getErr := r.GetByID(ctx, d.ID); getErr != nil {
			return getErr
		}
		return ErrConflict
	}
	return nil
}

// MarkPaid settles a due. Paying an already-paid due is a conflict, not a
// silent success; paying an absent due is not found.
func (r *RentDueRepo) MarkPaid(ctx context.Context, id int64) error {
	res, err := r.b.ExecContext(ctx,
		"UPDATE rent_dues SET status = 'paid', paid_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = 'due'",
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrConflict
	}
	return nil
}

// Delete removes a due.
func (r *RentDueRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.b.ExecContext(ctx, "DELETE FROM rent_dues WHERE id = ?", id)
	if err != nil {
		return err
	}
	return noneAffectedIsNotFound(res)
}

// Counts returns today's due count and the total unpaid amount for the
// dashboard.
func (r *RentDueRepo) Counts(ctx context.Context, today time.Time) (todayCount, unpaidAmount int64, err error) {
	err = r.b.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(CASE WHEN due_date = ? THEN 1 ELSE 0 END), 0), COALESCE(SUM(CASE WHEN status = 'due' THEN amount ELSE 0 END), 0) FROM rent_dues",
		dateOnly(today),
	).Scan(&todayCount, &unpaidAmount)
	return todayCount, unpaidAmount, err
}
