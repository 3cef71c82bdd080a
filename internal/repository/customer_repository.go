package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aquaflow/aquaflow/internal/database"
	"github.com/aquaflow/aquaflow/internal/model"
)

// CustomerRepo persists customer records.
type CustomerRepo struct{ b *database.Backend }

func NewCustomerRepo(b *database.Backend) *CustomerRepo { return &CustomerRepo{b: b} }

const customerCols = "id, name, mobile, COALESCE(address,''), COALESCE(purifier_model,''), monthly_rent, status, COALESCE(notes,''), created_at, updated_at"

func scanCustomer(row interface{ Scan(...any) error }) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Mobile, &c.Address, &c.PurifierModel,
		&c.MonthlyRent, &c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a customer and populates ID and timestamps.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	id, err := r.b.InsertReturningID(ctx,
		"INSERT INTO customers (name, mobile, address, purifier_model, monthly_rent, status, notes) VALUES (?,?,?,?,?,?,?)",
		c.Name, c.Mobile, c.Address, c.PurifierModel, c.MonthlyRent, c.Status, c.Notes)
	if err != nil {
		if database.IsDuplicate(err) {
			return ErrMobileExists
		}
		return err
	}
	c.ID = id
	return r.b.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM customers WHERE id = ?", id,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

// GetByID fetches one customer.
func (r *CustomerRepo) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	return scanCustomer(r.b.QueryRowContext(ctx,
		"SELECT "+customerCols+" FROM customers WHERE id = ? LIMIT 1", id))
}

// List returns customers, optionally filtered by status and by a name/mobile
// substring search.
func (r *CustomerRepo) List(ctx context.Context, status, search string) ([]*model.Customer, error) {
	q := "SELECT " + customerCols + " FROM customers"
	var (
		cond []string
		args []any
	)
	if status != "" {
		cond = append(cond, "status = ?")
		args = append(args, status)
	}
	if search != "" {
		cond = append(cond, "(name LIKE ? OR mobile LIKE ?)")
		like := "%" + search + "%"
		args = append(args, like, like)
	}
	if len(cond) > 0 {
		q += " WHERE " + strings.Join(cond, " AND ")
	}
	q += " ORDER BY id"

	rows, err := r.b.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update rewrites all mutable fields.
func (r *CustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	res, err := r.b.ExecContext(ctx,
		"UPDATE customers SET name = ?, mobile = ?, address = ?, purifier_model = ?, monthly_rent = ?, status = ?, notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		c.Name, c.Mobile, c.Address, c.PurifierModel, c.MonthlyRent, c.Status, c.Notes, c.ID)
	if err != nil {
		if database.IsDuplicate(err) {
			return ErrMobileExists
		}
		return err
	}
	return noneAffectedIsNotFound(res)
}

// Delete removes a customer.
func (r *CustomerRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.b.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		return err
	}
	return noneAffectedIsNotFound(res)
}

// Counts returns total and active customer counts for the dashboard.
func (r *CustomerRepo) Counts(ctx context.Context) (total, active int64, err error) {
	err = r.b.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) FROM customers",
	).Scan(&total, &active)
	return total, active, err
}
