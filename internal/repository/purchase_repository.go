package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aquaflow/aquaflow/internal/database"
	"github.com/aquaflow/aquaflow/internal/model"
)

// PurchaseRepo persists one-off sales.
type PurchaseRepo struct{ b *database.Backend }

func NewPurchaseRepo(b *database.Backend) *PurchaseRepo { return &PurchaseRepo{b: b} }

const purchaseCols = "id, customer_name, item, amount, purchase_date, paid, created_at, updated_at"

func scanPurchase(row interface{ Scan(...any) error }) (*model.Purchase, error) {
	var p model.Purchase
	err := row.Scan(&p.ID, &p.CustomerName, &p.Item, &p.Amount, &p.PurchaseDate,
		&p.Paid, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a purchase and populates ID and timestamps.
func (r *PurchaseRepo) Create(ctx context.Context, p *model.Purchase) error {
	id, err := r.b.InsertReturningID(ctx,
		"INSERT INTO purchases (customer_name, item, amount, purchase_date, paid) VALUES (?,?,?,?,?)",
		p.CustomerName, p.Item, p.Amount, dateOnly(p.PurchaseDate), p.Paid)
	if err != nil {
		return err
	}
	p.ID = id
	return r.b.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM purchases WHERE id = ?", id,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// GetByID fetches one purchase.
func (r *PurchaseRepo) GetByID(ctx context.Context, id int64) (*model.Purchase, error) {
	return scanPurchase(r.b.QueryRowContext(ctx,
		"SELECT "+purchaseCols+" FROM purchases WHERE id = ? LIMIT 1", id))
}

// List returns all purchases, most recent purchase date first.
func (r *PurchaseRepo) List(ctx context.Context) ([]*model.Purchase, error) {
	rows, err := r.b.QueryContext(ctx,
		"SELECT "+purchaseCols+" FROM purchases ORDER BY purchase_date DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update rewrites all mutable fields.
func (r *PurchaseRepo) Update(ctx context.Context, p *model.Purchase) error {
	res, err := r.b.ExecContext(ctx,
		"UPDATE purchases SET customer_name = ?, item = ?, amount = ?, purchase_date = ?, paid = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		p.CustomerName, p.Item, p.Amount, dateOnly(p.PurchaseDate), p.Paid, p.ID)
	if err != nil {
		return err
	}
	return noneAffectedIsNotFound(res)
}

// Delete removes a purchase.
func (r *PurchaseRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.b.ExecContext(ctx, "DELETE FROM purchases WHERE id = ?", id)
	if err != nil {
		return err
	}
	return noneAffectedIsNotFound(res)
}
