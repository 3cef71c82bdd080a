package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aquaflow/aquaflow/internal/database"
	"github.com/aquaflow/aquaflow/internal/model"
)

// InventoryRepo persists stocked parts and consumables.
type InventoryRepo struct{ b *database.Backend }

func NewInventoryRepo(b *database.Backend) *InventoryRepo { return &InventoryRepo{b: b} }

const inventoryCols = "id, name, COALESCE(category,''), quantity, unit, reorder_level, created_at, updated_at"

func scanItem(row interface{ Scan(...any) error }) (*model.InventoryItem, error) {
	var it model.InventoryItem
	err := row.Scan(&it.ID, &it.Name, &it.Category, &it.Quantity, &it.Unit,
		&it.ReorderLevel, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// Create inserts an item and populates ID and timestamps. Item names are
// unique; a duplicate is a conflict.
func (r *InventoryRepo) Create(ctx context.Context, it *model.InventoryItem) error {
	id, err := r.b.InsertReturningID(ctx,
		"INSERT INTO inventory_items (name, category, quantity, unit, reorder_level) VALUES (?,?,?,?,?)",
		it.Name, it.Category, it.Quantity, it.Unit, it.ReorderLevel)
	if err != nil {
		if database.IsDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	it.ID = id
	return r.b.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM inventory_items WHERE id = ?", id,
	).Scan(&it.CreatedAt, &it.UpdatedAt)
}

// GetByID fetches one item.
func (r *InventoryRepo) GetByID(ctx context.Context, id int64) (*model.InventoryItem, error) {
	return scanItem(r.b.QueryRowContext(ctx,
		"SELECT "+inventoryCols+" FROM inventory_items WHERE id = ? LIMIT 1", id))
}

// List returns items, restricted to low stock (quantity at or below the
// reorder level) when lowOnly is set.
func (r *InventoryRepo) List(ctx context.Context, lowOnly bool) ([]*model.InventoryItem, error) {
	q := "SELECT " + inventoryCols + " FROM inventory_items"
	if lowOnly {
		q += " WHERE quantity <= reorder_level"
	}
	q += " ORDER BY name"

	rows, err := r.b.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.InventoryItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Update rewrites descriptive fields. Quantity moves only through Adjust so
// concurrent stock movements cannot clobber each other.
func (r *InventoryRepo) Update(ctx context.Context, it *model.InventoryItem) error {
	res, err := r.b.ExecContext(ctx,
		"UPDATE inventory_items SET name = ?, category = ?, unit = ?, reorder_level = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		it.Name, it.Category, it.Unit, it.ReorderLevel, it.ID)
	if err != nil {
		if database.IsDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	return noneAffectedIsNotFound(res)
}

// Adjust applies a stock delta atomically. The guard in the WHERE clause
// rejects any draw that would take quantity below zero.
func (r *InventoryRepo) Adjust(ctx context.Context, id, delta int64) (*model.InventoryItem, error) {
	res, err := r.b.ExecContext(ctx,
		"UPDATE inventory_items SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND quantity + ? >= 0",
		delta, id, delta)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrConflict
	}
	return r.GetByID(ctx, id)
}

// Delete removes an item.
func (r *InventoryRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.b.ExecContext(ctx, "DELETE FROM inventory_items WHERE id = ?", id)
	if err != nil {
		return err
	}
	return noneAffectedIsNotFound(res)
}

// LowStockCount returns the number of items at or below their reorder level.
func (r *InventoryRepo) LowStockCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.b.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM inventory_items WHERE quantity <= reorder_level").Scan(&n)
	return n, err
}
