package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/aquaflow/aquaflow/internal/database"
	"github.com/aquaflow/aquaflow/internal/model"
)

// ServiceRepo persists scheduled service visits.
type ServiceRepo struct{ b *database.Backend }

func NewServiceRepo(b *database.Backend) *ServiceRepo { return &ServiceRepo{b: b} }

const serviceCols = "id, customer_id, service_type, scheduled_date, status, assigned_to, COALESCE(notes,''), completed_at, created_at, updated_at"

func scanService(row interface{ Scan(...any) error }) (*model.Service, error) {
	var (
		s          model.Service
		assignedTo sql.NullInt64
		completed  sql.NullTime
	)
	err := row.Scan(&s.ID, &s.CustomerID, &s.ServiceType, &s.ScheduledDate,
		&s.Status, &assignedTo, &s.Notes, &completed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if assignedTo.Valid {
		s.AssignedTo = &assignedTo.Int64
	}
	if completed.Valid {
		t := completed.Time
		s.CompletedAt = &t
	}
	return &s, nil
}

// Create inserts a service visit and populates ID and timestamps.
func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	var assigned any
	if s.AssignedTo != nil {
		assigned = *s.AssignedTo
	}
	id, err := r.b.InsertReturningID(ctx,
		"INSERT INTO services (customer_id, service_type, scheduled_date, status, assigned_to, notes) VALUES (?,?,?,?,?,?)",
		s.CustomerID, s.ServiceType, dateOnly(s.ScheduledDate), s.Status, assigned, s.Notes)
	if err != nil {
		return err
	}
	s.ID = id
	return r.b.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM services WHERE id = ?", id,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID fetches one service visit.
func (r *ServiceRepo) GetByID(ctx context.Context, id int64) (*model.Service, error) {
	return scanService(r.b.QueryRowContext(ctx,
		"SELECT "+serviceCols+" FROM services WHERE id = ? LIMIT 1", id))
}

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	Status      string
	ServiceType string
	CustomerID  int64
	Date        time.Time // date-only; matches scheduled_date exactly
}

// List returns service visits matching the filter, soonest first.
func (r *ServiceRepo) List(ctx context.Context, f ListFilter) ([]*model.Service, error) {
	q := "SELECT " + serviceCols + " FROM services"
	var (
		cond []string
		args []any
	)
	if f.Status != "" {
		cond = append(cond, "status = ?")
		args = append(args, f.Status)
	}
	if f.ServiceType != "" {
		cond = append(cond, "service_type = ?")
		args = append(args, f.ServiceType)
	}
	if f.CustomerID != 0 {
		cond = append(cond, "customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if !f.Date.IsZero() {
		cond = append(cond, "scheduled_date = ?")
		args = append(args, dateOnly(f.Date))
	}
	if len(cond) > 0 {
		q += " WHERE " + strings.Join(cond, " AND ")
	}
	q += " ORDER BY scheduled_date, id"

	rows, err := r.b.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields, stamping completed_at when the status
// is completed and clearing it otherwise.
func (r *ServiceRepo) Update(ctx context.Context, s *model.Service) error {
	var assigned any
	if s.AssignedTo != nil {
		assigned = *s.AssignedTo
	}
	var completed any
	if s.CompletedAt != nil {
		completed = s.CompletedAt.UTC()
	}
	res, err := r.b.ExecContext(ctx,
		"UPDATE services SET customer_id = ?, service_type = ?, scheduled_date = ?, status = ?, assigned_to = ?, notes = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		s.CustomerID, s.ServiceType, dateOnly(s.ScheduledDate), s.Status, assigned, s.Notes, completed, s.ID)
	if err != nil {
		return err
	}
	return noneAffectedIsNotFound(res)
}

// Delete removes a service visit.
func (r *ServiceRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.b.ExecContext(ctx, "DELETE FROM services WHERE id = ?", id)
	if err != nil {
		return err
	}
	return noneAffectedIsNotFound(res)
}

// Counts returns today's and pending visit counts for the dashboard.
func (r *ServiceRepo) Counts(ctx context.Context, today time.Time) (todayCount, pending int64, err error) {
	err = r.b.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(CASE WHEN scheduled_date = ? THEN 1 ELSE 0 END), 0), COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) FROM services",
		dateOnly(today),
	).Scan(&todayCount, &pending)
	return todayCount, pending, err
}

// dateOnly renders the UTC day of t in the YYYY-MM-DD form both dialects
// accept for DATE columns.
func dateOnly(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
