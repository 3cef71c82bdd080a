package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/aquaflow/internal/model"
)

// RentDueStore is the slice of rent-due storage the HTTP layer needs.
// Implemented by repository.RentDueRepo; faked in tests.
type RentDueStore interface {
	Create(ctx context.Context, d *model.RentDue) error
	GetByID(ctx context.Context, id int64) (*model.RentDue, error)
	List(ctx context.Context, status string, date time.Time) ([]*model.RentDue, error)
	Update(ctx context.Context, d *model.RentDue) error
	MarkPaid(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// RentDueHandler implements /api/rent-dues.
type RentDueHandler struct {
	Dues      RentDueStore
	Customers CustomerStore
}

func NewRentDueHandler(dues RentDueStore, customers CustomerStore) *RentDueHandler {
	return &RentDueHandler{Dues: dues, Customers: customers}
}

type rentDueReq struct {
	CustomerID int64  `json:"customerId" validate:"required,gt=0"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	DueDate    string `json:"dueDate" validate:"required,datetime=2006-01-02"`
}

// List handles GET /api/rent-dues with optional ?status=.
func (h *RentDueHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && status != model.RentStatusDue && status != model.RentStatusPaid {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid status"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := h.Dues.List(ctx, status, time.Time{})
	if err != nil {
		return repoError(c, err, "Rent due not found", "")
	}
	return c.JSON(http.StatusOK, items)
}

// Today handles GET /api/rent-dues/today: dues falling on the current UTC day.
func (h *RentDueHandler) Today(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := h.Dues.List(ctx, "", todayUTC())
	if err != nil {
		return repoError(c, err, "Rent due not found", "")
	}
	return c.JSON(http.StatusOK, items)
}

// Create handles POST /api/rent-dues.
func (h *RentDueHandler) Create(c echo.Context) error {
	var req rentDueReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	dueDate, _ := time.Parse("2006-01-02", req.DueDate)

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Customers.GetByID(ctx, req.CustomerID); err != nil {
		return repoError(c, err, "Customer not found", "")
	}

	due := &model.RentDue{
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		DueDate:    dueDate,
		Status:     model.RentStatusDue,
	}
	if err := h.Dues.Create(ctx, due); err != nil {
		return repoError(c, err, "Rent due not found", "")
	}
	return c.JSON(http.StatusCreated, due)
}

// Update handles PUT /api/rent-dues/:id: amount/date changes on unpaid dues.
func (h *RentDueHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	var req rentDueReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	dueDate, _ := time.Parse("2006-01-02", req.DueDate)

	ctx, cancel := reqContext(c)
	defer cancel()

	due := &model.RentDue{ID: id, Amount: req.Amount, DueDate: dueDate}
	if err := h.Dues.Update(ctx, due); err != nil {
		return repoError(c, err, "Rent due not found", "Rent due is already settled")
	}
	updated, err := h.Dues.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "Rent due not found", "")
	}
	return c.JSON(http.StatusOK, updated)
}

// Pay handles POST /api/rent-dues/:id/pay. Settling an already-paid due is a
// 409, not a silent success.
func (h *RentDueHandler) Pay(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Dues.MarkPaid(ctx, id); err != nil {
		return repoError(c, err, "Rent due not found", "Rent due is already settled")
	}
	paid, err := h.Dues.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "Rent due not found", "")
	}
	return c.JSON(http.StatusOK, paid)
}

// Delete handles DELETE /api/rent-dues/:id.
func (h *RentDueHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Dues.Delete(ctx, id); err != nil {
		return repoError(c, err, "Rent due not found", "")
	}
	return c.NoContent(http.StatusNoContent)
}
