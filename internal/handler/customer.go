package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/aquaflow/internal/model"
)

// CustomerStore is the slice of customer storage the HTTP layer needs.
// Implemented by repository.CustomerRepo; faked in tests.
type CustomerStore interface {
	Create(ctx context.Context, c *model.Customer) error
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	List(ctx context.Context, status, search string) ([]*model.Customer, error)
	Update(ctx context.Context, c *model.Customer) error
	Delete(ctx context.Context, id int64) error
}

// CustomerHandler implements /api/customers.
type CustomerHandler struct {
	Customers CustomerStore
}

func NewCustomerHandler(customers CustomerStore) *CustomerHandler {
	return &CustomerHandler{Customers: customers}
}

type customerReq struct {
	Name          string `json:"name" validate:"required,max=255"`
	Mobile        string `json:"mobile" validate:"required,min=10,max=15"`
	Address       string `json:"address" validate:"omitempty"`
	PurifierModel string `json:"purifierModel" validate:"omitempty,max=100"`
	MonthlyRent   int64  `json:"monthlyRent" validate:"gte=0"`
	Status        string `json:"status" validate:"omitempty,oneof=active inactive"`
	Notes         string `json:"notes" validate:"omitempty"`
}

func (req *customerReq) toModel() *model.Customer {
	status := req.Status
	if status == "" {
		status = model.CustomerActive
	}
	return &model.Customer{
		Name:          strings.TrimSpace(req.Name),
		Mobile:        strings.TrimSpace(req.Mobile),
		Address:       strings.TrimSpace(req.Address),
		PurifierModel: strings.TrimSpace(req.PurifierModel),
		MonthlyRent:   req.MonthlyRent,
		Status:        status,
		Notes:         req.Notes,
	}
}

// List handles GET /api/customers with optional ?status= and ?q= filters.
func (h *CustomerHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && status != model.CustomerActive && status != model.CustomerInactive {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid status"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := h.Customers.List(ctx, status, c.QueryParam("q"))
	if err != nil {
		return repoError(c, err, "Customer not found", "")
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/customers/:id.
func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "Customer not found", "")
	}
	return c.JSON(http.StatusOK, cust)
}

// Create handles POST /api/customers.
func (h *CustomerHandler) Create(c echo.Context) error {
	var req customerReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	cust := req.toModel()
	if err := h.Customers.Create(ctx, cust); err != nil {
		return repoError(c, err, "Customer not found", "")
	}
	return c.JSON(http.StatusCreated, cust)
}

// Update handles PUT /api/customers/:id.
func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	var req customerReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	cust := req.toModel()
	cust.ID = id
	if err := h.Customers.Update(ctx, cust); err != nil {
		return repoError(c, err, "Customer not found", "")
	}
	updated, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "Customer not found", "")
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/customers/:id.
func (h *CustomerHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Customers.Delete(ctx, id); err != nil {
		return repoError(c, err, "Customer not found", "")
	}
	return c.NoContent(http.StatusNoContent)
}
