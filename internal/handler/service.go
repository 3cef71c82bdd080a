package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/aquaflow/internal/model"
	"github.com/aquaflow/aquaflow/internal/queue"
	"github.com/aquaflow/aquaflow/internal/repository"
)

// ServiceStore is the slice of service-visit storage the HTTP layer needs.
// Implemented by repository.ServiceRepo; faked in tests.
type ServiceStore interface {
	Create(ctx context.Context, s *model.Service) error
	GetByID(ctx context.Context, id int64) (*model.Service, error)
	List(ctx context.Context, f repository.ListFilter) ([]*model.Service, error)
	Update(ctx context.Context, s *model.Service) error
	Delete(ctx context.Context, id int64) error
}

// ServiceHandler implements /api/services. Completing a visit publishes a
// service.completed event; publish failures never fail the request.
type ServiceHandler struct {
	Services  ServiceStore
	Customers CustomerStore
}

func NewServiceHandler(services ServiceStore, customers CustomerStore) *ServiceHandler {
	return &ServiceHandler{Services: services, Customers: customers}
}

type serviceReq struct {
	CustomerID    int64  `json:"customerId" validate:"required,gt=0"`
	ServiceType   string `json:"serviceType" validate:"required,oneof=installation maintenance repair filter_change"`
	ScheduledDate string `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	Status        string `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	AssignedTo    *int64 `json:"assignedTo" validate:"omitempty,gt=0"`
	Notes         string `json:"notes" validate:"omitempty"`
}

// List handles GET /api/services with ?status=, ?type=, ?date= and
// ?customer_id=.
func (h *ServiceHandler) List(c echo.Context) error {
	var f repository.ListFilter
	if v := c.QueryParam("status"); v != "" {
		if !model.ValidServiceStatus(v) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid status"})
		}
		f.Status = v
	}
	if v := c.QueryParam("type"); v != "" {
		if !model.ValidServiceType(v) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid type"})
		}
		f.ServiceType = v
	}
	if v := c.QueryParam("customer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid customer_id"})
		}
		f.CustomerID = id
	}
	if v := c.QueryParam("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid date, expected YYYY-MM-DD"})
		}
		f.Date = d
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	items, err := h.Services.List(ctx, f)
	if err != nil {
		return repoError(c, err, "Service not found", "")
	}
	return c.JSON(http.StatusOK, items)
}

// Today handles GET /api/services/today: visits scheduled for the current
// UTC day.
func (h *ServiceHandler) Today(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	items, err := h.Services.List(ctx, repository.ListFilter{Date: todayUTC()})
	if err != nil {
		return repoError(c, err, "Service not found", "")
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/services/:id.
func (h *ServiceHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	svc, err := h.Services.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "Service not found", "")
	}
	return c.JSON(http.StatusOK, svc)
}

// Create handles POST /api/services.
func (h *ServiceHandler) Create(c echo.Context) error {
	var req serviceReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	scheduled, _ := time.Parse("2006-01-02", req.ScheduledDate)
	status := req.Status
	if status == "" {
		status = model.ServicePending
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	// The referenced customer must exist; a dangling visit is useless.
	if _, err := h.Customers.GetByID(ctx, req.CustomerID); err != nil {
		return repoError(c, err, "Customer not found", "")
	}

	svc := &model.Service{
		CustomerID:    req.CustomerID,
		ServiceType:   req.ServiceType,
		ScheduledDate: scheduled,
		Status:        status,
		AssignedTo:    req.AssignedTo,
		Notes:         req.Notes,
	}
	if err := h.Services.Create(ctx, svc); err != nil {
		return repoError(c, err, "Service not found", "")
	}
	return c.JSON(http.StatusCreated, svc)
}

// Update handles PUT /api/services/:id. A transition into completed stamps
// completed_at and publishes the domain event.
func (h *ServiceHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	var req serviceReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	scheduled, _ := time.Parse("2006-01-02", req.ScheduledDate)

	ctx, cancel := reqContext(c)
	defer cancel()

	prev, err := h.Services.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "Service not found", "")
	}

	// Reassigning the visit to another customer needs the same existence
	// check Create does.
	if req.CustomerID != prev.CustomerID {
		if _, err := h.Customers.GetByID(ctx, req.CustomerID); err != nil {
			return repoError(c, err, "Customer not found", "")
		}
	}

	svc := &model.Service{
		ID:            id,
		CustomerID:    req.CustomerID,
		ServiceType:   req.ServiceType,
		ScheduledDate: scheduled,
		Status:        req.Status,
		AssignedTo:    req.AssignedTo,
		Notes:         req.Notes,
		CompletedAt:   prev.CompletedAt,
	}
	if svc.Status == "" {
		svc.Status = prev.Status
	}

	completing := svc.Status == model.ServiceCompleted && prev.Status != model.ServiceCompleted
	if completing {
		now := time.Now().UTC()
		svc.CompletedAt = &now
	} else if svc.Status != model.ServiceCompleted {
		svc.CompletedAt = nil
	}

	if err := h.Services.Update(ctx, svc); err != nil {
		return repoError(c, err, "Service not found", "")
	}

	if completing {
		h.publishCompleted(c, svc)
	}

	updated, err := h.Services.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "Service not found", "")
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/services/:id.
func (h *ServiceHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Services.Delete(ctx, id); err != nil {
		return repoError(c, err, "Service not found", "")
	}
	return c.NoContent(http.StatusNoContent)
}

// publishCompleted emits the service.completed event, fire-and-forget.
func (h *ServiceHandler) publishCompleted(c echo.Context, svc *model.Service) {
	ctx, cancel := reqContext(c)
	defer cancel()

	customerName := ""
	if cust, err := h.Customers.GetByID(ctx, svc.CustomerID); err == nil {
		customerName = cust.Name
	}
	var technician int64
	if svc.AssignedTo != nil {
		technician = *svc.AssignedTo
	}
	ev := queue.ServiceCompletedEvent{
		ServiceID:    svc.ID,
		CustomerID:   svc.CustomerID,
		CustomerName: customerName,
		ServiceType:  svc.ServiceType,
		TechnicianID: technician,
		CompletedAt:  svc.CompletedAt.UTC().Format(time.RFC3339),
	}
	if err := queue.PublishServiceCompleted(ctx, ev); err != nil {
		slog.Warn("service.completed publish failed", "service_id", svc.ID, "error", err)
	}
}
