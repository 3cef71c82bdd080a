package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/aquaflow/internal/repository"
)

// DashboardHandler serves the aggregate counts the dashboard renders.
type DashboardHandler struct {
	Customers *repository.CustomerRepo
	Services  *repository.ServiceRepo
	Dues      *repository.RentDueRepo
	Items     *repository.InventoryRepo
}

func NewDashboardHandler(customers *repository.CustomerRepo, services *repository.ServiceRepo, dues *repository.RentDueRepo, items *repository.InventoryRepo) *DashboardHandler {
	return &DashboardHandler{Customers: customers, Services: services, Dues: dues, Items: items}
}

type dashboardStats struct {
	TotalCustomers  int64 `json:"totalCustomers"`
	ActiveCustomers int64 `json:"activeCustomers"`
	ServicesToday   int64 `json:"servicesToday"`
	ServicesPending int64 `json:"servicesPending"`
	DuesToday       int64 `json:"duesToday"`
	UnpaidAmount    int64 `json:"unpaidAmount"`
	LowStockItems   int64 `json:"lowStockItems"`
}

// Stats handles GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	var (
		stats dashboardStats
		today = todayUTC()
		err   error
	)
	if stats.TotalCustomers, stats.ActiveCustomers, err = h.Customers.Counts(ctx); err != nil {
		return repoError(c, err, "", "")
	}
	if stats.ServicesToday, stats.ServicesPending, err = h.Services.Counts(ctx, today); err != nil {
		return repoError(c, err, "", "")
	}
	if stats.DuesToday, stats.UnpaidAmount, err = h.Dues.Counts(ctx, today); err != nil {
		return repoError(c, err, "", "")
	}
	if stats.LowStockItems, err = h.Items.LowStockCount(ctx); err != nil {
		return repoError(c, err, "", "")
	}
	return c.JSON(http.StatusOK, stats)
}
