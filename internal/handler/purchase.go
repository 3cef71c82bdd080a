package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/aquaflow/internal/model"
	"github.com/aquaflow/aquaflow/internal/repository"
)

// PurchaseHandler implements /api/purchases.
type PurchaseHandler struct {
	Purchases *repository.PurchaseRepo
}

func NewPurchaseHandler(purchases *repository.PurchaseRepo) *PurchaseHandler {
	return &PurchaseHandler{Purchases: purchases}
}

type purchaseReq struct {
	CustomerName string `json:"customerName" validate:"required,max=255"`
	Item         string `json:"item" validate:"required,max=255"`
	Amount       int64  `json:"amount" validate:"required,gt=0"`
	PurchaseDate string `json:"purchaseDate" validate:"required,datetime=2006-01-02"`
	Paid         bool   `json:"paid"`
}

func (req *purchaseReq) toModel() *model.Purchase {
	date, _ := time.Parse("2006-01-02", req.PurchaseDate)
	return &model.Purchase{
		CustomerName: strings.TrimSpace(req.CustomerName),
		Item:         strings.TrimSpace(req.Item),
		Amount:       req.Amount,
		PurchaseDate: date,
		Paid:         req.Paid,
	}
}

// List handles GET /api/purchases.
func (h *PurchaseHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := h.Purchases.List(ctx)
	if err != nil {
		return repoError(c, err, "Purchase not found", "")
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/purchases/:id.
func (h *PurchaseHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	p, err := h.Purchases.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "Purchase not found", "")
	}
	return c.JSON(http.StatusOK, p)
}

// Create handles POST /api/purchases.
func (h *PurchaseHandler) Create(c echo.Context) error {
	var req purchaseReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	p := req.toModel()
	if err := h.Purchases.Create(ctx, p); err != nil {
		return repoError(c, err, "Purchase not found", "")
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /api/purchases/:id.
func (h *PurchaseHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	var req purchaseReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	p := req.toModel()
	p.ID = id
	if err := h.Purchases.Update(ctx, p); err != nil {
		return repoError(c, err, "Purchase not found", "")
	}
	updated, err := h.Purchases.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "Purchase not found", "")
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/purchases/:id.
func (h *PurchaseHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Purchases.Delete(ctx, id); err != nil {
		return repoError(c, err, "Purchase not found", "")
	}
	return c.NoContent(http.StatusNoContent)
}
