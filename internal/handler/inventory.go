package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/aquaflow/internal/model"
	"github.com/aquaflow/aquaflow/internal/repository"
)

// InventoryHandler implements /api/inventory/items.
type InventoryHandler struct {
	Items *repository.InventoryRepo
}

func NewInventoryHandler(items *repository.InventoryRepo) *InventoryHandler {
	return &InventoryHandler{Items: items}
}

type inventoryItemReq struct {
	Name         string `json:"name" validate:"required,max=255"`
	Category     string `json:"category" validate:"omitempty,max=100"`
	Quantity     int64  `json:"quantity" validate:"gte=0"`
	Unit         string `json:"unit" validate:"omitempty,max=20"`
	ReorderLevel int64  `json:"reorderLevel" validate:"gte=0"`
}

type adjustReq struct {
	Delta int64 `json:"delta" validate:"required"`
}

// List handles GET /api/inventory/items; ?low=true restricts to items at or
// below their reorder level.
func (h *InventoryHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := h.Items.List(ctx, c.QueryParam("low") == "true")
	if err != nil {
		return repoError(c, err, "Item not found", "")
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/inventory/items/:id.
func (h *InventoryHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "Item not found", "")
	}
	return c.JSON(http.StatusOK, it)
}

// Create handles POST /api/inventory/items.
func (h *InventoryHandler) Create(c echo.Context) error {
	var req inventoryItemReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	it := &model.InventoryItem{
		Name:         strings.TrimSpace(req.Name),
		Category:     strings.TrimSpace(req.Category),
		Quantity:     req.Quantity,
		Unit:         unit,
		ReorderLevel: req.ReorderLevel,
	}
	if err := h.Items.Create(ctx, it); err != nil {
		return repoError(c, err, "Item not found", "Item name already exists")
	}
	return c.JSON(http.StatusCreated, it)
}

// Update handles PUT /api/inventory/items/:id. Quantity is not updatable
// here; stock moves only through Adjust.
func (h *InventoryHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	var req inventoryItemReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	it := &model.InventoryItem{
		ID:           id,
		Name:         strings.TrimSpace(req.Name),
		Category:     strings.TrimSpace(req.Category),
		Unit:         unit,
		ReorderLevel: req.ReorderLevel,
	}
	if err := h.Items.Update(ctx, it); err != nil {
		return repoError(c, err, "Item not found", "Item name already exists")
	}
	updated, err := h.Items.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "Item not found", "")
	}
	return c.JSON(http.StatusOK, updated)
}

// Adjust handles POST /api/inventory/items/:id/adjust with a signed delta.
// Drawing below zero is a 409.
func (h *InventoryHandler) Adjust(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	var req adjustReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	it, err := h.Items.Adjust(ctx, id, req.Delta)
	if err != nil {
		return repoError(c, err, "Item not found", "Insufficient stock")
	}
	return c.JSON(http.StatusOK, it)
}

// Delete handles DELETE /api/inventory/items/:id.
func (h *InventoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Items.Delete(ctx, id); err != nil {
		return repoError(c, err, "Item not found", "")
	}
	return c.NoContent(http.StatusNoContent)
}
