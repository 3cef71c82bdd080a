package model

import "time"

// Rent due statuses.
const (
	RentStatusDue  = "due"
	RentStatusPaid = "paid"
)

// RentDue is a monthly rent installment owed by a customer. Amount is stored
// in the smallest currency unit; DueDate is a date-only value (UTC day).
type RentDue struct {
	ID         int64      `json:"id"`
	CustomerID int64      `json:"customerId"`
	Amount     int64      `json:"amount"`
	DueDate    time.Time  `json:"dueDate"`
	Status     string     `json:"status"`
	PaidAt     *time.Time `json:"paidAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Purchase records a one-off sale (purifier, spares, consumables).
type Purchase struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customerName"`
	Item         string    `json:"item"`
	Amount       int64     `json:"amount"`
	PurchaseDate time.Time `json:"purchaseDate"`
	Paid         bool      `json:"paid"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// InventoryItem is a stocked part or consumable. Quantity never goes below
// zero; items at or below ReorderLevel count as low stock.
type InventoryItem struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category,omitempty"`
	Quantity     int64     `json:"quantity"`
	Unit         string    `json:"unit"`
	ReorderLevel int64     `json:"reorderLevel"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
