package model

import "time"

// Customer statuses.
const (
	CustomerActive   = "active"
	CustomerInactive = "inactive"
)

// Customer is a purifier-service customer record. MonthlyRent is stored in
// the smallest currency unit.
type Customer struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Mobile        string    `json:"mobile"`
	Address       string    `json:"address,omitempty"`
	PurifierModel string    `json:"purifierModel,omitempty"`
	MonthlyRent   int64     `json:"monthlyRent"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
