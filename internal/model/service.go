package model

import "time"

// Service visit types.
const (
	ServiceInstallation = "installation"
	ServiceMaintenance  = "maintenance"
	ServiceRepair       = "repair"
	ServiceFilterChange = "filter_change"
)

// Service visit statuses.
const (
	ServicePending    = "pending"
	ServiceInProgress = "in_progress"
	ServiceCompleted  = "completed"
	ServiceCancelled  = "cancelled"
)

// Service is a scheduled purifier service visit. AssignedTo references the
// technician's user id and may be zero when unassigned. ScheduledDate is a
// date-only value (UTC day).
type Service struct {
	ID            int64      `json:"id"`
	CustomerID    int64      `json:"customerId"`
	ServiceType   string     `json:"serviceType"`
	ScheduledDate time.Time  `json:"scheduledDate"`
	Status        string     `json:"status"`
	AssignedTo    *int64     `json:"assignedTo,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ValidServiceType reports whether t is one of the closed service types.
func ValidServiceType(t string) bool {
	switch t {
	case ServiceInstallation, ServiceMaintenance, ServiceRepair, ServiceFilterChange:
		return true
	}
	return false
}

// ValidServiceStatus reports whether s is one of the closed statuses.
func ValidServiceStatus(s string) bool {
	switch s {
	case ServicePending, ServiceInProgress, ServiceCompleted, ServiceCancelled:
		return true
	}
	return false
}
