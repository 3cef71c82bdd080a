// Package queue owns both ends of the broker integration: the domain event
// payloads, the fire-and-forget publisher, and the background consumer.
package queue

// serviceCompletedQueue is the durable queue carrying completion events.
const serviceCompletedQueue = "service.completed"

// ServiceCompletedEvent is published when a service visit transitions to
// completed. It carries enough to log or notify downstream without another
// trip to the primary database.
type ServiceCompletedEvent struct {
	ServiceID    int64  `json:"service_id"`
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	ServiceType  string `json:"service_type"`
	TechnicianID int64  `json:"technician_id,omitempty"`
	CompletedAt  string `json:"completed_at"`
}
