package models

import "time"

// ScaleStatus is the aggregate staffing state an event carries, derived from
// its assignments.
type ScaleStatus string

const (
	ScaleStatusNone      ScaleStatus = "none"
	ScaleStatusPending   ScaleStatus = "pending"
	ScaleStatusConfirmed ScaleStatus = "confirmed"
)

// Event is a church occurrence (service, vigil, conference). Scheduling owns
// the name and date; this workflow only writes the two derived fields
// ScaleStatus and ScaleCount, which are recomputed from the assignments table
// rather than maintained incrementally.
type Event struct {
	ID          string      `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	StartsAt    time.Time   `json:"starts_at" db:"starts_at"`
	ScaleStatus ScaleStatus `json:"scale_status" db:"scale_status"`
	ScaleCount  int         `json:"scale_count" db:"scale_count"`
	CreatedBy   *string     `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}
