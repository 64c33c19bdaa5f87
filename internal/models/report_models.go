package models

import "time"

// CollectionReport is the financial tally for one event's offering collection.
// One report exists per (event, ministry); refiling overwrites in place.
type CollectionReport struct {
	EventID        string    `json:"event_id" db:"event_id"`
	Ministry       string    `json:"ministry" db:"ministry"`
	TransferAmount float64   `json:"transfer_amount" db:"transfer_amount"`
	CashAmount     float64   `json:"cash_amount" db:"cash_amount"`
	Total          float64   `json:"total" db:"total"`
	Notes          *string   `json:"notes,omitempty" db:"notes"`
	FiledBy        string    `json:"filed_by" db:"filed_by"`
	FilerName      string    `json:"filer_name" db:"filer_name"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
