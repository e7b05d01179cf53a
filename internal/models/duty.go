package models

import "time"

// DutyStatus tracks the lifecycle of a duty slot.
type DutyStatus string

const (
	DutyStatusPending   DutyStatus = "PENDING"
	DutyStatusAssigned  DutyStatus = "ASSIGNED"
	DutyStatusCompleted DutyStatus = "COMPLETED"
)

// Duty categories with special staffing or workload treatment.
const (
	DutyCategoryPlayground = "playground"
	DutyCategoryLibrary    = "library"
	DutyCategoryCorridor   = "corridor"
	DutyCategoryEntrance   = "entrance"
)

// DutySlot is a time-bounded supervision obligation needing staff coverage.
type DutySlot struct {
	ID        string     `db:"id" json:"id"`
	Date      time.Time  `db:"date" json:"date"`
	StartTime string     `db:"start_time" json:"start_time"`
	EndTime   string     `db:"end_time" json:"end_time"`
	Category  string     `db:"category" json:"category"`
	Status    DutyStatus `db:"status" json:"status"`
	Location  *string    `db:"location" json:"location,omitempty"`
	OutingID  *string    `db:"outing_id" json:"outing_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// DutyFilter captures filtering options for listing duty slots.
type DutyFilter struct {
	Status   *DutyStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}
