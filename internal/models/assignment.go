package models

import "time"

// AssignmentStatus tracks the lifecycle of a duty assignment.
type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "ASSIGNED"
	AssignmentStatusAccepted  AssignmentStatus = "ACCEPTED"
	AssignmentStatusRejected  AssignmentStatus = "REJECTED"
	AssignmentStatusCompleted AssignmentStatus = "COMPLETED"
)

// DutyAssignment links a staff member to a duty slot. At most one row exists
// per (duty, staff) pair; the database enforces this with a unique constraint.
type DutyAssignment struct {
	ID           string           `db:"id" json:"id"`
	DutyID       string           `db:"duty_id" json:"duty_id"`
	StaffID      string           `db:"staff_id" json:"staff_id"`
	PriorityTier int              `db:"priority_tier" json:"priority_tier"`
	Status       AssignmentStatus `db:"status" json:"status"`
	Reason       string           `db:"reason" json:"reason"`
	AutoAssigned bool             `db:"auto_assigned" json:"auto_assigned"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

// AssignmentWithDuty carries an assignment joined with its duty slot, used by
// the workload score window query.
type AssignmentWithDuty struct {
	DutyAssignment
	DutyDate     time.Time `db:"duty_date" json:"duty_date"`
	DutyCategory string    `db:"duty_category" json:"duty_category"`
}
