package models

import "time"

// TimetableLabelOnDuty marks a timetable slot that is itself a standing duty
// obligation, as opposed to a regular teaching commitment.
const TimetableLabelOnDuty = "ON_DUTY"

// TimetableEntry is a recurring weekly commitment for a staff member.
// Weekday follows ISO numbering, 1=Monday through 7=Sunday.
type TimetableEntry struct {
	ID           string    `db:"id" json:"id"`
	StaffID      string    `db:"staff_id" json:"staff_id"`
	ClassGroupID *string   `db:"class_group_id" json:"class_group_id,omitempty"`
	RoomID       *string   `db:"room_id" json:"room_id,omitempty"`
	Weekday      int       `db:"weekday" json:"weekday"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	Label        string    `db:"label" json:"label"`
	TermID       string    `db:"term_id" json:"term_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// IsOnDuty reports whether the entry is a reserved on-duty slot.
func (t TimetableEntry) IsOnDuty() bool {
	return t.Label == TimetableLabelOnDuty
}
