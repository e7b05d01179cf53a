package models

import "time"

// Outing is a scheduled off-site activity for a class group. The accompanying
// staff member is freed from their normal timetable obligations while the
// group's regular teachers lose their audience for the overlapping slots.
type Outing struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	StaffID      string    `db:"staff_id" json:"staff_id"`
	ClassGroupID string    `db:"class_group_id" json:"class_group_id"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	TermID       string    `db:"term_id" json:"term_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
