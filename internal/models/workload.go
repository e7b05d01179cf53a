package models

// WorkloadRow is one line of the workload balance report.
type WorkloadRow struct {
	StaffID          string `json:"staff_id"`
	FullName         string `json:"full_name"`
	TotalAssignments int    `json:"total_assignments"`
	WorkloadScore    int    `json:"workload_score"`
}

// Candidate is the classifier verdict for one staff member. Lower tier wins;
// ties within a tier break on ascending workload score.
type Candidate struct {
	StaffID       string `json:"staff_id"`
	Tier          int    `json:"tier"`
	Reason        string `json:"reason"`
	WorkloadScore int    `json:"workload_score"`
}

// AssignmentContext is the immutable snapshot the engine classifies against.
// It is built fresh per invocation and never mutated.
type AssignmentContext struct {
	Duty      DutySlot
	Staff     []StaffMember
	Outings   []Outing
	Existing  []DutyAssignment
	Timetable []TimetableEntry
}

// AlreadyAssigned reports whether the staff member holds an assignment for
// the context's duty.
func (c AssignmentContext) AlreadyAssigned(staffID string) bool {
	for _, a := range c.Existing {
		if a.StaffID == staffID {
			return true
		}
	}
	return false
}
