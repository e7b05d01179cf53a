package models

import "time"

// Administrative role tags that carry elevated duty obligations.
const (
	RoleDepartmentHead = "DEPARTMENT_HEAD"
	RoleCoordinator    = "COORDINATOR"
	RoleSecretary      = "SECRETARY"
	RoleDirector       = "DIRECTOR"
	RoleHeadOfStudies  = "HEAD_OF_STUDIES"
)

var administrativeRoles = map[string]struct{}{
	RoleDepartmentHead: {},
	RoleCoordinator:    {},
	RoleSecretary:      {},
	RoleDirector:       {},
	RoleHeadOfStudies:  {},
}

// IsAdministrativeRole reports whether the tag belongs to the fixed set of
// roles with elevated duty obligations.
func IsAdministrativeRole(role string) bool {
	_, ok := administrativeRoles[role]
	return ok
}

// StaffMember represents a member of the school staff.
type StaffMember struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     string    `db:"email" json:"email"`
	Role      *string   `db:"role" json:"role,omitempty"`
	TermID    string    `db:"term_id" json:"term_id"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasAdministrativeRole reports whether the member carries an elevated role tag.
func (s StaffMember) HasAdministrativeRole() bool {
	return s.Role != nil && IsAdministrativeRole(*s.Role)
}

// StaffFilter captures filtering options for listing staff.
type StaffFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
