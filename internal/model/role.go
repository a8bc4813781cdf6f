package model

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleProfesor UserRole = "profesor"
	RoleTutor    UserRole = "tutor"
	RoleAdulto   UserRole = "adulto"
)

// IsValid reports whether r is a known role.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleProfesor, RoleTutor, RoleAdulto:
		return true
	}
	return false
}

// Profile is a user account. Tutors own minor students, adultos own
// themselves as a single student record.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      UserRole  `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Capabilities is the resolved permission set for a request. It is computed
// once at the request boundary and passed down; nothing below the boundary
// inspects the raw role again.
type Capabilities struct {
	ViewAll           bool `json:"view_all"`
	ManageClasses     bool `json:"manage_classes"`
	ManageUsers       bool `json:"manage_users"`
	MarkOutcomes      bool `json:"mark_outcomes"`
	ManageTournaments bool `json:"manage_tournaments"`
}

// ResolveCapabilities maps a role to its capability set. Admin and profesor
// are the staff roles; tutor and adulto act only on their own students.
func ResolveCapabilities(role UserRole) Capabilities {
	switch role {
	case RoleAdmin:
		return Capabilities{
			ViewAll:           true,
			ManageClasses:     true,
			ManageUsers:       true,
			MarkOutcomes:      true,
			ManageTournaments: true,
		}
	case RoleProfesor:
		return Capabilities{
			ViewAll:       true,
			ManageClasses: true,
			MarkOutcomes:  true,
		}
	default:
		return Capabilities{}
	}
}
