package models

import "time"

// UserRole represents the actor roles of the coordination portal.
type UserRole string

const (
	RoleResident    UserRole = "RESIDENT"
	RolePSPOperator UserRole = "PSP_OPERATOR"
	RoleAdmin       UserRole = "ADMIN"
)

// Valid reports whether the role is one of the known actor roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleResident, RolePSPOperator, RoleAdmin:
		return true
	}
	return false
}

// User represents a portal account. Operators carry an availability flag;
// residents may pin a preferred operator for future pickups.
type User struct {
	ID                  string    `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	Email               string    `db:"email" json:"email"`
	PasswordHash        string    `db:"password_hash" json:"-"`
	Phone               string    `db:"phone" json:"phone"`
	Role                UserRole  `db:"role" json:"role"`
	Zone                string    `db:"zone" json:"zone"`
	Availability        *bool     `db:"availability" json:"availability,omitempty"`
	PreferredOperatorID *string   `db:"preferred_operator_id" json:"preferred_operator_id,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// Available reports whether an operator can take new assignments.
// A nil flag defaults to available.
func (u *User) Available() bool {
	return u.Availability == nil || *u.Availability
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Zone      string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
