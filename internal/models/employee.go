package models

import (
	"strings"
	"time"
)

// EmployeeRole distinguishes regular staff from the pharmacy manager.
type EmployeeRole string

const (
	RoleStaff   EmployeeRole = "STAFF"
	RoleManager EmployeeRole = "MANAGER"
)

// Valid returns true when the role is a supported value.
func (r EmployeeRole) Valid() bool {
	switch r {
	case RoleStaff, RoleManager:
		return true
	default:
		return false
	}
}

// Employee is one pharmacy worker. Exactly one employee carries IsOwner;
// the owner cannot be deleted and its DNI never changes.
type Employee struct {
	ID             string       `db:"id" json:"id"`
	FirstName      string       `db:"first_name" json:"first_name"`
	LastName       string       `db:"last_name" json:"last_name"`
	SecondLastName string       `db:"second_last_name" json:"second_last_name"`
	DNI            string       `db:"dni" json:"dni"`
	Email          string       `db:"email" json:"email"`
	Role           EmployeeRole `db:"role" json:"role"`
	IsOwner        bool         `db:"is_owner" json:"is_owner"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts, skipping empties.
func (e Employee) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.FirstName, e.LastName, e.SecondLastName} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, " ")
}
