package domain

import "strings"

// Role represents user role in the system
type Role string

const (
	RoleUser      Role = "user"
	RoleManager   Role = "manager"
	RoleAdmin     Role = "admin"
	RoleSuspended Role = "suspended"
)

// Roles lists every valid role
var Roles = []Role{RoleUser, RoleManager, RoleAdmin, RoleSuspended}

// ParseRole maps free text onto the closed role set
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Valid reports whether r is one of the enumerated roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin, RoleSuspended:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// RoleSet is an allow-list used by the role gate
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from roles
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether r is allowed
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// Role sets used by the route table
var (
	AdminOnly      = NewRoleSet(RoleAdmin)
	ManagerOnly    = NewRoleSet(RoleManager)
	AdminOrManager = NewRoleSet(RoleAdmin, RoleManager)
)

// ApplicationStatus is the review state of a loan application
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// Valid reports whether s is a known status
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// FeeStatus is the application-fee payment state
type FeeStatus string

const (
	FeeUnpaid FeeStatus = "unpaid"
	FeePaid   FeeStatus = "paid"
)

// UncategorizedLabel is reported for loans without a category
const UncategorizedLabel = "Uncategorized"
