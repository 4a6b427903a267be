package rbac

import "github.com/google/uuid"

// RoleAdmin is the profile role that may read and refresh every business.
const RoleAdmin = "admin"

// DefaultUserHeader carries the user id asserted by the upstream gateway.
const DefaultUserHeader = "X-User-ID"

// Access is the outcome of an authorization check.
type Access struct {
	UserID     uuid.UUID
	BusinessID uuid.UUID
	Admin      bool
	Member     bool
}

// Allowed reports whether the user may act on the business.
func (a Access) Allowed() bool {
	return a.Admin || a.Member
}
