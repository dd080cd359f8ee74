// Copyright (c) 2026 Worklane. All rights reserved.

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Can publish job postings and review applications
	RoleRecruiter UserRole = "recruiter"

	// Default role for standard registered users
	RoleUser UserRole = "user"
)

// # Role Checks

// In reports whether the role is a member of the allowed set.
//
// Authorization on Worklane is set-membership, not hierarchy: an endpoint
// names the roles it admits and everything else is rejected.
func (r UserRole) In(allowed ...UserRole) bool {
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}

// IsValid reports whether the role is one of the known values.
func (r UserRole) IsValid() bool {
	return r.In(RoleAdmin, RoleRecruiter, RoleUser)
}
