// Copyright (c) 2026 Worklane. All rights reserved.

package sec

// Identity is the minimal caller profile attached to a request context after
// authentication.
//
// # Why not raw claims?
//
// The access token only proves possession; the gate resolves the subject
// against the credential store on every request so that deactivation and role
// changes take effect immediately, not at token expiry.
type Identity struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Username string   `json:"username,omitempty"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role"`
	IsActive bool     `json:"is_active"`
}
