// Copyright (c) 2026 Worklane. All rights reserved.

// Package account exposes profile reads and the administrative account
// lifecycle (deactivate/activate).
package account

import "time"

// Profile is the public projection of a user account. It never carries
// credential material.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
