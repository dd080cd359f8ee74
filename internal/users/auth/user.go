// Copyright (c) 2026 Worklane. All rights reserved.

/*
Package auth implements the user identity and session management layer.

It defines the core domain entity (User) and the logic for authentication,
session rotation, and the password-reset lifecycle.

# Architecture

This layer is the "Truth" of the system. The user record is the single source
of truth for session validity: a refresh token is only live while its hash is
the one stored on the record, and a reset token is only live while its hash
and expiry are.
*/
package auth

import (
	"time"

	"github.com/worklane/worklane/internal/platform/sec"
	"github.com/worklane/worklane/pkg/uuid"
)

// # Domain Entities

// User represents a registered member of the Worklane platform.
//
// Credential material (password hash, token hashes) is explicitly omitted
// from JSON so a serialized user can never leak it.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Username     string       `json:"username,omitempty"`
	Name         string       `json:"name"`
	PasswordHash string       `json:"-"`
	Role         sec.UserRole `json:"role"`
	IsActive     bool         `json:"is_active"`

	// RefreshTokenHash holds the SHA-256 of the single live refresh token,
	// or empty when the user has no session. Set on login/refresh, cleared
	// on logout, password change, and password reset.
	RefreshTokenHash string `json:"-"`

	// ResetTokenHash / ResetTokenExpiry track the at-most-one live password
	// reset token. A new request supersedes the previous values.
	ResetTokenHash   string     `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser builds a fresh account entity. Role and active status are fixed
// here, never taken from registration input.
func NewUser(email, username, name, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.Must(),
		Email:        email,
		Username:     username,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         sec.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Identity projects the user onto the minimal caller profile attached to
// request contexts by the authorization gate.
func (user *User) Identity() *sec.Identity {
	return &sec.Identity{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
		IsActive: user.IsActive,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail           = "email"
	FieldUsername        = "username"
	FieldName            = "name"
	FieldPassword        = "password"
	FieldToken           = "token"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldRefreshToken    = "refresh_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldUser            = "user"
)
