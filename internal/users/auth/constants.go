// Copyright (c) 2026 Worklane. All rights reserved.

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a refresh token remains valid.
	// Long-lived (7 days) to provide a good user experience.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// ResetTokenTTL is the duration a password reset token remains valid.
	// Short-lived (1 hour) for security.
	ResetTokenTTL = 1 * time.Hour

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6

	// MaxPasswordLength caps input at bcrypt's effective limit of 72 bytes.
	MaxPasswordLength = 72

	// MinUsernameLength applies to the canonical (normalized) handle.
	MinUsernameLength = 3
)
