// Copyright (c) 2026 Worklane. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # Credential Store

// UserStore defines the data access contract for user accounts and the
// server-side token state riding on them.
//
// Implementations must provide atomic compare-and-set semantics for
// [UserStore.RotateRefreshTokenHash]; everything else is single-row reads
// and writes.
type UserStore interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given canonical username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		FindByIDAndRefreshTokenHash returns the account only when the stored
		refresh-token hash exactly matches the presented one. This is the
		lookup behind refresh: possession of a structurally valid token is
		necessary but not sufficient.

		Parameters:
		  - context: context.Context
		  - id: string
		  - tokenHash: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound when absent or superseded
	*/
	FindByIDAndRefreshTokenHash(context context.Context, id, tokenHash string) (*User, error)

	/*
		FindByIDAndLiveResetToken returns the account only when the stored
		reset-token hash matches AND its expiry is strictly after now.

		Parameters:
		  - context: context.Context
		  - id: string
		  - tokenHash: string
		  - now: time.Time

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound when absent, consumed, or expired
	*/
	FindByIDAndLiveResetToken(context context.Context, id, tokenHash string, now time.Time) (*User, error)

	/*
		Create persists a brand-new user account.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on email/username uniqueness violations
	*/
	Create(context context.Context, user *User) error

	/*
		SetRefreshTokenHash overwrites the stored refresh-token hash,
		implicitly invalidating whatever token was live before.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - tokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	SetRefreshTokenHash(context context.Context, userID, tokenHash string) error

	/*
		RotateRefreshTokenHash atomically swaps oldHash for newHash. The swap
		only happens when the stored value still equals oldHash, so two
		concurrent refresh calls presenting the same token cannot both win.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - oldHash: string
		  - newHash: string

		Returns:
		  - error: apperr.SessionInvalid when the stored hash no longer
		    matches oldHash; persistence failures otherwise
	*/
	RotateRefreshTokenHash(context context.Context, userID, oldHash, newHash string) error

	/*
		ClearRefreshToken removes the stored refresh-token hash. Idempotent:
		clearing an already-empty field is not an error.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	ClearRefreshToken(context context.Context, userID string) error

	/*
		SetResetToken stores a reset-token hash and its absolute expiry,
		superseding any previously issued, unused reset token.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - tokenHash: string
		  - expiry: time.Time

		Returns:
		  - error: Persistence failures
	*/
	SetResetToken(context context.Context, userID, tokenHash string, expiry time.Time) error

	/*
		CompletePasswordReset swaps in the new password hash and clears both
		the reset-token state and the refresh-token hash in one update, so a
		successful reset logs out every active session.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newPasswordHash: string

		Returns:
		  - error: Persistence failures
	*/
	CompletePasswordReset(context context.Context, userID, newPasswordHash string) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newPasswordHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newPasswordHash string) error
}
