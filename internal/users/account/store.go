// Copyright (c) 2026 Worklane. All rights reserved.

package account

import "context"

// ProfileStore is the narrow data access surface this package needs. It is
// deliberately smaller than the auth store: profile reads and the active
// flag, nothing credential-shaped.
type ProfileStore interface {

	/*
		FindByID returns the profile projection for an account.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Profile: Public account view
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Profile, error)

	/*
		SetActive flips the account's active flag. Deactivating also clears
		the refresh-token anchor so existing sessions die with the account.

		Parameters:
		  - context: context.Context
		  - id: string
		  - active: bool

		Returns:
		  - error: apperr.NotFound when the account does not exist
	*/
	SetActive(context context.Context, id string, active bool) error
}
