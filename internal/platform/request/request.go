// Copyright (c) 2026 Worklane. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction, token
transport conventions, and common body decoding patterns, ensuring consistent
error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/worklane/worklane/internal/platform/apperr"
	"github.com/worklane/worklane/internal/platform/constants"
	"github.com/worklane/worklane/internal/platform/ctxutil"
	"github.com/worklane/worklane/internal/platform/sec"
	"github.com/worklane/worklane/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
AccessToken extracts the bearer access token from the request.

The Authorization header takes precedence; the accessToken cookie is the
fallback. An empty string means the request carries no credential.
*/
func AccessToken(request *http.Request) string {
	header := request.Header.Get(constants.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], constants.AuthBearerScheme) {
			return strings.TrimSpace(parts[1])
		}
		// A malformed Authorization header is not silently downgraded to the
		// cookie; the caller sees an empty credential and fails closed.
		return ""
	}

	cookie, err := request.Cookie(constants.AccessTokenCookieName)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}

/*
Identity extracts the authenticated caller from the request context.

Returns nil if the request is anonymous.
*/
func Identity(request *http.Request) *sec.Identity {
	return ctxutil.GetIdentity(request.Context())
}

/*
RequiredIdentity ensures the request is authenticated and returns the caller.

Returns:
  - *sec.Identity: The authenticated caller
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredIdentity(request *http.Request) (*sec.Identity, error) {

	// Get the resolved caller
	identity := ctxutil.GetIdentity(request.Context())

	// If the request is anonymous, return an error
	if identity == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return identity, nil
}

/*
RequiredUserID returns the User ID of the currently logged-in user.

Returns:
  - string: User UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {

	// Get the resolved caller
	identity, err := RequiredIdentity(request)

	// If the request is anonymous, return an error
	if err != nil {
		return "", err
	}

	return identity.ID, nil
}
