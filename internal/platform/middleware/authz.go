// Copyright (c) 2026 Worklane. All rights reserved.

package middleware

import (
	"context"
	"net/http"

	"github.com/worklane/worklane/internal/platform/apperr"
	"github.com/worklane/worklane/internal/platform/ctxutil"
	requestutil "github.com/worklane/worklane/internal/platform/request"
	"github.com/worklane/worklane/internal/platform/respond"
	"github.com/worklane/worklane/internal/platform/sec"
)

// IdentityResolver turns a presented access token into a live caller profile.
//
// # Why an interface?
//
// Defining IdentityResolver here decouples the gate from the auth service
// implementation, allowing us to easily inject fakes during unit testing.
// The resolver is expected to verify the token AND confirm the subject still
// exists and is active.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accessToken string) (*sec.Identity, error)
}

// Authenticate strictly resolves the caller and rejects the request on any failure.
//
// # Flow
//  1. Extract the token: 'Authorization: Bearer <token>' header first, then
//     the accessToken cookie.
//  2. Resolve via [IdentityResolver] (signature, expiry, subject liveness).
//  3. Inject [*sec.Identity] into the request context for downstream use.
//
// Missing token, expired token, malformed token, unknown subject, and
// deactivated account all collapse into the same 401. The gate deliberately
// does not tell callers which check failed.
func Authenticate(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity, ok := resolve(resolver, request)
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or missing credentials"))
				return
			}

			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate resolves the caller when possible but never fails the request.
//
// Any failure (absent token, bad signature, deactivated account) silently
// yields an anonymous request, letting downstream logic branch on the
// presence or absence of an identity.
func OptionalAuthenticate(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if identity, ok := resolve(resolver, request); ok {
				ctx := ctxutil.WithIdentity(request.Context(), identity)
				request = request.WithContext(ctx)
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate] or
// [OptionalAuthenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetIdentity(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests whose caller is not in the allowed role set.
//
// # Usage
//
// Must be registered AFTER an authenticating middleware. It implies
// [RequireAuth]: an anonymous request gets 401, an authenticated caller
// outside the set gets 403.
func RequireRole(allowed ...sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity := ctxutil.GetIdentity(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if identity == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !identity.Role.In(allowed...) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// resolve extracts and resolves the request's credential. The bool result is
// false for every failure mode; callers decide whether that is fatal.
func resolve(resolver IdentityResolver, request *http.Request) (*sec.Identity, bool) {
	token := requestutil.AccessToken(request)
	if token == "" {
		return nil, false
	}

	identity, err := resolver.ResolveIdentity(request.Context(), token)
	if err != nil || identity == nil {
		return nil, false
	}

	return identity, true
}
