// Copyright (c) 2026 Worklane. All rights reserved.

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worklane/worklane/internal/platform/apperr"
	"github.com/worklane/worklane/internal/platform/ctxutil"
	"github.com/worklane/worklane/internal/platform/middleware"
	"github.com/worklane/worklane/internal/platform/sec"
)

// fakeResolver resolves a single known token to a fixed identity.
type fakeResolver struct {
	token    string
	identity *sec.Identity
}

func (resolver *fakeResolver) ResolveIdentity(_ context.Context, accessToken string) (*sec.Identity, error) {
	if accessToken == resolver.token {
		return resolver.identity, nil
	}
	return nil, apperr.Unauthorized("Invalid or missing credentials")
}

func newResolver(role sec.UserRole) *fakeResolver {
	return &fakeResolver{
		token: "good-token",
		identity: &sec.Identity{
			ID:       "user-123",
			Email:    "a@b.com",
			Name:     "A",
			Role:     role,
			IsActive: true,
		},
	}
}

// echoIdentity records whether the handler ran and which caller it saw.
func echoIdentity(sawIdentity **sec.Identity) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*sawIdentity = ctxutil.GetIdentity(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestAuthenticate_TokenSources verifies header/cookie extraction and precedence.
*/
func TestAuthenticate_TokenSources(t *testing.T) {
	resolver := newResolver(sec.RoleUser)

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
	}{
		{
			name: "bearer_header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer good-token")
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "cookie_fallback",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "accessToken", Value: "good-token"})
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "header_takes_precedence_over_cookie",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer bad-token")
				r.AddCookie(&http.Cookie{Name: "accessToken", Value: "good-token"})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing_token",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "malformed_header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "good-token")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown_token",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer forged")
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saw *sec.Identity
			handler := middleware.Authenticate(resolver)(echoIdentity(&saw))

			request := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			tt.setup(request)
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantStatus == http.StatusOK {
				assert.NotNil(t, saw)
				assert.Equal(t, "user-123", saw.ID)
			} else {
				assert.Nil(t, saw)
			}
		})
	}
}

/*
TestOptionalAuthenticate never rejects: a bad token just means anonymous.
*/
func TestOptionalAuthenticate(t *testing.T) {
	resolver := newResolver(sec.RoleUser)

	t.Run("valid_token_resolves", func(t *testing.T) {
		var saw *sec.Identity
		handler := middleware.OptionalAuthenticate(resolver)(echoIdentity(&saw))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer good-token")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.NotNil(t, saw)
	})

	t.Run("invalid_token_is_anonymous", func(t *testing.T) {
		var saw *sec.Identity
		handler := middleware.OptionalAuthenticate(resolver)(echoIdentity(&saw))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer forged")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Nil(t, saw)
	})
}

/*
TestRequireRole covers the 401 vs 403 split and set membership.
*/
func TestRequireRole(t *testing.T) {
	t.Run("anonymous_gets_401", func(t *testing.T) {
		var saw *sec.Identity
		handler := middleware.RequireRole(sec.RoleAdmin)(echoIdentity(&saw))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("wrong_role_gets_403", func(t *testing.T) {
		resolver := newResolver(sec.RoleUser)
		var saw *sec.Identity
		handler := middleware.Authenticate(resolver)(
			middleware.RequireRole(sec.RoleAdmin)(echoIdentity(&saw)),
		)

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer good-token")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("member_of_set_passes", func(t *testing.T) {
		resolver := newResolver(sec.RoleRecruiter)
		var saw *sec.Identity
		handler := middleware.Authenticate(resolver)(
			middleware.RequireRole(sec.RoleAdmin, sec.RoleRecruiter)(echoIdentity(&saw)),
		)

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer good-token")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, sec.RoleRecruiter, saw.Role)
	})
}
