// Copyright (c) 2026 Worklane. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/worklane/worklane/internal/platform/middleware"
	requestutil "github.com/worklane/worklane/internal/platform/request"
	"github.com/worklane/worklane/internal/platform/respond"
	"github.com/worklane/worklane/internal/platform/sec"
	"github.com/worklane/worklane/internal/platform/validate"
)

// Handler exposes account endpoints over HTTP.
type Handler struct {
	accountService *Service
	resolver       middleware.IdentityResolver
}

// NewHandler creates the account HTTP handler.
func NewHandler(accountService *Service, resolver middleware.IdentityResolver) *Handler {
	return &Handler{accountService: accountService, resolver: resolver}
}

// Routes mounts the account endpoints. The profile endpoint needs any
// authenticated caller; the lifecycle endpoints are admin-only and use the
// strict gate so an anonymous request is rejected outright.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Get("/me", handler.Me)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticate(handler.resolver))
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Patch("/{userID}/deactivate", handler.Deactivate)
		admin.Patch("/{userID}/activate", handler.Activate)
	})

	return router
}

/*
Me handles GET /api/v1/users/me.

Responses:
  - 200: Caller's profile
  - 401: Missing identity
*/
func (handler *Handler) Me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Profile retrieved", profile)
}

/*
Deactivate handles PATCH /api/v1/users/{userID}/deactivate (admin).

Responses:
  - 200: Account disabled
  - 404: Unknown account
*/
func (handler *Handler) Deactivate(writer http.ResponseWriter, request *http.Request) {
	userID, err := handler.pathUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Deactivate(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Account deactivated", nil)
}

/*
Activate handles PATCH /api/v1/users/{userID}/activate (admin).

Responses:
  - 200: Account re-enabled
  - 404: Unknown account
*/
func (handler *Handler) Activate(writer http.ResponseWriter, request *http.Request) {
	userID, err := handler.pathUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Activate(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Account activated", nil)
}

// pathUserID extracts and validates the {userID} path parameter.
func (handler *Handler) pathUserID(request *http.Request) (string, error) {
	userID := requestutil.Param(request, "userID")
	validator := &validate.Validator{}
	if err := validator.
		Required("user_id", userID).
		UUID("user_id", userID).
		Err(); err != nil {
		return "", err
	}
	return userID, nil
}
