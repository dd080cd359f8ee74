// Copyright (c) 2026 Worklane. All rights reserved.

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/worklane/worklane/internal/platform/constants"
	"github.com/worklane/worklane/internal/platform/middleware"
	requestutil "github.com/worklane/worklane/internal/platform/request"
	"github.com/worklane/worklane/internal/platform/respond"
	"github.com/worklane/worklane/internal/platform/validate"
)

// Handler exposes the authentication flows over HTTP.
type Handler struct {
	authService *Service
}

// NewHandler creates the auth HTTP handler.
func NewHandler(authService *Service) *Handler {
	return &Handler{authService: authService}
}

// Routes mounts the authentication endpoints. Everything here is public
// except change-password, which requires an authenticated caller.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.Register)
	router.Post("/login", handler.Login)
	router.Post("/refresh", handler.Refresh)
	router.Post("/logout", handler.Logout)
	router.Post("/forgot-password", handler.ForgotPassword)
	router.Post("/reset-password", handler.ResetPassword)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/change-password", handler.ChangePassword)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// # Endpoints

/*
Register handles POST /api/v1/auth/register.

Creates an account and opens its first session. The token pair is returned
in the envelope and mirrored into auth cookies.

Responses:
  - 201: User created and logged in
  - 400: Validation failure
  - 409: Email or username already taken
*/
func (handler *Handler) Register(writer http.ResponseWriter, request *http.Request) {
	var payload registerRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldEmail, payload.Email).
		Email(FieldEmail, payload.Email).
		Required(FieldName, payload.Name).
		MaxLen(FieldName, payload.Name, 100).
		Required(FieldPassword, payload.Password).
		MinLen(FieldPassword, payload.Password, MinPasswordLength).
		MaxLen(FieldPassword, payload.Password, MaxPasswordLength)
	if payload.Username != "" {
		validator.MinLen(FieldUsername, payload.Username, MinUsernameLength)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    payload.Email,
		Password: payload.Password,
		Name:     payload.Name,
		Username: payload.Username,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setAuthCookies(writer, session)
	respond.Created(writer, "Account created", sessionPayload(session))
}

/*
Login handles POST /api/v1/auth/login.

Responses:
  - 200: Authenticated, new session opened
  - 401: Invalid credentials (identical for unknown email and wrong password)
  - 403: Account deactivated
*/
func (handler *Handler) Login(writer http.ResponseWriter, request *http.Request) {
	var payload loginRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.
		Required(FieldEmail, payload.Email).
		Required(FieldPassword, payload.Password).
		Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), payload.Email, payload.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setAuthCookies(writer, session)
	respond.OK(writer, "Logged in", sessionPayload(session))
}

/*
Refresh handles POST /api/v1/auth/refresh.

The refresh token is read from the refreshToken cookie, falling back to a
JSON body for non-browser clients.

Responses:
  - 200: Token pair rotated
  - 401: Expired, malformed, or superseded refresh token
  - 403: Account deactivated
*/
func (handler *Handler) Refresh(writer http.ResponseWriter, request *http.Request) {
	refreshToken := refreshTokenFrom(request)
	if refreshToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldRefreshToken, "Refresh token is required"))
		return
	}

	session, err := handler.authService.Refresh(request.Context(), refreshToken)
	if err != nil {
		clearAuthCookies(writer)
		respond.Error(writer, request, err)
		return
	}

	setAuthCookies(writer, session)
	respond.OK(writer, "Session refreshed", map[string]any{
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
		FieldTokenType:    constants.AuthBearerScheme,
		FieldExpiresIn:    int(AccessTokenTTL.Seconds()),
	})
}

/*
Logout handles POST /api/v1/auth/logout.

Works for anonymous callers too: cookies are always cleared, and the
server-side anchor is dropped only when an identity is present. Calling it
twice is fine.

Responses:
  - 200: Always, once cookies are cleared
*/
func (handler *Handler) Logout(writer http.ResponseWriter, request *http.Request) {
	userID := ""
	if identity := requestutil.Identity(request); identity != nil {
		userID = identity.ID
	}

	if err := handler.authService.Logout(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearAuthCookies(writer)
	respond.OK(writer, "Logged out", nil)
}

/*
ForgotPassword handles POST /api/v1/auth/forgot-password.

The response is identical whether or not the email belongs to an account, so
the endpoint cannot be used to enumerate users.

Responses:
  - 200: Always, for any well-formed email
  - 400: Missing or malformed email
*/
func (handler *Handler) ForgotPassword(writer http.ResponseWriter, request *http.Request) {
	var payload forgotPasswordRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.
		Required(FieldEmail, payload.Email).
		Email(FieldEmail, payload.Email).
		Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestReset(request.Context(), payload.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "If that email is registered, a reset link has been sent", nil)
}

/*
ResetPassword handles POST /api/v1/auth/reset-password.

Responses:
  - 200: Password replaced, all sessions ended
  - 400: Weak password, or any reset-token defect (one undifferentiated error)
*/
func (handler *Handler) ResetPassword(writer http.ResponseWriter, request *http.Request) {
	var payload resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.
		Required(FieldToken, payload.Token).
		Required(FieldNewPassword, payload.NewPassword).
		Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), payload.Token, payload.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Password has been reset", nil)
}

/*
ChangePassword handles POST /api/v1/auth/change-password (authenticated).

Responses:
  - 200: Password changed, other sessions ended
  - 400: Weak new password
  - 401: Missing identity or wrong current password
*/
func (handler *Handler) ChangePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload changePasswordRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.
		Required(FieldCurrentPassword, payload.CurrentPassword).
		Required(FieldNewPassword, payload.NewPassword).
		Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ChangePassword(request.Context(), userID, payload.CurrentPassword, payload.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Password changed", nil)
}

// # Cookie Plumbing

// sessionPayload shapes the envelope data for register and login.
func sessionPayload(session *Session) map[string]any {
	return map[string]any{
		FieldUser:         session.User,
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
	}
}

// refreshTokenFrom extracts the refresh token, preferring the cookie set on
// login and falling back to a JSON body for API clients.
func refreshTokenFrom(request *http.Request) string {
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var payload refreshRequest
	if err := requestutil.DecodeJSON(request, &payload); err == nil {
		return payload.RefreshToken
	}
	return ""
}

// setAuthCookies mirrors the token pair into httpOnly cookies for browser
// clients. Lifetimes track the token TTLs.
func setAuthCookies(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    session.AccessToken,
		Path:     "/",
		MaxAge:   int(AccessTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     "/",
		MaxAge:   int(RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearAuthCookies expires both auth cookies.
func clearAuthCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
