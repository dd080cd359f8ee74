// Copyright (c) 2026 Worklane. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/worklane/worklane/internal/platform/apperr"
	"github.com/worklane/worklane/internal/platform/constants"
	"github.com/worklane/worklane/internal/platform/events"
	"github.com/worklane/worklane/internal/platform/sec"
	"github.com/worklane/worklane/pkg/normalize"
)

// TokenCodec signs and verifies purpose-bound tokens. Satisfied by
// [sec.TokenService].
type TokenCodec interface {
	Issue(purpose sec.TokenPurpose, userID string, role sec.UserRole, ttl time.Duration) (string, error)
	Verify(tokenString string, purpose sec.TokenPurpose) (*sec.TokenClaims, error)
}

// Session is the result of a successful register, login, or refresh: the
// authenticated user plus a fresh token pair.
type Session struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

// Service orchestrates all authentication flows over a [UserStore] and a
// [TokenCodec], emitting domain events as a side channel.
type Service struct {
	users  UserStore
	codec  TokenCodec
	events events.Publisher
	logger *slog.Logger
}

/*
NewService wires an authentication service.

Parameters:
  - users: UserStore
  - codec: TokenCodec
  - publisher: events.Publisher
  - logger: *slog.Logger

Returns:
  - *Service: Ready-to-use service
*/
func NewService(users UserStore, codec TokenCodec, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		codec:  codec,
		events: publisher,
		logger: logger,
	}
}

// RegisterInput carries the already-validated registration payload.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Username string
}

/*
Register creates a new account and opens its first session.

The username is canonicalized before the uniqueness check so visually
equivalent spellings cannot coexist. New accounts always start with the
least-privileged role and active status; neither is caller-controlled.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Session: New user with a fresh token pair
  - error: apperr.Conflict on duplicate email/username, apperr.ValidationError
    on an unusable username, persistence failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Session, error) {
	email := normalize.Email(input.Email)

	if _, err := service.users.FindByEmail(context, email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	} else if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, fmt.Errorf("auth_service_email_lookup_failed: %w", err)
	}

	username := ""
	if input.Username != "" {
		username = normalize.Username(input.Username)
		if len(username) < MinUsernameLength {
			return nil, apperr.ValidationError("Username must be at least 3 characters after normalization")
		}
		if _, err := service.users.FindByUsername(context, username); err == nil {
			return nil, apperr.Conflict("Username is already taken")
		} else if !apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, fmt.Errorf("auth_service_username_lookup_failed: %w", err)
		}
	}

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := NewUser(email, username, input.Name, passwordHash)
	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}

	session, err := service.openSession(context, user)
	if err != nil {
		return nil, err
	}

	service.publish(context, constants.ChannelUserRegistered, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return session, nil
}

/*
Login verifies credentials and opens a new session, displacing any session
that was live before.

Unknown email and wrong password produce the same error, and the password is
checked before the active flag so that the deactivated message never leaks
whether a guessed password was correct.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *Session: Authenticated user with a fresh token pair
  - error: apperr.InvalidCredentials, apperr.AccountDeactivated, or
    persistence failures
*/
func (service *Service) Login(context context.Context, email, password string) (*Session, error) {
	user, err := service.users.FindByEmail(context, normalize.Email(email))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.InvalidCredentials()
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	if !user.IsActive {
		return nil, apperr.AccountDeactivated()
	}

	session, err := service.openSession(context, user)
	if err != nil {
		return nil, err
	}

	service.publish(context, constants.ChannelUserLoggedIn, map[string]any{
		"user_id": user.ID,
	})
	return session, nil
}

/*
Refresh exchanges a live refresh token for a brand-new token pair.

The presented token must be structurally valid, match the stored hash, and
win the compare-and-set rotation. A token that loses any of those checks
yields an authentication error, never a silent reuse.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *Session: User with the rotated token pair
  - error: apperr.SessionExpired on a structurally invalid or expired token,
    apperr.SessionInvalid on a superseded token, apperr.AccountDeactivated
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*Session, error) {
	claims, err := service.codec.Verify(refreshToken, sec.PurposeRefresh)
	if err != nil {
		return nil, apperr.SessionExpired()
	}

	presentedHash := sec.HashToken(refreshToken)
	user, err := service.users.FindByIDAndRefreshTokenHash(context, claims.UserID(), presentedHash)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.SessionInvalid()
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	if !user.IsActive {
		return nil, apperr.AccountDeactivated()
	}

	accessToken, newRefreshToken, err := service.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err := service.users.RotateRefreshTokenHash(context, user.ID, presentedHash, sec.HashToken(newRefreshToken)); err != nil {
		return nil, err
	}

	return &Session{User: user, AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

/*
Logout clears the server-side refresh anchor for the given user, so the
outstanding refresh token can no longer be exchanged. Idempotent, and a
no-op for anonymous callers.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Persistence failures
*/
func (service *Service) Logout(context context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return service.users.ClearRefreshToken(context, userID)
}

/*
RequestReset starts the password reset flow for the given email.

An unknown email is deliberately indistinguishable from a known one: both
succeed, and only the latter stores a token and emits an event. The reset
token itself travels only over the event sink, never in the HTTP response.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Persistence failures only; enumeration attempts see success
*/
func (service *Service) RequestReset(context context.Context, email string) error {
	user, err := service.users.FindByEmail(context, normalize.Email(email))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil
		}
		return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	resetToken, err := service.codec.Issue(sec.PurposeReset, user.ID, user.Role, ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("auth_service_reset_issue_failed: %w", err)
	}

	expiry := time.Now().Add(ResetTokenTTL)
	if err := service.users.SetResetToken(context, user.ID, sec.HashToken(resetToken), expiry); err != nil {
		return err
	}

	service.publish(context, constants.ChannelResetRequested, map[string]any{
		"user_id":     user.ID,
		"email":       user.Email,
		"reset_token": resetToken,
		"expires_at":  expiry.UTC().Format(time.RFC3339),
	})
	return nil
}

/*
ResetPassword consumes a reset token and installs a new password.

The new password is validated before the token is examined, so a caller with
a bad password learns that first and the single-use token survives the
attempt. A successful reset clears the refresh anchor as well, ending any
session opened with the old credentials.

Parameters:
  - context: context.Context
  - resetToken: string
  - newPassword: string

Returns:
  - error: apperr.ValidationError on a weak password, apperr.InvalidResetToken on
    any token defect, persistence failures
*/
func (service *Service) ResetPassword(context context.Context, resetToken, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	claims, err := service.codec.Verify(resetToken, sec.PurposeReset)
	if err != nil {
		return apperr.InvalidResetToken()
	}

	user, err := service.users.FindByIDAndLiveResetToken(context, claims.UserID(), sec.HashToken(resetToken), time.Now())
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return apperr.InvalidResetToken()
		}
		return fmt.Errorf("auth_service_reset_consume_failed: %w", err)
	}

	newHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.users.CompletePasswordReset(context, user.ID, newHash); err != nil {
		return err
	}

	service.publish(context, constants.ChannelPasswordReset, map[string]any{
		"user_id": user.ID,
	})
	return nil
}

/*
ChangePassword updates the password of an authenticated user after verifying
the current one, then clears the refresh anchor so other devices must log in
again.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: apperr.Unauthorized on a wrong current password, apperr.ValidationError
    on a weak new password, persistence failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	newHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(context, userID, newHash); err != nil {
		return err
	}
	return service.users.ClearRefreshToken(context, userID)
}

/*
ResolveIdentity turns a raw access token into the caller's identity.

The lookup always goes through the store, so a deactivated or deleted
account loses access immediately even while its access token is still
cryptographically valid.

Parameters:
  - context: context.Context
  - accessToken: string

Returns:
  - *sec.Identity: Resolved caller identity
  - error: apperr.Unauthorized on any token or account defect
*/
func (service *Service) ResolveIdentity(context context.Context, accessToken string) (*sec.Identity, error) {
	claims, err := service.codec.Verify(accessToken, sec.PurposeAccess)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired access token")
	}

	user, err := service.users.FindByID(context, claims.UserID())
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("Account no longer exists")
		}
		return nil, fmt.Errorf("auth_service_identity_lookup_failed: %w", err)
	}

	if !user.IsActive {
		return nil, apperr.Unauthorized("Account is deactivated")
	}

	return user.Identity(), nil
}

// ValidatePassword enforces the password policy shared by register, reset,
// and change-password.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperr.ValidationError(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return apperr.ValidationError(fmt.Sprintf("Password must be at most %d characters", MaxPasswordLength))
	}
	return nil
}

// issuePair mints a fresh access/refresh token pair for the user.
func (service *Service) issuePair(user *User) (accessToken, refreshToken string, err error) {
	accessToken, err = service.codec.Issue(sec.PurposeAccess, user.ID, user.Role, AccessTokenTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth_service_access_issue_failed: %w", err)
	}
	refreshToken, err = service.codec.Issue(sec.PurposeRefresh, user.ID, user.Role, RefreshTokenTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth_service_refresh_issue_failed: %w", err)
	}
	return accessToken, refreshToken, nil
}

// openSession issues a token pair and anchors the refresh token on the user
// record, displacing any previous session.
func (service *Service) openSession(context context.Context, user *User) (*Session, error) {
	accessToken, refreshToken, err := service.issuePair(user)
	if err != nil {
		return nil, err
	}
	if err := service.users.SetRefreshTokenHash(context, user.ID, sec.HashToken(refreshToken)); err != nil {
		return nil, err
	}
	return &Session{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// publish sends a domain event, logging instead of failing the request when
// the sink is unavailable.
func (service *Service) publish(context context.Context, channel string, payload map[string]any) {
	if err := service.events.Publish(context, channel, payload); err != nil {
		service.logger.Warn("event publish failed", "channel", channel, "error", err)
	}
}
