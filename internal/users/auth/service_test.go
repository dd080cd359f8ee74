// Copyright (c) 2026 Worklane. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklane/worklane/internal/platform/apperr"
	"github.com/worklane/worklane/internal/platform/constants"
	"github.com/worklane/worklane/internal/platform/sec"
)

// fakeUserStore is an in-memory UserStore with the same compare-and-set
// rotation semantics as the PostgreSQL implementation.
type fakeUserStore struct {
	mu         sync.Mutex
	byID       map[string]*User
	byEmail    map[string]string
	byUsername map[string]string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:       make(map[string]*User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

func (store *fakeUserStore) clone(user *User) *User {
	copied := *user
	if user.ResetTokenExpiry != nil {
		expiry := *user.ResetTokenExpiry
		copied.ResetTokenExpiry = &expiry
	}
	return &copied
}

func (store *fakeUserStore) FindByID(_ context.Context, id string) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return store.clone(user), nil
}

func (store *fakeUserStore) FindByEmail(_ context.Context, email string) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	id, ok := store.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return store.clone(store.byID[id]), nil
}

func (store *fakeUserStore) FindByUsername(_ context.Context, username string) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	id, ok := store.byUsername[username]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return store.clone(store.byID[id]), nil
}

func (store *fakeUserStore) FindByIDAndRefreshTokenHash(_ context.Context, id, tokenHash string) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.byID[id]
	if !ok || user.RefreshTokenHash == "" || user.RefreshTokenHash != tokenHash {
		return nil, apperr.NotFound("User")
	}
	return store.clone(user), nil
}

func (store *fakeUserStore) FindByIDAndLiveResetToken(_ context.Context, id, tokenHash string, now time.Time) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.byID[id]
	if !ok || user.ResetTokenHash == "" || user.ResetTokenHash != tokenHash {
		return nil, apperr.NotFound("User")
	}
	if user.ResetTokenExpiry == nil || !user.ResetTokenExpiry.After(now) {
		return nil, apperr.NotFound("User")
	}
	return store.clone(user), nil
}

func (store *fakeUserStore) Create(_ context.Context, user *User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, exists := store.byEmail[user.Email]; exists {
		return apperr.Conflict("Email is already registered")
	}
	if user.Username != "" {
		if _, exists := store.byUsername[user.Username]; exists {
			return apperr.Conflict("Username is already taken")
		}
		store.byUsername[user.Username] = user.ID
	}
	store.byID[user.ID] = store.clone(user)
	store.byEmail[user.Email] = user.ID
	return nil
}

func (store *fakeUserStore) SetRefreshTokenHash(_ context.Context, userID, tokenHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.byID[userID].RefreshTokenHash = tokenHash
	return nil
}

func (store *fakeUserStore) RotateRefreshTokenHash(_ context.Context, userID, oldHash, newHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.byID[userID]
	if !ok || user.RefreshTokenHash != oldHash {
		return apperr.SessionInvalid()
	}
	user.RefreshTokenHash = newHash
	return nil
}

func (store *fakeUserStore) ClearRefreshToken(_ context.Context, userID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if user, ok := store.byID[userID]; ok {
		user.RefreshTokenHash = ""
	}
	return nil
}

func (store *fakeUserStore) SetResetToken(_ context.Context, userID, tokenHash string, expiry time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	user := store.byID[userID]
	user.ResetTokenHash = tokenHash
	user.ResetTokenExpiry = &expiry
	return nil
}

func (store *fakeUserStore) CompletePasswordReset(_ context.Context, userID, newPasswordHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	user := store.byID[userID]
	user.PasswordHash = newPasswordHash
	user.ResetTokenHash = ""
	user.ResetTokenExpiry = nil
	user.RefreshTokenHash = ""
	return nil
}

func (store *fakeUserStore) UpdatePassword(_ context.Context, userID, newPasswordHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.byID[userID].PasswordHash = newPasswordHash
	return nil
}

// capturingPublisher records every published event for assertions.
type capturingPublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	channel string
	payload map[string]any
}

func (publisher *capturingPublisher) Publish(_ context.Context, channel string, payload interface{}) error {
	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	publisher.events = append(publisher.events, capturedEvent{
		channel: channel,
		payload: payload.(map[string]any),
	})
	return nil
}

func (publisher *capturingPublisher) last(channel string) (map[string]any, bool) {
	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	for i := len(publisher.events) - 1; i >= 0; i-- {
		if publisher.events[i].channel == channel {
			return publisher.events[i].payload, true
		}
	}
	return nil, false
}

func newTestService(t *testing.T) (*Service, *fakeUserStore, *capturingPublisher) {
	t.Helper()

	codec, err := sec.NewTokenService(
		"test-access-secret-at-least-32-bytes-long",
		"test-refresh-secret-also-32-bytes-long!!",
		constants.AuthIssuer)
	require.NoError(t, err)

	store := newFakeUserStore()
	publisher := &capturingPublisher{}
	service := NewService(store, codec, publisher, slog.Default())
	return service, store, publisher
}

func registerTestUser(t *testing.T, service *Service) *Session {
	t.Helper()
	session, err := service.Register(context.Background(), RegisterInput{
		Email:    "aline@example.com",
		Password: "sup3rsecret",
		Name:     "Aline Torres",
		Username: "aline.t",
	})
	require.NoError(t, err)
	return session
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	service, _, publisher := newTestService(t)

	session := registerTestUser(t, service)
	require.NotNil(t, session.User)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, sec.RoleUser, session.User.Role)
	assert.True(t, session.User.IsActive)

	payload, ok := publisher.last(constants.ChannelUserRegistered)
	require.True(t, ok)
	assert.Equal(t, session.User.ID, payload["user_id"])

	loginSession, err := service.Login(context.Background(), "aline@example.com", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, loginSession.User.ID)
}

func TestRegisterSerializationLeaksNoCredentials(t *testing.T) {
	service, _, _ := newTestService(t)
	session := registerTestUser(t, service)

	raw, err := json.Marshal(session.User)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, forbidden := range []string{"PasswordHash", "password_hash", "RefreshTokenHash", "refresh_token_hash", "ResetTokenHash"} {
		assert.NotContains(t, fields, forbidden)
	}
}

func TestRegisterConflicts(t *testing.T) {
	service, _, _ := newTestService(t)
	registerTestUser(t, service)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "aline@EXAMPLE.COM",
		Password: "another9",
		Name:     "Imposter",
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict), "domain case must not dodge the uniqueness check")

	// Visually equivalent username spellings collide after normalization.
	_, err = service.Register(context.Background(), RegisterInput{
		Email:    "other@example.com",
		Password: "another9",
		Name:     "Other",
		Username: "Áline.T",
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

func TestLoginFailureParity(t *testing.T) {
	service, _, _ := newTestService(t)
	registerTestUser(t, service)

	_, wrongPassword := service.Login(context.Background(), "aline@example.com", "not-the-password")
	_, unknownEmail := service.Login(context.Background(), "nobody@example.com", "sup3rsecret")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, apperr.As(wrongPassword).Code, apperr.As(unknownEmail).Code)
	assert.Equal(t, apperr.As(wrongPassword).HTTPStatus, apperr.As(unknownEmail).HTTPStatus)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	service, store, _ := newTestService(t)
	session := registerTestUser(t, service)

	store.byID[session.User.ID].IsActive = false

	_, err := service.Login(context.Background(), "aline@example.com", "sup3rsecret")
	assert.True(t, apperr.HasCode(err, apperr.CodeAccountDeactivated))

	// Wrong password on a deactivated account must not reveal the
	// deactivation, otherwise the error doubles as a password oracle.
	_, err = service.Login(context.Background(), "aline@example.com", "wrong")
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidCredentials))
}

func TestRefreshRotation(t *testing.T) {
	service, _, _ := newTestService(t)
	session := registerTestUser(t, service)

	rotated, err := service.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)
	assert.NotEmpty(t, rotated.AccessToken)

	// The superseded token is dead.
	_, err = service.Refresh(context.Background(), session.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeSessionInvalid))

	// The rotated token still works.
	_, err = service.Refresh(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsWrongTokenKinds(t *testing.T) {
	service, _, _ := newTestService(t)
	session := registerTestUser(t, service)

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{"access token presented as refresh", session.AccessToken, apperr.CodeSessionExpired},
		{"garbage", "not.a.token", apperr.CodeSessionExpired},
		{"empty", "", apperr.CodeSessionExpired},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := service.Refresh(context.Background(), test.token)
			assert.True(t, apperr.HasCode(err, test.code))
		})
	}
}

func TestLogoutIsIdempotentAndKillsRefresh(t *testing.T) {
	service, _, _ := newTestService(t)
	session := registerTestUser(t, service)

	require.NoError(t, service.Logout(context.Background(), session.User.ID))
	require.NoError(t, service.Logout(context.Background(), session.User.ID))
	require.NoError(t, service.Logout(context.Background(), ""))

	_, err := service.Refresh(context.Background(), session.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeSessionInvalid))
}

func TestPasswordResetRoundTrip(t *testing.T) {
	service, _, publisher := newTestService(t)
	session := registerTestUser(t, service)

	require.NoError(t, service.RequestReset(context.Background(), "aline@example.com"))

	payload, ok := publisher.last(constants.ChannelResetRequested)
	require.True(t, ok, "reset request must emit the token over the event sink")
	resetToken, _ := payload["reset_token"].(string)
	require.NotEmpty(t, resetToken)

	require.NoError(t, service.ResetPassword(context.Background(), resetToken, "freshersecret"))

	// Old password dead, new password live.
	_, err := service.Login(context.Background(), "aline@example.com", "sup3rsecret")
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidCredentials))
	_, err = service.Login(context.Background(), "aline@example.com", "freshersecret")
	require.NoError(t, err)

	// Pre-reset sessions are ended.
	_, err = service.Refresh(context.Background(), session.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeSessionInvalid))

	// The token is single-use.
	err = service.ResetPassword(context.Background(), resetToken, "yetanother1")
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidResetToken))
}

func TestResetPasswordValidatesBeforeConsumingToken(t *testing.T) {
	service, _, publisher := newTestService(t)
	registerTestUser(t, service)

	require.NoError(t, service.RequestReset(context.Background(), "aline@example.com"))
	payload, _ := publisher.last(constants.ChannelResetRequested)
	resetToken := payload["reset_token"].(string)

	// A weak password fails first and leaves the token live.
	err := service.ResetPassword(context.Background(), resetToken, "tiny")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	require.NoError(t, service.ResetPassword(context.Background(), resetToken, "longenough"))
}

func TestResetRequestSupersedesPrevious(t *testing.T) {
	service, _, publisher := newTestService(t)
	registerTestUser(t, service)

	require.NoError(t, service.RequestReset(context.Background(), "aline@example.com"))
	first, _ := publisher.last(constants.ChannelResetRequested)
	firstToken := first["reset_token"].(string)

	require.NoError(t, service.RequestReset(context.Background(), "aline@example.com"))
	second, _ := publisher.last(constants.ChannelResetRequested)
	secondToken := second["reset_token"].(string)
	require.NotEqual(t, firstToken, secondToken)

	err := service.ResetPassword(context.Background(), firstToken, "longenough")
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidResetToken))

	require.NoError(t, service.ResetPassword(context.Background(), secondToken, "longenough"))
}

func TestRequestResetHidesUnknownEmails(t *testing.T) {
	service, _, publisher := newTestService(t)

	require.NoError(t, service.RequestReset(context.Background(), "ghost@example.com"))
	_, emitted := publisher.last(constants.ChannelResetRequested)
	assert.False(t, emitted)
}

func TestChangePassword(t *testing.T) {
	service, _, _ := newTestService(t)
	session := registerTestUser(t, service)

	err := service.ChangePassword(context.Background(), session.User.ID, "wrong-current", "nextsecret")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	err = service.ChangePassword(context.Background(), session.User.ID, "sup3rsecret", "short")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	require.NoError(t, service.ChangePassword(context.Background(), session.User.ID, "sup3rsecret", "nextsecret"))

	_, err = service.Login(context.Background(), "aline@example.com", "nextsecret")
	require.NoError(t, err)

	// The refresh anchor is cleared so other devices must re-authenticate.
	_, err = service.Refresh(context.Background(), session.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeSessionInvalid))
}

func TestResolveIdentity(t *testing.T) {
	service, store, _ := newTestService(t)
	session := registerTestUser(t, service)

	identity, err := service.ResolveIdentity(context.Background(), session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, identity.ID)
	assert.Equal(t, session.User.Email, identity.Email)
	assert.Equal(t, sec.RoleUser, identity.Role)

	// Deactivation cuts access immediately, live access token or not.
	store.byID[session.User.ID].IsActive = false
	_, err = service.ResolveIdentity(context.Background(), session.AccessToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	_, err = service.ResolveIdentity(context.Background(), session.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	_, err = service.ResolveIdentity(context.Background(), "junk")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("exactly6"))
	assert.Error(t, ValidatePassword("five5"))
	assert.Error(t, ValidatePassword(string(make([]byte, MaxPasswordLength+1))))
}
