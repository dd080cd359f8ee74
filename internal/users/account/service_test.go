// Copyright (c) 2026 Worklane. All rights reserved.

package account

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklane/worklane/internal/platform/apperr"
)

type fakeProfileStore struct {
	profiles map[string]*Profile
}

func (store *fakeProfileStore) FindByID(_ context.Context, id string) (*Profile, error) {
	profile, ok := store.profiles[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *profile
	return &copied, nil
}

func (store *fakeProfileStore) SetActive(_ context.Context, id string, active bool) error {
	profile, ok := store.profiles[id]
	if !ok {
		return apperr.NotFound("User")
	}
	profile.IsActive = active
	return nil
}

func newTestAccountService() (*Service, *fakeProfileStore) {
	store := &fakeProfileStore{profiles: map[string]*Profile{
		"u-1": {
			ID:        "u-1",
			Email:     "aline@example.com",
			Name:      "Aline Torres",
			Role:      "user",
			IsActive:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}}
	return NewService(store, slog.Default()), store
}

func TestGetProfile(t *testing.T) {
	service, _ := newTestAccountService()

	profile, err := service.GetProfile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "aline@example.com", profile.Email)

	_, err = service.GetProfile(context.Background(), "u-missing")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestDeactivateActivateCycle(t *testing.T) {
	service, store := newTestAccountService()

	require.NoError(t, service.Deactivate(context.Background(), "u-1"))
	assert.False(t, store.profiles["u-1"].IsActive)

	require.NoError(t, service.Activate(context.Background(), "u-1"))
	assert.True(t, store.profiles["u-1"].IsActive)

	err := service.Deactivate(context.Background(), "u-missing")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
