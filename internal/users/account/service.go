// Copyright (c) 2026 Worklane. All rights reserved.

package account

import (
	"context"
	"log/slog"
)

// Service exposes profile reads and the admin activate/deactivate flows.
type Service struct {
	profiles ProfileStore
	logger   *slog.Logger
}

// NewService wires the account service.
func NewService(profiles ProfileStore, logger *slog.Logger) *Service {
	return &Service{profiles: profiles, logger: logger}
}

// GetProfile returns the public projection of the given account.
func (service *Service) GetProfile(context context.Context, userID string) (*Profile, error) {
	return service.profiles.FindByID(context, userID)
}

// Deactivate disables an account. Sessions die immediately because identity
// resolution re-checks the active flag on every request.
func (service *Service) Deactivate(context context.Context, userID string) error {
	if err := service.profiles.SetActive(context, userID, false); err != nil {
		return err
	}
	service.logger.Info("account deactivated", "user_id", userID)
	return nil
}

// Activate re-enables a previously deactivated account.
func (service *Service) Activate(context context.Context, userID string) error {
	if err := service.profiles.SetActive(context, userID, true); err != nil {
		return err
	}
	service.logger.Info("account activated", "user_id", userID)
	return nil
}
