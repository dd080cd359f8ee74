// Copyright (c) 2026 Worklane. All rights reserved.

package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/worklane/worklane/internal/platform/apperr"
	"github.com/worklane/worklane/internal/platform/dberr"
)

// PostgresProfileRepository implements [ProfileStore] over users.account.
type PostgresProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a PostgreSQL-backed profile store.
func NewProfileRepository(db *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// FindByID retrieves the public projection of an account.
func (repository *PostgresProfileRepository) FindByID(context context.Context, id string) (*Profile, error) {
	query := `
		SELECT id, email, username, name, role, isactive, createdat, updatedat
		FROM users.account
		WHERE id = $1`

	var (
		profile  Profile
		username *string
	)
	err := repository.db.QueryRow(context, query, id).Scan(
		&profile.ID, &profile.Email, &username, &profile.Name,
		&profile.Role, &profile.IsActive, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	if username != nil {
		profile.Username = *username
	}
	return &profile, nil
}

// SetActive flips the active flag. Deactivation also clears the refresh
// anchor in the same statement so live sessions end with the account.
func (repository *PostgresProfileRepository) SetActive(context context.Context, id string, active bool) error {
	query := `
		UPDATE users.account
		SET isactive = $2,
			refreshtokenhash = CASE WHEN $2 THEN refreshtokenhash ELSE NULL END,
			updatedat = now()
		WHERE id = $1`

	tag, err := repository.db.Exec(context, query, id, active)
	if err != nil {
		return fmt.Errorf("profile_repository_set_active_failed: %w", dberr.Wrap(err, "User"))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}
