// Copyright (c) 2026 Worklane. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/worklane/worklane/internal/platform/apperr"
	"github.com/worklane/worklane/internal/platform/dberr"
)

// Named unique constraints on users.account, used to translate 23505
// violations into precise conflict messages.
const (
	constraintAccountEmail    = "account_email_key"
	constraintAccountUsername = "account_username_key"
)

// accountColumns is the canonical select list for hydrating a [User].
const accountColumns = `id, email, username, name, passwordhash, role, isactive,
	refreshtokenhash, resettokenhash, resettokenexpiry, createdat, updatedat`

// PostgresUserRepository implements [UserStore] over the users.account table.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a PostgreSQL-backed user store.
func NewUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// FindByID retrieves an account by primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := `SELECT ` + accountColumns + ` FROM users.account WHERE id = $1`
	return repository.scanOne(context, query, id)
}

// FindByEmail retrieves an account by its unique email.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := `SELECT ` + accountColumns + ` FROM users.account WHERE email = $1`
	return repository.scanOne(context, query, email)
}

// FindByUsername retrieves an account by its unique canonical username.
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := `SELECT ` + accountColumns + ` FROM users.account WHERE username = $1`
	return repository.scanOne(context, query, username)
}

// FindByIDAndRefreshTokenHash retrieves an account only when the stored
// refresh-token hash matches the presented one. The hash comparison happens
// in the WHERE clause so a superseded token is indistinguishable from a
// missing account.
func (repository *PostgresUserRepository) FindByIDAndRefreshTokenHash(context context.Context, id, tokenHash string) (*User, error) {
	query := `SELECT ` + accountColumns + `
		FROM users.account
		WHERE id = $1 AND refreshtokenhash = $2`
	return repository.scanOne(context, query, id, tokenHash)
}

// FindByIDAndLiveResetToken retrieves an account only when the stored reset
// token matches and has not expired.
func (repository *PostgresUserRepository) FindByIDAndLiveResetToken(context context.Context, id, tokenHash string, now time.Time) (*User, error) {
	query := `SELECT ` + accountColumns + `
		FROM users.account
		WHERE id = $1 AND resettokenhash = $2 AND resettokenexpiry > $3`
	return repository.scanOne(context, query, id, tokenHash, now)
}

/*
Create inserts a new account row.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: apperr.Conflict naming the colliding field on a unique violation
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := `
		INSERT INTO users.account
			(id, email, username, name, passwordhash, role, isactive, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var username *string
	if user.Username != "" {
		username = &user.Username
	}

	_, err := repository.db.Exec(context, query,
		user.ID, user.Email, username, user.Name, user.PasswordHash,
		user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err, constraintAccountEmail) {
			return apperr.Conflict("Email is already registered")
		}
		if dberr.IsUniqueViolation(err, constraintAccountUsername) {
			return apperr.Conflict("Username is already taken")
		}
		return fmt.Errorf("user_repository_create_failed: %w", dberr.Wrap(err, "User"))
	}
	return nil
}

// SetRefreshTokenHash overwrites the refresh-token anchor, displacing any
// previous session.
func (repository *PostgresUserRepository) SetRefreshTokenHash(context context.Context, userID, tokenHash string) error {
	query := `UPDATE users.account SET refreshtokenhash = $2, updatedat = now() WHERE id = $1`
	if _, err := repository.db.Exec(context, query, userID, tokenHash); err != nil {
		return fmt.Errorf("user_repository_set_refresh_failed: %w", dberr.Wrap(err, "User"))
	}
	return nil
}

// RotateRefreshTokenHash swaps oldHash for newHash with a compare-and-set
// update. Zero affected rows means another caller rotated first, which maps
// to an invalid session rather than a retry.
func (repository *PostgresUserRepository) RotateRefreshTokenHash(context context.Context, userID, oldHash, newHash string) error {
	query := `
		UPDATE users.account
		SET refreshtokenhash = $3, updatedat = now()
		WHERE id = $1 AND refreshtokenhash = $2`

	tag, err := repository.db.Exec(context, query, userID, oldHash, newHash)
	if err != nil {
		return fmt.Errorf("user_repository_rotate_refresh_failed: %w", dberr.Wrap(err, "User"))
	}
	if tag.RowsAffected() == 0 {
		return apperr.SessionInvalid()
	}
	return nil
}

// ClearRefreshToken drops the refresh-token anchor. Already-cleared rows are
// fine, so the affected-row count is not checked.
func (repository *PostgresUserRepository) ClearRefreshToken(context context.Context, userID string) error {
	query := `UPDATE users.account SET refreshtokenhash = NULL, updatedat = now() WHERE id = $1`
	if _, err := repository.db.Exec(context, query, userID); err != nil {
		return fmt.Errorf("user_repository_clear_refresh_failed: %w", dberr.Wrap(err, "User"))
	}
	return nil
}

// SetResetToken stores the reset-token hash and expiry, superseding any
// previously issued token.
func (repository *PostgresUserRepository) SetResetToken(context context.Context, userID, tokenHash string, expiry time.Time) error {
	query := `
		UPDATE users.account
		SET resettokenhash = $2, resettokenexpiry = $3, updatedat = now()
		WHERE id = $1`
	if _, err := repository.db.Exec(context, query, userID, tokenHash, expiry); err != nil {
		return fmt.Errorf("user_repository_set_reset_failed: %w", dberr.Wrap(err, "User"))
	}
	return nil
}

// CompletePasswordReset installs the new password hash and clears both the
// reset-token state and the refresh anchor in one statement, so the token is
// consumed and every session dies atomically.
func (repository *PostgresUserRepository) CompletePasswordReset(context context.Context, userID, newPasswordHash string) error {
	query := `
		UPDATE users.account
		SET passwordhash = $2,
			resettokenhash = NULL,
			resettokenexpiry = NULL,
			refreshtokenhash = NULL,
			updatedat = now()
		WHERE id = $1`
	if _, err := repository.db.Exec(context, query, userID, newPasswordHash); err != nil {
		return fmt.Errorf("user_repository_complete_reset_failed: %w", dberr.Wrap(err, "User"))
	}
	return nil
}

// UpdatePassword replaces only the password hash.
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newPasswordHash string) error {
	query := `UPDATE users.account SET passwordhash = $2, updatedat = now() WHERE id = $1`
	if _, err := repository.db.Exec(context, query, userID, newPasswordHash); err != nil {
		return fmt.Errorf("user_repository_update_password_failed: %w", dberr.Wrap(err, "User"))
	}
	return nil
}

// scanOne runs a single-row query and hydrates a [User], translating
// pgx.ErrNoRows into apperr.NotFound.
func (repository *PostgresUserRepository) scanOne(context context.Context, query string, args ...any) (*User, error) {
	var (
		user        User
		username    *string
		refreshHash *string
		resetHash   *string
	)

	row := repository.db.QueryRow(context, query, args...)
	err := row.Scan(
		&user.ID, &user.Email, &username, &user.Name, &user.PasswordHash,
		&user.Role, &user.IsActive,
		&refreshHash, &resetHash, &user.ResetTokenExpiry,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	if username != nil {
		user.Username = *username
	}
	if refreshHash != nil {
		user.RefreshTokenHash = *refreshHash
	}
	if resetHash != nil {
		user.ResetTokenHash = *resetHash
	}
	return &user, nil
}
