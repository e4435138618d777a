// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/emberfed/ember/internal/account"
)

// CredentialRepository implements account.CredentialRepository using PostgreSQL.
type CredentialRepository struct {
	pool poolIface
}

// NewCredentialRepository creates a new CredentialRepository.
func NewCredentialRepository(pool poolIface) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

// GetByUser retrieves the credential for a user.
func (r *CredentialRepository) GetByUser(ctx context.Context, userID ulid.ULID) (*account.UserCredential, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, password_hash, updated_at
		FROM users
		WHERE id = $1
	`, userID.String())

	var (
		idStr        string
		passwordHash string
		updatedAt    time.Time
	)
	err := row.Scan(&idStr, &passwordHash, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CREDENTIAL_NOT_FOUND").
			With("user_id", userID.String()).
			Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CREDENTIAL_GET_FAILED").
			With("operation", "get credential").
			With("user_id", userID.String()).
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("CREDENTIAL_INVALID_ID").
			With("operation", "parse user id").
			With("user_id", idStr).
			Wrap(err)
	}

	return &account.UserCredential{
		UserID:       id,
		PasswordHash: passwordHash,
		UpdatedAt:    updatedAt,
	}, nil
}

// UpdateHash atomically replaces the stored password hash for a user.
func (r *CredentialRepository) UpdateHash(ctx context.Context, userID ulid.ULID, passwordHash string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`, userID.String(), passwordHash)
	if err != nil {
		return oops.Code("CREDENTIAL_UPDATE_FAILED").
			With("operation", "update password hash").
			With("user_id", userID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("CREDENTIAL_NOT_FOUND").
			With("user_id", userID.String()).
			Wrap(account.ErrNotFound)
	}
	return nil
}

// Compile-time interface check.
var _ account.CredentialRepository = (*CredentialRepository)(nil)
