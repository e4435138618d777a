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

// ResetTokenRepository implements account.ResetTokenRepository using PostgreSQL.
// The password_resets table is append-only: consumption flips the valid
// flag and nothing here deletes rows.
type ResetTokenRepository struct {
	pool poolIface
}

// NewResetTokenRepository creates a new ResetTokenRepository.
func NewResetTokenRepository(pool poolIface) *ResetTokenRepository {
	return &ResetTokenRepository{pool: pool}
}

// Create stores a new reset token row.
func (r *ResetTokenRepository) Create(ctx context.Context, reset *account.ResetToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO password_resets (id, user_id, token_hash, valid, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, reset.ID.String(), reset.UserID.String(), reset.TokenHash, reset.Valid, reset.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("RESET_CREATE_FAILED").
				With("operation", "insert password_reset").
				With("cause", "token hash collision").
				Wrap(err)
		}
		return oops.Code("RESET_CREATE_FAILED").
			With("operation", "insert password_reset").
			With("user_id", reset.UserID.String()).
			Wrap(err)
	}
	return nil
}

// Consume flips the matching usable, unexpired row to invalid and returns
// it. The check and the flip are one conditional UPDATE so concurrent
// redemptions of the same token resolve to exactly one winner. Expiry is
// evaluated against the database clock.
func (r *ResetTokenRepository) Consume(ctx context.Context, tokenHash string, ttl time.Duration) (*account.ResetToken, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE password_resets
		SET valid = FALSE
		WHERE token_hash = $1
		  AND valid
		  AND created_at > now() - make_interval(secs => $2)
		RETURNING id, user_id, token_hash, valid, created_at
	`, tokenHash, ttl.Seconds())

	reset, err := r.scanReset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RESET_NOT_FOUND").Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return reset, nil
}

// RecentCount returns the number of reset rows for a user inside the
// window, regardless of validity. The window is evaluated against the
// database clock.
func (r *ResetTokenRepository) RecentCount(ctx context.Context, userID ulid.ULID, window time.Duration) (int64, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM password_resets
		WHERE user_id = $1
		  AND created_at > now() - make_interval(secs => $2)
	`, userID.String(), window.Seconds())

	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, oops.Code("RESET_COUNT_FAILED").
			With("operation", "count recent password_resets").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return count, nil
}

// scanReset scans a single row into a ResetToken.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *ResetTokenRepository) scanReset(row pgx.Row) (*account.ResetToken, error) {
	var (
		idStr     string
		userIDStr string
		tokenHash string
		valid     bool
		createdAt time.Time
	)

	err := row.Scan(&idStr, &userIDStr, &tokenHash, &valid, &createdAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("RESET_SCAN_FAILED").
			With("operation", "scan password_reset").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("RESET_INVALID_ID").
			With("operation", "parse reset id").
			With("id", idStr).
			Wrap(err)
	}

	userID, err := ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.Code("RESET_INVALID_USER_ID").
			With("operation", "parse user id").
			With("user_id", userIDStr).
			Wrap(err)
	}

	return &account.ResetToken{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		Valid:     valid,
		CreatedAt: createdAt,
	}, nil
}

// Compile-time interface check.
var _ account.ResetTokenRepository = (*ResetTokenRepository)(nil)
