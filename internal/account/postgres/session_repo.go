// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package postgres

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/emberfed/ember/internal/account"
)

// SessionRepository implements account.SessionRepository using PostgreSQL.
type SessionRepository struct {
	pool poolIface
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool poolIface) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new login token.
func (r *SessionRepository) Create(ctx context.Context, token *account.LoginToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO login_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, token.ID.String(), token.UserID.String(), token.TokenHash, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert login_token").
			With("user_id", token.UserID.String()).
			Wrap(err)
	}
	return nil
}

// InvalidateAll removes every login token for a user.
func (r *SessionRepository) InvalidateAll(ctx context.Context, userID ulid.ULID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM login_tokens WHERE user_id = $1
	`, userID.String())
	if err != nil {
		return oops.Code("SESSION_INVALIDATE_ALL_FAILED").
			With("operation", "delete login_tokens by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	// No ErrNotFound if no rows deleted - having no sessions is a valid state.
	return nil
}

// DeleteExpired removes all expired login tokens and returns the count.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM login_tokens WHERE expires_at < now()
	`)
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired login_tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ account.SessionRepository = (*SessionRepository)(nil)
