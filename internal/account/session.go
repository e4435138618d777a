// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultSessionTTL is the validity window for issued session credentials.
const DefaultSessionTTL = 24 * time.Hour

// SessionToken is a freshly issued session credential handed back to the
// caller after a successful credential operation.
type SessionToken struct {
	Token     string
	ExpiresAt time.Time
}

// LoginToken is the stored record of an active session credential.
// Only the SHA256 hash of the signed token is persisted.
type LoginToken struct {
	ID        ulid.ULID
	UserID    ulid.ULID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewLoginToken creates a validated LoginToken instance.
func NewLoginToken(userID ulid.ULID, tokenHash string, expiresAt time.Time) (*LoginToken, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}
	return &LoginToken{
		ID:        ulid.Make(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpiredAt returns true if the login token would be expired at the given time.
func (t *LoginToken) IsExpiredAt(at time.Time) bool {
	return at.After(t.ExpiresAt)
}

// HashSessionToken computes the SHA256 hash of a session token.
// This is used to securely store tokens in the database.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SessionRepository manages login token persistence.
type SessionRepository interface {
	// Create stores a new login token.
	Create(ctx context.Context, token *LoginToken) error

	// InvalidateAll removes every login token for a user, rendering all
	// previously issued session credentials unusable. Removing zero rows
	// is a valid outcome, not an error.
	InvalidateAll(ctx context.Context, userID ulid.ULID) error

	// DeleteExpired removes all expired login tokens and returns the
	// count of deleted records.
	DeleteExpired(ctx context.Context) (int64, error)
}

// TokenIssuer mints a new session credential for a user after a
// successful credential operation.
type TokenIssuer interface {
	Issue(ctx context.Context, userID ulid.ULID) (*SessionToken, error)
}
