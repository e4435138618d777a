// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package account

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Reset token configuration.
const (
	ResetTokenBytes      = 32             // 32 bytes = 64 hex chars
	DefaultResetTokenTTL = 24 * time.Hour // tokens older than this are unredeemable
)

// ResetToken is a single password reset request. Rows are append-only:
// Valid flips to false exactly once when the token is consumed, and
// expired rows simply stop matching; nothing in this core deletes them.
type ResetToken struct {
	ID        ulid.ULID
	UserID    ulid.ULID
	TokenHash string
	Valid     bool
	CreatedAt time.Time
}

// NewResetToken creates a validated ResetToken in the usable state.
func NewResetToken(userID ulid.ULID, tokenHash string) (*ResetToken, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("RESET_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("RESET_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	return &ResetToken{
		ID:        ulid.Make(),
		UserID:    userID,
		TokenHash: tokenHash,
		Valid:     true,
		CreatedAt: time.Now(),
	}, nil
}

// GenerateResetToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token goes to the caller for out-of-band delivery;
// only the hash is stored.
func GenerateResetToken() (token, hash string, err error) {
	tokenBytes := make([]byte, ResetTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("RESET_TOKEN_GENERATE_FAILED").Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = hashResetToken(token)

	return token, hash, nil
}

// hashResetToken computes the SHA256 hash of a token.
func hashResetToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// ResetTokenRepository manages reset token persistence.
//
// Time-window comparisons are evaluated against the store's own clock so
// that redemption and rate limiting do not depend on host clock agreement.
type ResetTokenRepository interface {
	// Create stores a new reset token row in the usable state.
	Create(ctx context.Context, reset *ResetToken) error

	// Consume atomically locates the usable, unexpired row matching
	// tokenHash and flips it to invalid in the same operation, returning
	// the consumed row. Returns ErrNotFound when no such row exists: a wrong
	// token, an already consumed token, and an expired token are
	// indistinguishable here. Two racing calls on the same token see
	// exactly one success.
	Consume(ctx context.Context, tokenHash string, ttl time.Duration) (*ResetToken, error)

	// RecentCount returns the number of reset rows created for the user
	// within the window, regardless of validity.
	RecentCount(ctx context.Context, userID ulid.ULID, window time.Duration) (int64, error)
}
