// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package account

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// UserCredential is a user's stored login credential.
// The hash is opaque to everything except the PasswordHasher and is
// never logged or exposed outward.
type UserCredential struct {
	UserID       ulid.ULID
	PasswordHash string
	UpdatedAt    time.Time
}

// CredentialRepository manages credential persistence.
type CredentialRepository interface {
	// GetByUser retrieves the credential for a user.
	// Returns ErrNotFound if the user has no credential row.
	GetByUser(ctx context.Context, userID ulid.ULID) (*UserCredential, error)

	// UpdateHash atomically replaces the stored password hash for a user.
	// Returns ErrNotFound if the user has no credential row.
	UpdateHash(ctx context.Context, userID ulid.ULID, passwordHash string) error
}
