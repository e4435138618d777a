// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package account

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ChangePasswordService changes a known password for an already
// authenticated user. Resolving the caller's identity from an existing
// session credential happens upstream; this service trusts the userID
// it is handed.
type ChangePasswordService struct {
	creds    CredentialRepository
	sessions SessionRepository
	hasher   PasswordHasher
	issuer   TokenIssuer
	policy   PasswordPolicy
	metrics  Metrics
}

// NewChangePasswordService creates a new ChangePasswordService.
// metrics may be nil to disable recording.
func NewChangePasswordService(
	creds CredentialRepository,
	sessions SessionRepository,
	hasher PasswordHasher,
	issuer TokenIssuer,
	policy PasswordPolicy,
	metrics Metrics,
) (*ChangePasswordService, error) {
	if creds == nil {
		return nil, oops.Code("SERVICE_INVALID").Errorf("credential repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("SERVICE_INVALID").Errorf("session repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("SERVICE_INVALID").Errorf("password hasher is required")
	}
	if issuer == nil {
		return nil, oops.Code("SERVICE_INVALID").Errorf("token issuer is required")
	}
	return &ChangePasswordService{
		creds:    creds,
		sessions: sessions,
		hasher:   hasher,
		issuer:   issuer,
		policy:   policy,
		metrics:  metrics,
	}, nil
}

// ChangePassword verifies the old password, replaces the stored hash,
// revokes every existing session for the user, and returns a fresh
// session credential.
//
// The side effects are ordered: the hash update commits before session
// revocation is attempted, and revocation commits before the new token
// is issued. Committed steps are not rolled back on later failure -
// sessions can end up revoked without a new token being issued, which
// only biases toward stricter security.
func (s *ChangePasswordService) ChangePassword(ctx context.Context, userID ulid.ULID, oldPassword, newPassword, newPasswordConfirmation string) (*SessionToken, error) {
	if err := s.policy.Validate(newPassword, newPasswordConfirmation); err != nil {
		s.record(OutcomeRejected)
		return nil, err
	}

	cred, err := s.creds.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// A missing credential row reads the same as a wrong password.
			s.record(OutcomeRejected)
			return nil, oops.Code("AUTH_INCORRECT_LOGIN").Errorf("incorrect login")
		}
		s.record(OutcomeError)
		return nil, oops.Code("STORE_UNAVAILABLE").
			With("operation", "get credential").
			Wrap(err)
	}

	// Verifier-internal errors are collapsed into "wrong password" so the
	// caller cannot distinguish the failure modes.
	if !verifyQuiet(s.hasher, oldPassword, cred.PasswordHash) {
		s.record(OutcomeRejected)
		return nil, oops.Code("AUTH_INCORRECT_LOGIN").Errorf("incorrect login")
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.record(OutcomeError)
		return nil, oops.Code("AUTH_CHANGE_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	if err := s.creds.UpdateHash(ctx, userID, newHash); err != nil {
		s.record(OutcomeError)
		return nil, oops.Code("STORE_UNAVAILABLE").
			With("operation", "update hash").
			Wrap(err)
	}

	// Unconditional, including the caller's own current session: a
	// password change forces re-authentication everywhere.
	if err := s.sessions.InvalidateAll(ctx, userID); err != nil {
		s.record(OutcomeError)
		return nil, oops.Code("STORE_UNAVAILABLE").
			With("operation", "invalidate sessions").
			Wrap(err)
	}

	// The issuer codes its own failures: store I/O while persisting the
	// token is STORE_UNAVAILABLE, signing is SESSION_ISSUE_FAILED.
	token, err := s.issuer.Issue(ctx, userID)
	if err != nil {
		s.record(OutcomeError)
		return nil, oops.With("operation", "issue session token").Wrap(err)
	}

	s.record(OutcomeOK)
	return token, nil
}

func (s *ChangePasswordService) record(outcome string) {
	if s.metrics != nil {
		s.metrics.PasswordChange(outcome)
	}
}
