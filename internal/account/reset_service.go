// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package account

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ResetService handles password reset issuance and redemption.
type ResetService struct {
	creds     CredentialRepository
	resets    ResetTokenRepository
	sessions  SessionRepository
	hasher    PasswordHasher
	issuer    TokenIssuer
	passwords PasswordPolicy
	policy    ResetPolicy
	metrics   Metrics
}

// NewResetService creates a new ResetService.
// metrics may be nil to disable recording.
func NewResetService(
	creds CredentialRepository,
	resets ResetTokenRepository,
	sessions SessionRepository,
	hasher PasswordHasher,
	issuer TokenIssuer,
	passwords PasswordPolicy,
	policy ResetPolicy,
	metrics Metrics,
) (*ResetService, error) {
	if creds == nil {
		return nil, oops.Code("SERVICE_INVALID").Errorf("credential repository is required")
	}
	if resets == nil {
		return nil, oops.Code("SERVICE_INVALID").Errorf("reset token repository is required")
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
	return &ResetService{
		creds:     creds,
		resets:    resets,
		sessions:  sessions,
		hasher:    hasher,
		issuer:    issuer,
		passwords: passwords,
		policy:    policy,
		metrics:   metrics,
	}, nil
}

// RequestReset creates a reset token for the user after checking the
// rate-limit policy, and returns the plaintext token for out-of-band
// delivery. The token is never logged and never stored in the clear.
func (s *ResetService) RequestReset(ctx context.Context, userID ulid.ULID) (string, error) {
	recent, err := s.resets.RecentCount(ctx, userID, s.policy.EffectiveTTL())
	if err != nil {
		s.recordRequest(OutcomeError)
		return "", oops.Code("STORE_UNAVAILABLE").
			With("operation", "count recent requests").
			Wrap(err)
	}

	if s.policy.Exceeded(recent) {
		s.recordRequest(OutcomeRejected)
		return "", oops.Code("RESET_TOO_MANY_REQUESTS").
			With("recent_count", recent).
			With("max_recent", s.policy.MaxRecentRequests).
			Errorf("too many reset requests")
	}

	token, hash, err := GenerateResetToken()
	if err != nil {
		s.recordRequest(OutcomeError)
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "generate token").
			Wrap(err)
	}

	reset, err := NewResetToken(userID, hash)
	if err != nil {
		s.recordRequest(OutcomeError)
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "create reset token").
			Wrap(err)
	}

	if err := s.resets.Create(ctx, reset); err != nil {
		s.recordRequest(OutcomeError)
		return "", oops.Code("STORE_UNAVAILABLE").
			With("operation", "persist reset token").
			Wrap(err)
	}

	s.recordRequest(OutcomeOK)
	return token, nil
}

// RecentRequests returns the number of reset requests created for the
// user within the TTL window, for callers applying their own policy.
func (s *ResetService) RecentRequests(ctx context.Context, userID ulid.ULID) (int64, error) {
	recent, err := s.resets.RecentCount(ctx, userID, s.policy.EffectiveTTL())
	if err != nil {
		return 0, oops.Code("STORE_UNAVAILABLE").
			With("operation", "count recent requests").
			Wrap(err)
	}
	return recent, nil
}

// RedeemReset consumes a reset token and sets a new password for the
// token's user, revoking all their sessions and returning a fresh
// session credential. Possession of the token is the only authorization;
// no old-password check happens here.
//
// The new password is validated before the token is touched so a policy
// failure leaves the token redeemable. A wrong, already consumed, or
// expired token all fail identically.
func (s *ResetService) RedeemReset(ctx context.Context, token, newPassword, newPasswordConfirmation string) (*SessionToken, error) {
	if err := s.passwords.Validate(newPassword, newPasswordConfirmation); err != nil {
		s.recordRedemption(OutcomeRejected)
		return nil, err
	}

	if token == "" {
		s.recordRedemption(OutcomeRejected)
		return nil, oops.Code("RESET_TOKEN_INVALID_OR_EXPIRED").Errorf("reset token invalid or expired")
	}

	reset, err := s.resets.Consume(ctx, hashResetToken(token), s.policy.EffectiveTTL())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.recordRedemption(OutcomeRejected)
			return nil, oops.Code("RESET_TOKEN_INVALID_OR_EXPIRED").Errorf("reset token invalid or expired")
		}
		s.recordRedemption(OutcomeError)
		return nil, oops.Code("STORE_UNAVAILABLE").
			With("operation", "consume reset token").
			Wrap(err)
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.recordRedemption(OutcomeError)
		return nil, oops.Code("RESET_REDEEM_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	if err := s.creds.UpdateHash(ctx, reset.UserID, newHash); err != nil {
		if errors.Is(err, ErrNotFound) {
			// The account vanished between issuance and redemption; the
			// caller learns nothing beyond "token no longer works".
			s.recordRedemption(OutcomeRejected)
			return nil, oops.Code("RESET_TOKEN_INVALID_OR_EXPIRED").Errorf("reset token invalid or expired")
		}
		s.recordRedemption(OutcomeError)
		return nil, oops.Code("STORE_UNAVAILABLE").
			With("operation", "update hash").
			Wrap(err)
	}

	if err := s.sessions.InvalidateAll(ctx, reset.UserID); err != nil {
		s.recordRedemption(OutcomeError)
		return nil, oops.Code("STORE_UNAVAILABLE").
			With("operation", "invalidate sessions").
			Wrap(err)
	}

	// The issuer codes its own failures: store I/O while persisting the
	// token is STORE_UNAVAILABLE, signing is SESSION_ISSUE_FAILED.
	sessionToken, err := s.issuer.Issue(ctx, reset.UserID)
	if err != nil {
		s.recordRedemption(OutcomeError)
		return nil, oops.With("operation", "issue session token").Wrap(err)
	}

	s.recordRedemption(OutcomeOK)
	return sessionToken, nil
}

func (s *ResetService) recordRequest(outcome string) {
	if s.metrics != nil {
		s.metrics.ResetRequest(outcome)
	}
}

func (s *ResetService) recordRedemption(outcome string) {
	if s.metrics != nil {
		s.metrics.ResetRedemption(outcome)
	}
}
