// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package account

import (
	"time"

	"github.com/samber/oops"
)

// Password length bounds applied when a policy leaves them unset.
const (
	DefaultMinPasswordLength = 10
	DefaultMaxPasswordLength = 60
)

// PasswordPolicy validates candidate passwords on credential changes.
// The zero value applies the default length bounds.
type PasswordPolicy struct {
	MinLength int
	MaxLength int
}

// DefaultPasswordPolicy returns the policy with default length bounds.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength: DefaultMinPasswordLength,
		MaxLength: DefaultMaxPasswordLength,
	}
}

// Validate checks a new password and its confirmation.
// Length is checked before the confirmation so a too-short password is
// reported as weak even when the confirmation also differs.
func (p PasswordPolicy) Validate(password, confirmation string) error {
	minLen := p.MinLength
	if minLen <= 0 {
		minLen = DefaultMinPasswordLength
	}
	maxLen := p.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxPasswordLength
	}

	if len(password) < minLen || len(password) > maxLen {
		return oops.Code("AUTH_WEAK_PASSWORD").
			With("min_length", minLen).
			With("max_length", maxLen).
			Errorf("password must be between %d and %d characters", minLen, maxLen)
	}
	if password != confirmation {
		return oops.Code("AUTH_PASSWORDS_DO_NOT_MATCH").
			Errorf("password and confirmation do not match")
	}
	return nil
}

// ResetPolicy governs reset token issuance.
// The zero value uses the default TTL and leaves rate limiting to the
// caller: the recent-request count is still computed, but nothing is
// refused.
type ResetPolicy struct {
	// TokenTTL is how long a reset token stays redeemable and also the
	// window used when counting recent requests.
	TokenTTL time.Duration

	// MaxRecentRequests refuses issuance once this many requests exist
	// within the TTL window. Zero or negative disables enforcement.
	MaxRecentRequests int
}

// EffectiveTTL returns the configured TTL, or the default when unset.
func (p ResetPolicy) EffectiveTTL() time.Duration {
	if p.TokenTTL <= 0 {
		return DefaultResetTokenTTL
	}
	return p.TokenTTL
}

// Exceeded reports whether the recent-request count hits the configured limit.
func (p ResetPolicy) Exceeded(recent int64) bool {
	return p.MaxRecentRequests > 0 && recent >= int64(p.MaxRecentRequests)
}
