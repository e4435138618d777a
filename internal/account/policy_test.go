// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package account_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberfed/ember/internal/account"
	"github.com/emberfed/ember/pkg/errutil"
)

func TestPasswordPolicy_Validate(t *testing.T) {
	tests := []struct {
		name         string
		policy       account.PasswordPolicy
		password     string
		confirmation string
		expectCode   string
	}{
		{
			name:         "valid password and confirmation",
			policy:       account.DefaultPasswordPolicy(),
			password:     "long-enough-1",
			confirmation: "long-enough-1",
		},
		{
			name:         "too short",
			policy:       account.DefaultPasswordPolicy(),
			password:     "short",
			confirmation: "short",
			expectCode:   "AUTH_WEAK_PASSWORD",
		},
		{
			name:         "too long",
			policy:       account.DefaultPasswordPolicy(),
			password:     strings.Repeat("a", 61),
			confirmation: strings.Repeat("a", 61),
			expectCode:   "AUTH_WEAK_PASSWORD",
		},
		{
			name:         "exactly at minimum",
			policy:       account.DefaultPasswordPolicy(),
			password:     strings.Repeat("a", 10),
			confirmation: strings.Repeat("a", 10),
		},
		{
			name:         "exactly at maximum",
			policy:       account.DefaultPasswordPolicy(),
			password:     strings.Repeat("a", 60),
			confirmation: strings.Repeat("a", 60),
		},
		{
			name:         "confirmation mismatch",
			policy:       account.DefaultPasswordPolicy(),
			password:     "long-enough-1",
			confirmation: "long-enough-2",
			expectCode:   "AUTH_PASSWORDS_DO_NOT_MATCH",
		},
		{
			name:         "length checked before confirmation",
			policy:       account.DefaultPasswordPolicy(),
			password:     "short",
			confirmation: "different",
			expectCode:   "AUTH_WEAK_PASSWORD",
		},
		{
			name:         "zero value applies default bounds",
			policy:       account.PasswordPolicy{},
			password:     "short",
			confirmation: "short",
			expectCode:   "AUTH_WEAK_PASSWORD",
		},
		{
			name:         "custom bounds",
			policy:       account.PasswordPolicy{MinLength: 4, MaxLength: 8},
			password:     "okay",
			confirmation: "okay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate(tt.password, tt.confirmation)
			if tt.expectCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.expectCode)
		})
	}
}

func TestResetPolicy_EffectiveTTL(t *testing.T) {
	t.Run("zero value uses the default", func(t *testing.T) {
		assert.Equal(t, account.DefaultResetTokenTTL, account.ResetPolicy{}.EffectiveTTL())
	})

	t.Run("configured TTL wins", func(t *testing.T) {
		p := account.ResetPolicy{TokenTTL: time.Hour}
		assert.Equal(t, time.Hour, p.EffectiveTTL())
	})

	t.Run("negative TTL falls back to the default", func(t *testing.T) {
		p := account.ResetPolicy{TokenTTL: -time.Hour}
		assert.Equal(t, account.DefaultResetTokenTTL, p.EffectiveTTL())
	})
}

func TestResetPolicy_Exceeded(t *testing.T) {
	tests := []struct {
		name   string
		policy account.ResetPolicy
		recent int64
		want   bool
	}{
		{name: "under the limit", policy: account.ResetPolicy{MaxRecentRequests: 3}, recent: 2, want: false},
		{name: "at the limit", policy: account.ResetPolicy{MaxRecentRequests: 3}, recent: 3, want: true},
		{name: "over the limit", policy: account.ResetPolicy{MaxRecentRequests: 3}, recent: 10, want: true},
		{name: "zero disables enforcement", policy: account.ResetPolicy{}, recent: 1000, want: false},
		{name: "negative disables enforcement", policy: account.ResetPolicy{MaxRecentRequests: -1}, recent: 1000, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Exceeded(tt.recent))
		})
	}
}
