// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package account

// Operation outcomes reported to Metrics.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics records credential operation outcomes. Implementations must be
// safe for concurrent use. Services accept a nil Metrics and skip recording.
type Metrics interface {
	PasswordChange(outcome string)
	ResetRequest(outcome string)
	ResetRedemption(outcome string)
}
