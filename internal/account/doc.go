// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

// Package account provides the credential lifecycle primitives for Ember.
//
// # Domain Types
//
// Domain types (UserCredential, ResetToken, LoginToken) should be created
// using their respective constructors:
//   - NewResetToken - creates a ResetToken with a validated user and token hash
//   - NewLoginToken - creates a LoginToken with a validated user and expiry
//
// Direct struct initialization bypasses validation and may create invalid state.
// Repository implementations receive pre-validated types from these constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - ChangePasswordService - authenticated password change with session revocation
//   - ResetService - reset token issuance, rate limiting, and redemption
//
// Services are created with New*Service constructors that validate dependencies.
// Every credential change revokes all existing login tokens for the user before
// a replacement session credential is issued.
package account
