// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package account

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// JWTIssuer implements TokenIssuer by signing HS256 JWTs and recording
// their hashes in the session registry. A credential is only considered
// issued once its login token row is persisted.
type JWTIssuer struct {
	sessions SessionRepository
	secret   []byte
	ttl      time.Duration
}

// NewJWTIssuer creates a new JWTIssuer. A non-positive ttl falls back to
// DefaultSessionTTL.
func NewJWTIssuer(sessions SessionRepository, secret []byte, ttl time.Duration) (*JWTIssuer, error) {
	if sessions == nil {
		return nil, oops.Code("SESSION_ISSUER_INVALID").Errorf("session repository is required")
	}
	if len(secret) == 0 {
		return nil, oops.Code("SESSION_ISSUER_INVALID").Errorf("signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &JWTIssuer{sessions: sessions, secret: secret, ttl: ttl}, nil
}

// Issue mints a signed session credential for the user and records its
// hash in the session registry.
func (i *JWTIssuer) Issue(ctx context.Context, userID ulid.ULID) (*SessionToken, error) {
	now := time.Now()
	expiresAt := now.Add(i.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, oops.Code("SESSION_ISSUE_FAILED").
			With("operation", "sign token").
			Wrap(err)
	}

	token, err := NewLoginToken(userID, HashSessionToken(signed), expiresAt)
	if err != nil {
		return nil, oops.Code("SESSION_ISSUE_FAILED").
			With("operation", "create login token").
			Wrap(err)
	}

	// Persistence is backing-store I/O; its failures read as store
	// unavailability, not as a signing problem.
	if err := i.sessions.Create(ctx, token); err != nil {
		return nil, oops.Code("STORE_UNAVAILABLE").
			With("operation", "persist login token").
			Wrap(err)
	}

	return &SessionToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// ParseSessionToken validates a signed session token and returns the user
// it was issued to. It checks the signature and expiry claims only; the
// caller still needs the registry to know whether the token was revoked.
func ParseSessionToken(tokenString string, secret []byte) (ulid.ULID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ulid.ULID{}, oops.Code("SESSION_TOKEN_INVALID").Wrap(err)
	}
	if !token.Valid {
		return ulid.ULID{}, oops.Code("SESSION_TOKEN_INVALID").Errorf("token is not valid")
	}

	userID, err := ulid.Parse(claims.Subject)
	if err != nil {
		return ulid.ULID{}, oops.Code("SESSION_TOKEN_INVALID").
			With("operation", "parse subject").
			Wrap(err)
	}
	return userID, nil
}

// Compile-time interface check.
var _ TokenIssuer = (*JWTIssuer)(nil)
