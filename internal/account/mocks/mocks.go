// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

// Package mocks provides testify mocks for the account repositories and
// capabilities, used by the service unit tests.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/emberfed/ember/internal/account"
)

// MockCredentialRepository mocks account.CredentialRepository.
type MockCredentialRepository struct {
	mock.Mock
}

// NewMockCredentialRepository creates a mock that asserts its
// expectations during test cleanup.
func NewMockCredentialRepository(t *testing.T) *MockCredentialRepository {
	t.Helper()
	m := &MockCredentialRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCredentialRepository) GetByUser(ctx context.Context, userID ulid.ULID) (*account.UserCredential, error) {
	args := m.Called(ctx, userID)
	var cred *account.UserCredential
	if v := args.Get(0); v != nil {
		cred = v.(*account.UserCredential)
	}
	return cred, args.Error(1)
}

func (m *MockCredentialRepository) UpdateHash(ctx context.Context, userID ulid.ULID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

// MockResetTokenRepository mocks account.ResetTokenRepository.
type MockResetTokenRepository struct {
	mock.Mock
}

func NewMockResetTokenRepository(t *testing.T) *MockResetTokenRepository {
	t.Helper()
	m := &MockResetTokenRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockResetTokenRepository) Create(ctx context.Context, reset *account.ResetToken) error {
	args := m.Called(ctx, reset)
	return args.Error(0)
}

func (m *MockResetTokenRepository) Consume(ctx context.Context, tokenHash string, ttl time.Duration) (*account.ResetToken, error) {
	args := m.Called(ctx, tokenHash, ttl)
	var reset *account.ResetToken
	if v := args.Get(0); v != nil {
		reset = v.(*account.ResetToken)
	}
	return reset, args.Error(1)
}

func (m *MockResetTokenRepository) RecentCount(ctx context.Context, userID ulid.ULID, window time.Duration) (int64, error) {
	args := m.Called(ctx, userID, window)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionRepository mocks account.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func NewMockSessionRepository(t *testing.T) *MockSessionRepository {
	t.Helper()
	m := &MockSessionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionRepository) Create(ctx context.Context, token *account.LoginToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionRepository) InvalidateAll(ctx context.Context, userID ulid.ULID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPasswordHasher mocks account.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	t.Helper()
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

// MockTokenIssuer mocks account.TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

func NewMockTokenIssuer(t *testing.T) *MockTokenIssuer {
	t.Helper()
	m := &MockTokenIssuer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenIssuer) Issue(ctx context.Context, userID ulid.ULID) (*account.SessionToken, error) {
	args := m.Called(ctx, userID)
	var token *account.SessionToken
	if v := args.Get(0); v != nil {
		token = v.(*account.SessionToken)
	}
	return token, args.Error(1)
}

// Compile-time interface checks.
var (
	_ account.CredentialRepository = (*MockCredentialRepository)(nil)
	_ account.ResetTokenRepository = (*MockResetTokenRepository)(nil)
	_ account.SessionRepository    = (*MockSessionRepository)(nil)
	_ account.PasswordHasher       = (*MockPasswordHasher)(nil)
	_ account.TokenIssuer          = (*MockTokenIssuer)(nil)
)
