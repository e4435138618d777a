// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberfed/ember/internal/account"
	"github.com/emberfed/ember/internal/account/postgres"
	"github.com/emberfed/ember/pkg/errutil"
)

// createTestUser inserts a user row and schedules its removal.
func createTestUser(ctx context.Context, t *testing.T, username string) ulid.ULID {
	t.Helper()
	userID := ulid.Make()
	_, err := testPool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, 'testhash', now(), now())
	`, userID.String(), username)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID.String())
	})

	return userID
}

func TestCredentialRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewCredentialRepository(testPool)

	t.Run("round-trips a hash update", func(t *testing.T) {
		userID := createTestUser(ctx, t, "cred_roundtrip")

		require.NoError(t, repo.UpdateHash(ctx, userID, "$argon2id$updated"))

		cred, err := repo.GetByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID, cred.UserID)
		assert.Equal(t, "$argon2id$updated", cred.PasswordHash)
	})

	t.Run("unknown user maps to ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByUser(ctx, ulid.Make())
		require.Error(t, err)
		assert.True(t, errors.Is(err, account.ErrNotFound))

		err = repo.UpdateHash(ctx, ulid.Make(), "$argon2id$updated")
		require.Error(t, err)
		assert.True(t, errors.Is(err, account.ErrNotFound))
	})
}

func TestResetTokenRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewResetTokenRepository(testPool)

	createReset := func(t *testing.T, userID ulid.ULID, hash string) *account.ResetToken {
		t.Helper()
		reset, err := account.NewResetToken(userID, hash)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, reset))
		t.Cleanup(func() {
			_, _ = testPool.Exec(ctx, `DELETE FROM password_resets WHERE id = $1`, reset.ID.String())
		})
		return reset
	}

	t.Run("consume succeeds exactly once", func(t *testing.T) {
		userID := createTestUser(ctx, t, "reset_consume_once")
		createReset(t, userID, "consume_once_hash")

		reset, err := repo.Consume(ctx, "consume_once_hash", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, userID, reset.UserID)
		assert.False(t, reset.Valid) // RETURNING reports the post-update row

		_, err = repo.Consume(ctx, "consume_once_hash", time.Hour)
		require.Error(t, err)
		assert.True(t, errors.Is(err, account.ErrNotFound))
	})

	t.Run("racing consumers settle on a single winner", func(t *testing.T) {
		userID := createTestUser(ctx, t, "reset_consume_race")
		createReset(t, userID, "race_hash")

		start := make(chan struct{})
		results := make(chan error, 2)
		for i := 0; i < 2; i++ {
			go func() {
				<-start
				_, err := repo.Consume(ctx, "race_hash", time.Hour)
				results <- err
			}()
		}
		close(start)

		var consumed, rejected int
		for i := 0; i < 2; i++ {
			switch err := <-results; {
			case err == nil:
				consumed++
			case errors.Is(err, account.ErrNotFound):
				rejected++
			default:
				t.Fatalf("unexpected consume error: %v", err)
			}
		}
		assert.Equal(t, 1, consumed)
		assert.Equal(t, 1, rejected)
	})

	t.Run("expired token does not consume", func(t *testing.T) {
		userID := createTestUser(ctx, t, "reset_consume_expired")
		reset := createReset(t, userID, "expired_hash")

		// Backdate the row past the TTL.
		_, err := testPool.Exec(ctx, `
			UPDATE password_resets SET created_at = now() - interval '2 hours' WHERE id = $1
		`, reset.ID.String())
		require.NoError(t, err)

		_, err = repo.Consume(ctx, "expired_hash", time.Hour)
		require.Error(t, err)
		assert.True(t, errors.Is(err, account.ErrNotFound))
	})

	t.Run("duplicate token hash is rejected", func(t *testing.T) {
		userID := createTestUser(ctx, t, "reset_dup_hash")
		createReset(t, userID, "duplicate_hash")

		dup, err := account.NewResetToken(userID, "duplicate_hash")
		require.NoError(t, err)
		err = repo.Create(ctx, dup)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_CREATE_FAILED")
	})

	t.Run("recent count includes consumed rows inside the window", func(t *testing.T) {
		userID := createTestUser(ctx, t, "reset_recent_count")
		createReset(t, userID, "recent_hash_1")
		createReset(t, userID, "recent_hash_2")

		_, err := repo.Consume(ctx, "recent_hash_1", time.Hour)
		require.NoError(t, err)

		count, err := repo.RecentCount(ctx, userID, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("recent count excludes rows outside the window", func(t *testing.T) {
		userID := createTestUser(ctx, t, "reset_recent_window")
		reset := createReset(t, userID, "old_hash")

		_, err := testPool.Exec(ctx, `
			UPDATE password_resets SET created_at = now() - interval '2 hours' WHERE id = $1
		`, reset.ID.String())
		require.NoError(t, err)

		count, err := repo.RecentCount(ctx, userID, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestSessionRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewSessionRepository(testPool)

	createSession := func(t *testing.T, userID ulid.ULID, hash string, expiresAt time.Time) *account.LoginToken {
		t.Helper()
		token, err := account.NewLoginToken(userID, hash, expiresAt)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, token))
		t.Cleanup(func() {
			_, _ = testPool.Exec(ctx, `DELETE FROM login_tokens WHERE id = $1`, token.ID.String())
		})
		return token
	}

	countSessions := func(t *testing.T, userID ulid.ULID) int64 {
		t.Helper()
		var count int64
		err := testPool.QueryRow(ctx, `
			SELECT count(*) FROM login_tokens WHERE user_id = $1
		`, userID.String()).Scan(&count)
		require.NoError(t, err)
		return count
	}

	t.Run("invalidate all removes every session for the user only", func(t *testing.T) {
		userID := createTestUser(ctx, t, "session_invalidate")
		otherID := createTestUser(ctx, t, "session_bystander")
		future := time.Now().Add(time.Hour)

		createSession(t, userID, "sess_hash_1", future)
		createSession(t, userID, "sess_hash_2", future)
		createSession(t, otherID, "sess_hash_other", future)

		require.NoError(t, repo.InvalidateAll(ctx, userID))
		assert.Equal(t, int64(0), countSessions(t, userID))
		assert.Equal(t, int64(1), countSessions(t, otherID))
	})

	t.Run("invalidate all with no sessions is fine", func(t *testing.T) {
		require.NoError(t, repo.InvalidateAll(ctx, ulid.Make()))
	})

	t.Run("delete expired removes only stale sessions", func(t *testing.T) {
		userID := createTestUser(ctx, t, "session_expired")

		createSession(t, userID, "live_hash", time.Now().Add(time.Hour))
		stale := createSession(t, userID, "stale_hash", time.Now().Add(time.Hour))
		_, err := testPool.Exec(ctx, `
			UPDATE login_tokens SET expires_at = now() - interval '1 minute' WHERE id = $1
		`, stale.ID.String())
		require.NoError(t, err)

		deleted, err := repo.DeleteExpired(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, deleted, int64(1))
		assert.Equal(t, int64(1), countSessions(t, userID))
	})
}
