// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

// Package store provides database connectivity and schema management.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection defaults.
const (
	defaultConnectTimeout = 30 * time.Second
	pingBackoffInitial    = 250 * time.Millisecond
)

// NewPool opens a pgx connection pool and waits for the database to
// answer a ping, retrying with exponential backoff until connectTimeout
// elapses. A non-positive timeout uses the default.
func NewPool(ctx context.Context, databaseURL string, connectTimeout time.Duration) (*pgxpool.Pool, error) {
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("operation", "create pool").
			Wrap(err)
	}

	backoff := retry.WithMaxDuration(connectTimeout, retry.NewExponential(pingBackoffInitial))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("operation", "ping database").
			With("timeout", connectTimeout.String()).
			Wrap(err)
	}

	return pool, nil
}
