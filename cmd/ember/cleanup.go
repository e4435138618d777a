// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	accountpg "github.com/emberfed/ember/internal/account/postgres"
	"github.com/emberfed/ember/internal/store"
)

// NewCleanupCmd creates the cleanup subcommand.
func NewCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired login tokens",
		Long: `Cleanup removes login tokens whose expiry has passed. Run it
periodically (for example from cron) to keep the login_tokens table small.`,
		RunE: runCleanup,
	}
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}

	ctx := cmd.Context()
	pool, err := store.NewPool(ctx, cfg.Database.URL, cfg.Database.ConnectTimeout)
	if err != nil {
		return err
	}
	defer pool.Close()

	sessions := accountpg.NewSessionRepository(pool)
	deleted, err := sessions.DeleteExpired(ctx)
	if err != nil {
		return err
	}

	slog.Info("expired login tokens removed", "count", deleted)
	cmd.Printf("Deleted %d expired login tokens\n", deleted)
	return nil
}
