// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package main

import (
	"log/slog"
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/emberfed/ember/internal/store"
	"github.com/emberfed/ember/pkg/errutil"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending database migrations against the PostgreSQL database.`,
		RunE:  runMigrateUp,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runMigrateStatus,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Long:  `Down rolls back every migration. This drops all tables and data.`,
		RunE:  runMigrateDown,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "steps <n>",
		Short: "Apply n migrations (negative n rolls back)",
		Args:  cobra.ExactArgs(1),
		RunE:  runMigrateSteps,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Force the migration version without running migrations",
		Long: `Force sets the recorded migration version. Use only to recover from
a dirty state after manually fixing the database.`,
		Args: cobra.ExactArgs(1),
		RunE: runMigrateForce,
	})

	return cmd
}

// openMigrator builds a Migrator from the resolved configuration.
func openMigrator(cmd *cobra.Command) (*store.Migrator, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	return store.NewMigrator(cfg.Database.URL)
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	migrator, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeMigrator(cmd, migrator)

	cmd.Println("Running migrations...")
	if err := migrator.Up(); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	migrator, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeMigrator(cmd, migrator)

	cmd.Println("Rolling back all migrations...")
	if err := migrator.Down(); err != nil {
		return err
	}
	cmd.Println("Rollback completed")
	return nil
}

func runMigrateSteps(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return oops.Code("INVALID_STEPS").
			With("argument", args[0]).
			Errorf("steps must be an integer")
	}

	migrator, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeMigrator(cmd, migrator)

	if err := migrator.Steps(n); err != nil {
		return err
	}
	cmd.Printf("Applied %d migration steps\n", n)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	migrator, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeMigrator(cmd, migrator)

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	cmd.Printf("Current version: %d (dirty: %v)\n", version, dirty)

	pending, err := migrator.PendingMigrations()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		cmd.Println("No pending migrations")
		return nil
	}
	cmd.Printf("Pending migrations: %v\n", pending)
	return nil
}

func runMigrateForce(cmd *cobra.Command, args []string) error {
	version, err := parseVersionArg(args[0])
	if err != nil {
		return err
	}

	migrator, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeMigrator(cmd, migrator)

	if err := migrator.Force(version); err != nil {
		return err
	}
	cmd.Printf("Forced migration version to %d\n", version)
	return nil
}

// parseVersionArg parses a non-negative migration version.
func parseVersionArg(arg string) (int, error) {
	version, err := strconv.Atoi(arg)
	if err != nil || version < 0 {
		return 0, oops.Code("INVALID_VERSION").
			With("argument", arg).
			Errorf("version must be a non-negative integer")
	}
	return version, nil
}

// closeMigrator closes the migrator, logging rather than masking errors.
func closeMigrator(_ *cobra.Command, migrator *store.Migrator) {
	if err := migrator.Close(); err != nil {
		errutil.LogError(slog.Default(), "failed to close migrator", err)
	}
}
