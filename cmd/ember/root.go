// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/emberfed/ember/internal/config"
	"github.com/emberfed/ember/internal/logging"
	"github.com/emberfed/ember/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Ember CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ember",
		Short: "Ember - a federated link aggregator",
		Long: `Ember is a federated link aggregator. This binary provides the
operational tooling for its account credential subsystem: schema
migrations and expired session cleanup.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().String("database.url", "", "PostgreSQL connection URL")
	cmd.PersistentFlags().String("logging.format", "", "log format: json or text")

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewCleanupCmd())

	return cmd
}

// loadConfig resolves the effective configuration for a command and
// installs the default logger. When --config is not given, the XDG
// config file is used if one exists.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configFile
	if path == "" {
		path = xdg.DefaultConfigFile()
	}

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logging.SetDefault("ember", version, cfg.Logging.Format)
	return cfg, nil
}
