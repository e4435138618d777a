// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

// Package config loads process configuration from defaults, an optional
// YAML file, and command-line flags, in that order of precedence.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/emberfed/ember/internal/account"
)

// Config is the explicit process configuration handed to constructors.
// Nothing reads it from ambient globals.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL            string        `koanf:"url"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// AuthConfig configures the credential lifecycle policies.
type AuthConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTTL        time.Duration `koanf:"session_ttl"`
	PasswordMinLength int           `koanf:"password_min_length"`
	PasswordMaxLength int           `koanf:"password_max_length"`
	ResetTokenTTL     time.Duration `koanf:"reset_token_ttl"`

	// ResetMaxRecent refuses reset issuance once this many requests exist
	// within the token TTL window. Zero leaves the decision to the caller.
	ResetMaxRecent int `koanf:"reset_max_recent"`
}

// PasswordPolicy returns the account password policy for this config.
func (c AuthConfig) PasswordPolicy() account.PasswordPolicy {
	return account.PasswordPolicy{
		MinLength: c.PasswordMinLength,
		MaxLength: c.PasswordMaxLength,
	}
}

// ResetPolicy returns the account reset policy for this config.
func (c AuthConfig) ResetPolicy() account.ResetPolicy {
	return account.ResetPolicy{
		TokenTTL:          c.ResetTokenTTL,
		MaxRecentRequests: c.ResetMaxRecent,
	}
}

// MetricsConfig configures the observability server.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Format string `koanf:"format"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			ConnectTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			SessionTTL:        account.DefaultSessionTTL,
			PasswordMinLength: account.DefaultMinPasswordLength,
			PasswordMaxLength: account.DefaultMaxPasswordLength,
			ResetTokenTTL:     account.DefaultResetTokenTTL,
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9100",
		},
		Logging: LoggingConfig{
			Format: "json",
		},
	}
}

// Load builds a Config from defaults, then the YAML file at path (if
// non-empty), then the given flag set (if non-nil). Later sources win.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}

	return &cfg, nil
}
