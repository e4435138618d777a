// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ember Contributors

package store

import (
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberfed/ember/pkg/errutil"
)

// fakeMigrate is a scriptable migrateIface for unit tests.
type fakeMigrate struct {
	upErr      error
	downErr    error
	stepsErr   error
	version    uint
	dirty      bool
	versionErr error
	forceErr   error
	closeSrc   error
	closeDB    error

	forcedTo []int
	steps    []int
}

func (f *fakeMigrate) Up() error   { return f.upErr }
func (f *fakeMigrate) Down() error { return f.downErr }

func (f *fakeMigrate) Steps(n int) error {
	f.steps = append(f.steps, n)
	return f.stepsErr
}

func (f *fakeMigrate) Version() (uint, bool, error) { return f.version, f.dirty, f.versionErr }
func (f *fakeMigrate) Force(version int) error {
	f.forcedTo = append(f.forcedTo, version)
	return f.forceErr
}
func (f *fakeMigrate) Close() (error, error) { return f.closeSrc, f.closeDB }

func TestMigrator_Up(t *testing.T) {
	t.Run("no change is not an error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange}}
		require.NoError(t, m.Up())
	})

	t.Run("failure is wrapped", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: assert.AnError}}
		err := m.Up()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
	})
}

func TestMigrator_Down(t *testing.T) {
	t.Run("no change is not an error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{downErr: migrate.ErrNoChange}}
		require.NoError(t, m.Down())
	})

	t.Run("failure is wrapped", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{downErr: assert.AnError}}
		err := m.Down()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_DOWN_FAILED")
	})
}

func TestMigrator_Version(t *testing.T) {
	t.Run("nil version reads as zero", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
		assert.False(t, dirty)
	})

	t.Run("reports version and dirty state", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{version: 3, dirty: true}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(3), version)
		assert.True(t, dirty)
	})

	t.Run("failure is wrapped", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: assert.AnError}}
		_, _, err := m.Version()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Force(t *testing.T) {
	t.Run("rejects negative version", func(t *testing.T) {
		fake := &fakeMigrate{}
		m := &Migrator{m: fake}
		err := m.Force(-1)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVALID_VERSION")
		assert.Empty(t, fake.forcedTo)
	})

	t.Run("forwards valid version", func(t *testing.T) {
		fake := &fakeMigrate{}
		m := &Migrator{m: fake}
		require.NoError(t, m.Force(2))
		assert.Equal(t, []int{2}, fake.forcedTo)
	})
}

func TestMigrator_Close(t *testing.T) {
	t.Run("clean close", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		require.NoError(t, m.Close())
	})

	t.Run("source close failure", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{closeSrc: assert.AnError}}
		err := m.Close()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
		errutil.AssertErrorContext(t, err, "component", "source")
	})

	t.Run("both close failures are combined", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{closeSrc: assert.AnError, closeDB: assert.AnError}}
		err := m.Close()
		require.Error(t, err)
		errutil.AssertErrorContext(t, err, "component", "both")
	})
}

func TestMigrator_PendingMigrations(t *testing.T) {
	t.Run("all pending when nothing applied", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
		pending, err := m.PendingMigrations()
		require.NoError(t, err)
		assert.Equal(t, []uint{1}, pending)
	})

	t.Run("nothing pending at latest version", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{version: 1}}
		pending, err := m.PendingMigrations()
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}

func TestParseMigrationVersion(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		version  uint
		ok       bool
	}{
		{name: "standard name", filename: "000001_initial.up.sql", version: 1, ok: true},
		{name: "multi-digit version", filename: "000042_add_index.up.sql", version: 42, ok: true},
		{name: "no underscore", filename: "000001.up.sql", ok: false},
		{name: "non-numeric prefix", filename: "abc_initial.up.sql", ok: false},
		{name: "empty prefix", filename: "_initial.up.sql", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, ok := parseMigrationVersion(tt.filename)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.version, version)
			}
		})
	}
}
