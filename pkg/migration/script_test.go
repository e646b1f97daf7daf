// SPDX-License-Identifier: Apache-2.0

package migration_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northlake-data/schemadrift/pkg/migration"
)

func TestParseFilename(t *testing.T) {
	affixes := migration.DefaultAffixes()

	version, description, ok, err := migration.ParseFilename(affixes, "V1.2__add_users.sql")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "add_users", description)
	assert.True(t, version.Equal(migration.MustParse("1.2")))
}

func TestParseFilenameIgnoresNonMatchingFiles(t *testing.T) {
	affixes := migration.DefaultAffixes()

	for _, name := range []string{"README.md", "afterMigrate.sql", "V1_missing_separator.sql", "V__no_version.sql"} {
		_, _, ok, err := migration.ParseFilename(affixes, name)
		require.NoError(t, err)
		assert.False(t, ok, "expected %q to be ignored", name)
	}
}

func TestParseFilenameFailsOnUnparsableVersion(t *testing.T) {
	affixes := migration.DefaultAffixes()

	_, _, ok, err := migration.ParseFilename(affixes, "Vabc__broken.sql")
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestScriptChecksumIsStableAndSubstitutesPlaceholders(t *testing.T) {
	body := "CREATE TABLE ${schema}.t (id int);"
	script := migration.NewScript(migration.MustParse("1"), "V1__init.sql", "locA", func() ([]byte, error) {
		return []byte(body), nil
	})

	placeholders := migration.Placeholders{"schema": "public"}

	c1, err := script.Checksum("${", "}", placeholders)
	require.NoError(t, err)

	c2, err := script.Checksum("${", "}", placeholders)
	require.NoError(t, err)
	assert.Equal(t, c1, c2, "checksum must be stable across repeated calls")

	other := migration.NewScript(migration.MustParse("1"), "V1__init.sql", "locA", func() ([]byte, error) {
		return []byte(body), nil
	})
	c3, err := other.Checksum("${", "}", migration.Placeholders{"schema": "private"})
	require.NoError(t, err)
	assert.NotEqual(t, c1, c3, "different placeholder values must change the checksum")
}

func TestScriptBodyIsLoadedOnce(t *testing.T) {
	calls := 0
	script := migration.NewScript(migration.MustParse("1"), "V1__x.sql", "loc", func() ([]byte, error) {
		calls++
		return []byte("select 1;"), nil
	})

	_, err := script.Body()
	require.NoError(t, err)
	_, err = script.Body()
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestScriptBodyWrapsLoaderError(t *testing.T) {
	wantErr := errors.New("disk on fire")
	script := migration.NewScript(migration.MustParse("1"), "V1__x.sql", "loc", func() ([]byte, error) {
		return nil, wantErr
	})

	_, err := script.Body()
	assert.ErrorIs(t, err, wantErr)
}
