// SPDX-License-Identifier: Apache-2.0

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/northlake-data/schemadrift/pkg/migration"
)

func TestSubstituteLeavesUnknownPlaceholdersIntact(t *testing.T) {
	body := "CREATE TABLE ${schema}.${table} (${unknown} int);"
	got := migration.Substitute(body, "${", "}", migration.Placeholders{
		"schema": "public",
		"table":  "users",
	})

	assert.Equal(t, "CREATE TABLE public.users (${unknown} int);", got)
}

func TestSubstituteNoPlaceholdersIsNoop(t *testing.T) {
	body := "select 1;"
	assert.Equal(t, body, migration.Substitute(body, "${", "}", nil))
}
