// SPDX-License-Identifier: Apache-2.0

package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northlake-data/schemadrift/pkg/dialect"
	"github.com/northlake-data/schemadrift/pkg/dialect/postgres"
	"github.com/northlake-data/schemadrift/pkg/testutils"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

func TestClassifyAndBind(t *testing.T) {
	testutils.WithConnection(t, func(db *sql.DB, _ string) {
		ctx := context.Background()
		adapter := postgres.New()

		kind, err := adapter.Classify(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, dialect.KindPostgres, kind)

		helper, err := adapter.HelperFor(kind, db)
		require.NoError(t, err)
		require.NotNil(t, helper)
	})
}

func TestSchemaLifecycle(t *testing.T) {
	testutils.WithConnection(t, func(db *sql.DB, _ string) {
		ctx := context.Background()
		helper, err := postgres.New().HelperFor(dialect.KindPostgres, db)
		require.NoError(t, err)

		schema := helper.Schema("widgets")

		exists, err := schema.Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, schema.Create(ctx))

		exists, err = schema.Exists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)

		empty, err := schema.Empty(ctx)
		require.NoError(t, err)
		assert.True(t, empty)

		_, err = helper.Exec(ctx, "CREATE TABLE widgets.t (id int)")
		require.NoError(t, err)

		empty, err = schema.Empty(ctx)
		require.NoError(t, err)
		assert.False(t, empty)

		require.NoError(t, schema.Erase(ctx))

		exists, err = schema.Exists(ctx)
		require.NoError(t, err)
		assert.True(t, exists, "erase must not remove the schema itself")

		empty, err = schema.Empty(ctx)
		require.NoError(t, err)
		assert.True(t, empty, "erase must remove every object inside the schema")

		require.NoError(t, schema.Drop(ctx))

		exists, err = schema.Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists, "drop must remove the schema itself")
	})
}

func TestMetadataTableIsIdempotent(t *testing.T) {
	testutils.WithConnection(t, func(db *sql.DB, _ string) {
		ctx := context.Background()
		helper, err := postgres.New().HelperFor(dialect.KindPostgres, db)
		require.NoError(t, err)

		exists, err := helper.MetadataTableExists(ctx, "public", "changelog")
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, helper.CreateMetadataTable(ctx, "public", "changelog"))
		require.NoError(t, helper.CreateMetadataTable(ctx, "public", "changelog"))

		exists, err = helper.MetadataTableExists(ctx, "public", "changelog")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestExecSplitsMultiStatementBatchesAndStopsOnFailure(t *testing.T) {
	testutils.WithConnection(t, func(db *sql.DB, _ string) {
		ctx := context.Background()
		helper, err := postgres.New().HelperFor(dialect.KindPostgres, db)
		require.NoError(t, err)

		require.NoError(t, helper.Begin(ctx))
		_, err = helper.Exec(ctx, `
			CREATE TABLE t1 (id int);
			INSERT INTO t1 VALUES (1), (2);
			CREATE TABLE t1 (id int); -- fails: table already exists
			INSERT INTO t1 VALUES (3);
		`)
		require.ErrorContains(t, err, "statement 3 of 4")
		require.NoError(t, helper.Rollback(ctx))

		var count int
		row := db.QueryRowContext(ctx, "SELECT count(*) FROM information_schema.tables WHERE table_name = 't1'")
		require.NoError(t, row.Scan(&count))
		assert.Equal(t, 0, count, "the whole script must roll back, including statements before the failure")
	})
}

func TestWithoutTransactionSurvivesOuterRollback(t *testing.T) {
	testutils.WithConnection(t, func(db *sql.DB, _ string) {
		ctx := context.Background()
		helper, err := postgres.New().HelperFor(dialect.KindPostgres, db)
		require.NoError(t, err)

		require.NoError(t, helper.CreateMetadataTable(ctx, "public", "changelog"))

		require.NoError(t, helper.Begin(ctx))
		_, err = helper.Exec(ctx, "CREATE TABLE doomed (id int)")
		require.NoError(t, err)

		err = helper.WithoutTransaction(ctx, func(ctx context.Context) error {
			_, err := helper.Exec(ctx, "INSERT INTO public.changelog (type, name, installed_by, success) VALUES ($1, $2, $3, $4)",
				10, "V1__failed.sql", "tester", false)
			return err
		})
		require.NoError(t, err)

		require.NoError(t, helper.Rollback(ctx))

		var count int
		row := db.QueryRowContext(ctx, "SELECT count(*) FROM public.changelog")
		require.NoError(t, row.Scan(&count))
		assert.Equal(t, 1, count, "the failure record must survive the rollback of the migration transaction")

		row = db.QueryRowContext(ctx, "SELECT count(*) FROM information_schema.tables WHERE table_name = 'doomed'")
		require.NoError(t, row.Scan(&count))
		assert.Equal(t, 0, count)
	})
}
