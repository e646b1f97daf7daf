// SPDX-License-Identifier: Apache-2.0

package dbconn_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northlake-data/schemadrift/pkg/dbconn"
	"github.com/northlake-data/schemadrift/pkg/testutils"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

func TestFromHandleDoesNotOwnTheConnection(t *testing.T) {
	testutils.WithConnection(t, func(db *sql.DB, _ string) {
		conn, err := dbconn.FromHandle(context.Background(), db)
		require.NoError(t, err)

		require.NoError(t, conn.Close())
		require.NoError(t, db.PingContext(context.Background()), "the borrowed handle must still be usable after Conn.Close")
	})
}

func TestFromHandleRejectsNil(t *testing.T) {
	_, err := dbconn.FromHandle(context.Background(), nil)
	assert.Error(t, err)
}

func TestOpenOwnsAndClosesItsConnection(t *testing.T) {
	testutils.WithConnection(t, func(_ *sql.DB, connStr string) {
		conn, err := dbconn.Open(context.Background(), "postgres", connStr, "")
		require.NoError(t, err)

		require.NoError(t, conn.Close())
		assert.Error(t, conn.DB.PingContext(context.Background()), "Open-ed connections must be closed by Conn.Close")
	})
}

func TestOpenRejectsUnreachableDSN(t *testing.T) {
	_, err := dbconn.Open(context.Background(), "postgres", "postgres://nobody@127.0.0.1:1/nope?sslmode=disable&connect_timeout=1", "")
	assert.Error(t, err)
}
