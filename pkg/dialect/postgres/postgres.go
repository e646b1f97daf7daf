// SPDX-License-Identifier: Apache-2.0

// Package postgres is the Postgres implementation of the dialect.Adapter
// interface: schema lifecycle, ledger DDL, identifier quoting and
// transaction control for a *sql.DB opened with the lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/northlake-data/schemadrift/pkg/dialect"
)

// Adapter is the Postgres dialect.Adapter. It is stateless; HelperFor binds
// it to a specific connection.
type Adapter struct{}

// New returns a Postgres dialect adapter.
func New() *Adapter {
	return &Adapter{}
}

var _ dialect.Adapter = (*Adapter)(nil)

// Classify confirms that conn is a reachable Postgres server. The kind is
// always dialect.KindPostgres; this adapter does not support other DBMS
// families.
func (a *Adapter) Classify(ctx context.Context, conn *sql.DB) (dialect.Kind, error) {
	var version string
	if err := conn.QueryRowContext(ctx, "SHOW server_version").Scan(&version); err != nil {
		return "", fmt.Errorf("classifying connection as postgres: %w", err)
	}
	return dialect.KindPostgres, nil
}

// HelperFor returns a Helper bound to conn. kind must be dialect.KindPostgres.
func (a *Adapter) HelperFor(kind dialect.Kind, conn *sql.DB) (dialect.Helper, error) {
	if kind != dialect.KindPostgres {
		return nil, fmt.Errorf("postgres adapter cannot bind to dialect kind %q", kind)
	}
	return newHelper(conn), nil
}
