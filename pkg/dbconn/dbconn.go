// SPDX-License-Identifier: Apache-2.0

// Package dbconn produces a validated *sql.DB, either by wrapping a
// caller-supplied connection (whose lifecycle the caller still owns) or by
// opening one from a driver name and a connection string.
package dbconn

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/northlake-data/schemadrift/internal/connstr"
)

// Conn wraps a *sql.DB together with a flag recording whether this package
// opened it (and must therefore close it) or merely borrowed it from the
// caller.
type Conn struct {
	DB    *sql.DB
	owned bool
}

// Close closes the underlying connection if and only if this package opened
// it. Closing a caller-supplied connection is never this package's
// responsibility.
func (c *Conn) Close() error {
	if !c.owned || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

// FromHandle wraps an already-open connection supplied by the caller. The
// connection is validated with a ping but never closed by this package.
func FromHandle(ctx context.Context, db *sql.DB) (*Conn, error) {
	if db == nil {
		return nil, fmt.Errorf("dbconn: supplied connection handle is nil")
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("dbconn: validating supplied connection: %w", err)
	}
	return &Conn{DB: db, owned: false}, nil
}

// Open opens a new connection for driverName against connectionString and
// validates it with a ping. The returned Conn owns the connection and will
// close it.
//
// When schema is non-empty and driverName is "postgres", the connection
// string is parsed as a Postgres URL and its search_path is pinned to schema
// before the connection is opened, so that unqualified identifiers resolve
// against it by default.
func Open(ctx context.Context, driverName, connectionString, schema string) (*Conn, error) {
	dsn := connectionString
	if schema != "" && driverName == "postgres" {
		var err error
		dsn, err = connstr.AppendSearchPathOption(connectionString, schema)
		if err != nil {
			return nil, fmt.Errorf("dbconn: preparing connection string: %w", err)
		}
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("dbconn: opening connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("dbconn: validating connection: %w", err)
	}

	return &Conn{DB: db, owned: true}, nil
}
