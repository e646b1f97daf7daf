// SPDX-License-Identifier: Apache-2.0

// Package dialect defines the narrow interface the engine uses to talk to a
// specific DBMS: classifying a connection, creating a bound helper, and the
// schema/transaction/execute primitives that helper exposes. Concrete
// dialects (for example pkg/dialect/postgres) implement it; everything
// downstream of the engine's Initialize step sees only these interfaces.
package dialect

import (
	"context"
	"database/sql"
)

// Kind identifies the DBMS family a connection belongs to.
type Kind string

const (
	KindPostgres Kind = "postgres"
)

// Adapter classifies a connection and produces a Helper bound to it. A
// single Adapter may support several Kinds (e.g. a family of SQL dialects
// sharing most behavior); the engine only ever asks for classify-then-bind.
type Adapter interface {
	// Classify inspects the connection (typically via a version query) and
	// returns the DBMS kind it belongs to.
	Classify(ctx context.Context, conn *sql.DB) (Kind, error)

	// HelperFor returns a Helper bound to conn for the given kind. The
	// engine must not call this with a Kind the Adapter did not return from
	// Classify on the same connection.
	HelperFor(kind Kind, conn *sql.DB) (Helper, error)
}

// SchemaHandle exposes the lifecycle operations the engine needs for one
// named schema.
type SchemaHandle interface {
	Exists(ctx context.Context) (bool, error)
	Empty(ctx context.Context) (bool, error)
	Create(ctx context.Context) error
	Drop(ctx context.Context) error
	// Erase removes every object inside the schema without removing the
	// schema itself.
	Erase(ctx context.Context) error
}

// Helper is the per-connection surface the engine and the metadata store
// drive a command with. It owns the DBMS-specific details of schema
// lifecycle, identifier quoting, DDL/DML execution and transaction control.
// The logical shape of the ledger table is the same across dialects; only
// its column types and the quoting of identifiers are a Helper concern.
type Helper interface {
	// CurrentSchema returns the schema the connection is presently
	// attached to (used to populate an empty configured Schemas list).
	CurrentSchema(ctx context.Context) (string, error)

	// Schema returns a handle bound to the named schema.
	Schema(name string) SchemaHandle

	// QuoteIdentifier quotes name for safe interpolation into DDL that has
	// no placeholder support (e.g. CREATE SCHEMA "name").
	QuoteIdentifier(name string) string

	// CreateMetadataTable idempotently creates the ledger table bound to
	// schema/table, using whatever DDL the dialect needs for the logical
	// column set the metadata store expects.
	CreateMetadataTable(ctx context.Context, schema, table string) error

	// MetadataTableExists reports whether the ledger table has been
	// created yet.
	MetadataTableExists(ctx context.Context, schema, table string) (bool, error)

	// Exec runs a parameterized statement against the ledger table (or, for
	// migration scripts, the placeholder-substituted script body) within
	// whatever transaction is currently open (or none).
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	// Query runs a parameterized query against the ledger table.
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// WithoutTransaction runs f against the connection outside of any
	// currently open transaction, in its own independent unit of work.
	// This is how the engine writes a failed-migration ledger row after a
	// rollback: the failure record must survive the rollback that
	// produced it.
	WithoutTransaction(ctx context.Context, f func(ctx context.Context) error) error

	Close() error
}
