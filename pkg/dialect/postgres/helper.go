// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/northlake-data/schemadrift/pkg/dialect"
)

// Helper is the Postgres dialect.Helper bound to a single *sql.DB.
type Helper struct {
	db *sql.DB
	tx *sql.Tx
}

var _ dialect.Helper = (*Helper)(nil)

func newHelper(db *sql.DB) *Helper {
	return &Helper{db: db}
}

// CurrentSchema returns the first schema on the connection's search_path.
func (h *Helper) CurrentSchema(ctx context.Context) (string, error) {
	var schema string
	err := retry(ctx, func() error {
		return h.db.QueryRowContext(ctx, "SELECT current_schema()").Scan(&schema)
	})
	if err != nil {
		return "", fmt.Errorf("resolving current schema: %w", err)
	}
	return schema, nil
}

func (h *Helper) QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

func (h *Helper) Schema(name string) dialect.SchemaHandle {
	return &schemaHandle{helper: h, name: name}
}

// CreateMetadataTable idempotently creates the ledger table: an
// auto-incrementing id, a small int type column (enum-like), nullable
// version/checksum text columns, a name, an installed_on timestamp, an
// installed_by identity and a success flag.
func (h *Helper) CreateMetadataTable(ctx context.Context, schema, table string) error {
	qualified := h.qualify(schema, table)

	ddl := fmt.Sprintf(`
CREATE SCHEMA IF NOT EXISTS %s;
CREATE TABLE IF NOT EXISTS %s (
	id            SERIAL PRIMARY KEY,
	type          SMALLINT NOT NULL,
	version       TEXT,
	description   TEXT NOT NULL DEFAULT '',
	name          TEXT NOT NULL,
	checksum      TEXT,
	installed_on  TIMESTAMPTZ NOT NULL DEFAULT now(),
	installed_by  TEXT NOT NULL,
	success       BOOLEAN NOT NULL
);`, h.QuoteIdentifier(schema), qualified)

	_, err := h.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("creating metadata table %s: %w", qualified, err)
	}
	return nil
}

func (h *Helper) MetadataTableExists(ctx context.Context, schema, table string) (bool, error) {
	var exists bool
	err := retry(ctx, func() error {
		return h.db.QueryRowContext(ctx, `SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)`, schema, table).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("checking metadata table existence: %w", err)
	}
	return exists, nil
}

// Exec runs query within the currently open transaction, if any, otherwise
// directly against the connection (autocommit).
//
// When called with no args, query is treated as a migration script body
// rather than a single parameterized statement: it is split into its
// constituent statements (respecting dollar-quoting, string literals and
// comments) and executed one at a time, so that a failure identifies which
// statement within a multi-statement script failed rather than only which
// script.
func (h *Helper) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if len(args) == 0 {
		return h.execBatch(ctx, query)
	}
	return h.execOne(ctx, query, args...)
}

func (h *Helper) execOne(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := retry(ctx, func() error {
		var err error
		if h.tx != nil {
			res, err = h.tx.ExecContext(ctx, query, args...)
		} else {
			res, err = h.db.ExecContext(ctx, query, args...)
		}
		return err
	})
	return res, err
}

func (h *Helper) execBatch(ctx context.Context, body string) (sql.Result, error) {
	statements, err := pg_query.SplitWithScanner(body, true)
	if err != nil {
		return nil, fmt.Errorf("splitting migration script into statements: %w", err)
	}

	var total int64
	for i, stmt := range statements {
		res, err := h.execOne(ctx, stmt)
		if err != nil {
			return nil, fmt.Errorf("statement %d of %d: %w", i+1, len(statements), err)
		}
		if res != nil {
			if n, err := res.RowsAffected(); err == nil {
				total += n
			}
		}
	}

	return driverResult{rowsAffected: total}, nil
}

func (h *Helper) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	var rows *sql.Rows
	err := retry(ctx, func() error {
		var err error
		if h.tx != nil {
			rows, err = h.tx.QueryContext(ctx, query, args...)
		} else {
			rows, err = h.db.QueryContext(ctx, query, args...)
		}
		return err
	})
	return rows, err
}

func (h *Helper) Begin(ctx context.Context) error {
	if h.tx != nil {
		return fmt.Errorf("a transaction is already open on this connection")
	}
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	h.tx = tx
	return nil
}

func (h *Helper) Commit(ctx context.Context) error {
	if h.tx == nil {
		return fmt.Errorf("no transaction is open on this connection")
	}
	tx := h.tx
	h.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (h *Helper) Rollback(ctx context.Context) error {
	if h.tx == nil {
		return fmt.Errorf("no transaction is open on this connection")
	}
	tx := h.tx
	h.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("rolling back transaction: %w", err)
	}
	return nil
}

// WithoutTransaction suspends any currently open transaction for the
// duration of f, so that operations f performs via Exec/Query run in their
// own autocommit unit of work rather than inside the suspended transaction.
// The suspended transaction is restored (still open, uncommitted) once f
// returns; the caller remains responsible for eventually committing or
// rolling it back.
func (h *Helper) WithoutTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	suspended := h.tx
	h.tx = nil
	defer func() { h.tx = suspended }()

	return f(ctx)
}

func (h *Helper) Close() error {
	return h.db.Close()
}

func (h *Helper) qualify(schema, table string) string {
	return h.QuoteIdentifier(schema) + "." + h.QuoteIdentifier(table)
}

// driverResult is a minimal sql.Result for the aggregate of a split batch.
type driverResult struct {
	rowsAffected int64
}

func (r driverResult) LastInsertId() (int64, error) { return 0, fmt.Errorf("not supported") }
func (r driverResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }
