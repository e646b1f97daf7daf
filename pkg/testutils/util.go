// SPDX-License-Identifier: Apache-2.0

package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// The version of postgres against which the tests are run if the
// POSTGRES_VERSION environment variable is not set.
const defaultPostgresVersion = "15.3"

// tConnStr holds the connection string to the test container created in
// SharedTestMain.
var tConnStr string

// SharedTestMain starts a postgres container to be used by all tests in a
// package. Each test then connects to the container and creates a new,
// throwaway database, so tests never interfere with one another.
func SharedTestMain(m *testing.M) {
	ctx := context.Background()

	waitForLogs := wait.
		ForLog("database system is ready to accept connections").
		WithOccurrence(2).
		WithStartupTimeout(5 * time.Second)

	pgVersion := os.Getenv("POSTGRES_VERSION")
	if pgVersion == "" {
		pgVersion = defaultPostgresVersion
	}

	ctr, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:"+pgVersion),
		testcontainers.WithWaitStrategy(waitForLogs),
	)
	if err != nil {
		os.Exit(1)
	}

	tConnStr, err = ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		os.Exit(1)
	}

	exitCode := m.Run()

	if err := ctr.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %v", err)
	}

	os.Exit(exitCode)
}

// WithConnection creates a throwaway database in the shared container,
// opens a connection to it, and calls fn. The connections are closed via
// t.Cleanup; the database itself is not dropped and stays in the container
// until SharedTestMain terminates it.
func WithConnection(t *testing.T, fn func(db *sql.DB, connStr string)) {
	t.Helper()
	db, connStr, _ := setupTestDatabase(t)
	fn(db, connStr)
}

// setupTestDatabase creates a new database in the test container and
// returns a connection to it, its connection string, and its name.
func setupTestDatabase(t *testing.T) (*sql.DB, string, string) {
	t.Helper()
	ctx := context.Background()

	tDB, err := sql.Open("postgres", tConnStr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := tDB.Close(); err != nil {
			t.Fatalf("failed to close admin connection: %v", err)
		}
	})

	dbName := randomDBName()
	_, err = tDB.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(dbName)))
	if err != nil {
		t.Fatal(err)
	}

	u, err := url.Parse(tConnStr)
	if err != nil {
		t.Fatal(err)
	}
	u.Path = "/" + dbName
	connStr := u.String()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("failed to close test database connection: %v", err)
		}
	})

	return db, connStr, dbName
}
