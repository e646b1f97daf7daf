// SPDX-License-Identifier: Apache-2.0

// Package state implements the metadata store: the ledger table recording
// applied migrations and schema-lifecycle markers inside the target
// database.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/northlake-data/schemadrift/pkg/dialect"
	"github.com/northlake-data/schemadrift/pkg/migration"
)

// EntryType identifies the kind of a ledger row, matching the small-int
// encoding D is expected to store it under.
type EntryType int

const (
	TypeMigration    EntryType = 10
	TypeNewSchema    EntryType = 20
	TypeEmptySchema  EntryType = 30
	TypeStartVersion EntryType = 40
)

// AppliedMigration is one row of the ledger table.
type AppliedMigration struct {
	ID          int64
	Type        EntryType
	Version     migration.Version
	HasVersion  bool
	Description string
	Name        string
	Checksum    string
	HasChecksum bool
	InstalledBy string
	Success     bool
}

// Store is the metadata store bound to a single schema and table name.
type Store struct {
	helper      dialect.Helper
	schema      string
	table       string
	installedBy string
}

// New binds a Store to the ledger table (schema, table) reached through
// helper. installedBy identifies the caller recorded on every inserted row.
func New(helper dialect.Helper, schema, table, installedBy string) *Store {
	return &Store{helper: helper, schema: schema, table: table, installedBy: installedBy}
}

// Ensure idempotently creates the ledger table if it does not already exist.
func (s *Store) Ensure(ctx context.Context) error {
	return s.helper.CreateMetadataTable(ctx, s.schema, s.table)
}

// Exists reports whether the ledger table has been created yet.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	return s.helper.MetadataTableExists(ctx, s.schema, s.table)
}

// Save appends one ledger entry and returns its assigned id.
func (s *Store) Save(ctx context.Context, entryType EntryType, version migration.Version, hasVersion bool, name, description string, checksum string, hasChecksum bool, success bool) (int64, error) {
	var versionArg, checksumArg any
	if hasVersion {
		versionArg = version.String()
	}
	if hasChecksum {
		checksumArg = checksum
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(type, version, description, name, checksum, installed_by, success)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`, s.qualified())

	rows, err := s.helper.Query(ctx, query, int(entryType), versionArg, description, name, checksumArg, s.installedBy, success)
	if err != nil {
		return 0, fmt.Errorf("state: saving ledger entry %q: %w", name, err)
	}
	defer rows.Close()

	var id int64
	if !rows.Next() {
		return 0, fmt.Errorf("state: saving ledger entry %q: no id returned", name)
	}
	if err := rows.Scan(&id); err != nil {
		return 0, fmt.Errorf("state: saving ledger entry %q: %w", name, err)
	}
	return id, rows.Err()
}

// SaveMigration appends a Migration entry for an applied (or failed) script.
func (s *Store) SaveMigration(ctx context.Context, script *migration.Script, checksum string, success bool) (int64, error) {
	return s.Save(ctx, TypeMigration, script.Version, true, script.Name, "", checksum, true, success)
}

// SaveNewSchema appends a NewSchema marker for a schema the engine created.
func (s *Store) SaveNewSchema(ctx context.Context, schemaName string) (int64, error) {
	return s.Save(ctx, TypeNewSchema, migration.Version{}, false, schemaName, "", "", false, true)
}

// SaveEmptySchema appends an EmptySchema marker for a schema the engine
// found empty on inspection.
func (s *Store) SaveEmptySchema(ctx context.Context, schemaName string) (int64, error) {
	return s.Save(ctx, TypeEmptySchema, migration.Version{}, false, schemaName, "", "", false, true)
}

// ListApplied returns, in id-ascending order, every Migration entry with
// success=true.
func (s *Store) ListApplied(ctx context.Context) ([]AppliedMigration, error) {
	query := fmt.Sprintf(`SELECT id, type, version, description, name, checksum, installed_by, success
		FROM %s WHERE type = $1 AND success = true ORDER BY id ASC`, s.qualified())

	rows, err := s.helper.Query(ctx, query, int(TypeMigration))
	if err != nil {
		return nil, fmt.Errorf("state: listing applied migrations: %w", err)
	}
	defer rows.Close()

	var out []AppliedMigration
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("state: listing applied migrations: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// FindStartVersion returns the version of the most recent StartVersion
// entry, or the zero sentinel if none exists.
func (s *Store) FindStartVersion(ctx context.Context) (migration.Version, error) {
	query := fmt.Sprintf(`SELECT id, type, version, description, name, checksum, installed_by, success
		FROM %s WHERE type = $1 ORDER BY id DESC LIMIT 1`, s.qualified())

	rows, err := s.helper.Query(ctx, query, int(TypeStartVersion))
	if err != nil {
		return migration.Version{}, fmt.Errorf("state: finding start version: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return migration.Zero(), rows.Err()
	}
	entry, err := scanEntry(rows)
	if err != nil {
		return migration.Version{}, fmt.Errorf("state: finding start version: %w", err)
	}
	return entry.Version, rows.Err()
}

// UpdateChecksum rewrites the checksum of an existing ledger row. Used only
// by Repair: it never inserts, deletes, or changes version/name/success.
func (s *Store) UpdateChecksum(ctx context.Context, id int64, newChecksum string) error {
	query := fmt.Sprintf(`UPDATE %s SET checksum = $1 WHERE id = $2`, s.qualified())
	_, err := s.helper.Exec(ctx, query, newChecksum, id)
	if err != nil {
		return fmt.Errorf("state: updating checksum for ledger row %d: %w", id, err)
	}
	return nil
}

// CanDropSchema reports whether the ledger contains a NewSchema entry for
// name: the engine created this schema, so it may also destroy it.
func (s *Store) CanDropSchema(ctx context.Context, name string) (bool, error) {
	return s.existsEntry(ctx, TypeNewSchema, name)
}

// CanEraseSchema reports whether the ledger contains an EmptySchema entry
// for name: the engine found this schema empty, so it may empty it again.
func (s *Store) CanEraseSchema(ctx context.Context, name string) (bool, error) {
	return s.existsEntry(ctx, TypeEmptySchema, name)
}

func (s *Store) existsEntry(ctx context.Context, entryType EntryType, name string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE type = $1 AND name = $2)`, s.qualified())
	rows, err := s.helper.Query(ctx, query, int(entryType), name)
	if err != nil {
		return false, fmt.Errorf("state: checking ledger marker for %q: %w", name, err)
	}
	defer rows.Close()

	var exists bool
	if rows.Next() {
		if err := rows.Scan(&exists); err != nil {
			return false, err
		}
	}
	return exists, rows.Err()
}

func (s *Store) qualified() string {
	return s.helper.QuoteIdentifier(s.schema) + "." + s.helper.QuoteIdentifier(s.table)
}

func scanEntry(rows *sql.Rows) (AppliedMigration, error) {
	var (
		id          int64
		entryType   int
		versionStr  sql.NullString
		description string
		name        string
		checksum    sql.NullString
		installedBy string
		success     bool
	)

	if err := rows.Scan(&id, &entryType, &versionStr, &description, &name, &checksum, &installedBy, &success); err != nil {
		return AppliedMigration{}, err
	}

	entry := AppliedMigration{
		ID:          id,
		Type:        EntryType(entryType),
		Description: description,
		Name:        strings.TrimSpace(name),
		InstalledBy: installedBy,
		Success:     success,
	}

	if versionStr.Valid {
		v, err := migration.Parse(versionStr.String)
		if err != nil {
			return AppliedMigration{}, fmt.Errorf("parsing ledger version %q: %w", versionStr.String, err)
		}
		entry.Version = v
		entry.HasVersion = true
	}

	if checksum.Valid {
		entry.Checksum = checksum.String
		entry.HasChecksum = true
	}

	return entry, nil
}
