// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"database/sql"
	"strings"

	"github.com/northlake-data/schemadrift/pkg/dialect"
	"github.com/northlake-data/schemadrift/pkg/migration"
)

// Command identifies which of the top-level operations a Config is meant
// to drive. Validate's own Strict/Repair distinction is an explicit
// parameter (see Mode), never derived from Command.
type Command string

const (
	CommandMigrate Command = "migrate"
	CommandRepair  Command = "repair"
	CommandErase   Command = "erase"
)

// Mode selects how Validate treats a checksum mismatch.
type Mode int

const (
	// ModeStrict fails the command on any checksum mismatch.
	ModeStrict Mode = iota
	// ModeRepair fixes the ledger checksum in place instead of failing.
	ModeRepair
)

// Config is the engine's explicit configuration record. It is built once,
// validated before use, and never mutated once a command begins.
type Config struct {
	// Connection is a caller-supplied, already-open connection. When set,
	// ConnectionString/Driver are ignored and the engine never closes it.
	Connection *sql.DB

	// Adapter classifies the connection and produces the helper every
	// command runs through. Nil selects the Postgres adapter.
	Adapter dialect.Adapter

	ConnectionString string
	Driver           string

	Schemas             []string
	MetadataTableSchema string
	MetadataTableName   string

	Locations []string
	Encoding  string

	SQLMigrationPrefix    string
	SQLMigrationSeparator string
	SQLMigrationSuffix    string

	PlaceholderPrefix string
	PlaceholderSuffix string
	Placeholders      migration.Placeholders

	TargetVersion migration.Version

	Command Command

	IsEraseDisabled            bool
	MustEraseOnValidationError bool

	InstalledBy string
}

// WithDefaults returns a copy of c with every unset field replaced by its
// documented default.
func (c Config) WithDefaults() Config {
	if c.Driver == "" {
		c.Driver = "postgres"
	}
	if c.MetadataTableName == "" {
		c.MetadataTableName = "changelog"
	}
	if len(c.Locations) == 0 {
		c.Locations = []string{"Sql_Scripts"}
	}
	if c.Encoding == "" {
		c.Encoding = "UTF-8"
	}
	if c.SQLMigrationPrefix == "" && c.SQLMigrationSeparator == "" && c.SQLMigrationSuffix == "" {
		affixes := migration.DefaultAffixes()
		c.SQLMigrationPrefix = affixes.Prefix
		c.SQLMigrationSeparator = affixes.Separator
		c.SQLMigrationSuffix = affixes.Suffix
	}
	if c.PlaceholderPrefix == "" && c.PlaceholderSuffix == "" {
		c.PlaceholderPrefix = "${"
		c.PlaceholderSuffix = "}"
	}
	if c.Placeholders == nil {
		c.Placeholders = migration.Placeholders{}
	}
	if c.TargetVersion.String() == "" {
		c.TargetVersion = migration.Max()
	}
	if c.Command == "" {
		c.Command = CommandMigrate
	}
	if c.InstalledBy == "" {
		c.InstalledBy = "schemadrift"
	}
	return c
}

func (c Config) affixes() migration.Affixes {
	return migration.Affixes{
		Prefix:    c.SQLMigrationPrefix,
		Separator: c.SQLMigrationSeparator,
		Suffix:    c.SQLMigrationSuffix,
	}
}

// schemasToConsider returns the union of the configured Schemas list and
// the singleton {metadataSchema}, case-insensitively deduplicated with
// blanks filtered, preserving order of first appearance.
func schemasToConsider(schemas []string, metadataSchema string) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(name string) {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, trimmed)
	}

	for _, s := range schemas {
		add(s)
	}
	add(metadataSchema)

	return out
}
