// SPDX-License-Identifier: Apache-2.0

// Package engine orchestrates the four top-level commands — Migrate,
// Validate, Repair, Erase — over a Migration Loader, a Metadata Store and a
// Dialect Adapter. It owns ordering and transactional discipline; nothing
// downstream of it decides when a transaction opens, commits or rolls back.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/northlake-data/schemadrift/pkg/dbconn"
	"github.com/northlake-data/schemadrift/pkg/dialect"
	"github.com/northlake-data/schemadrift/pkg/dialect/postgres"
	"github.com/northlake-data/schemadrift/pkg/loader"
	"github.com/northlake-data/schemadrift/pkg/migration"
	"github.com/northlake-data/schemadrift/pkg/state"
)

// Engine runs commands against a single Config. A Config is consumed once:
// Initialize binds it to a live connection and helper; nothing about the
// Config is mutated afterward.
type Engine struct {
	cfg    Config
	logger Logger

	conn   *dbconn.Conn
	helper dialect.Helper
	store  *state.Store

	metadataSchema string
	runID          string

	NbMigration int
	NbRepair    int
}

// New constructs an Engine for cfg, applying configuration-surface
// defaults. logger may be nil, in which case a noop Logger is used.
func New(cfg Config, logger Logger) *Engine {
	if logger == nil {
		logger = NewNoopLogger()
	}
	return &Engine{cfg: cfg.WithDefaults(), logger: logger}
}

// ScriptPlanEntry describes one script Migrate would apply, without
// applying it. Backs both the `info` command and a dry-run preview.
type ScriptPlanEntry struct {
	Version migration.Version
	Name    string
}

// Initialize is the precondition for every command: it resets the
// per-command counters, obtains and validates a connection, classifies the
// DBMS and binds a helper to it, and resolves Schemas/metadata_schema.
func (e *Engine) Initialize(ctx context.Context) error {
	e.NbMigration = 0
	e.NbRepair = 0
	e.runID = newRunID()

	conn, err := e.obtainConnection(ctx)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	e.conn = conn

	adapter := e.cfg.Adapter
	if adapter == nil {
		adapter = postgres.New()
	}
	kind, err := adapter.Classify(ctx, conn.DB)
	if err != nil {
		return &ConnectionError{Err: fmt.Errorf("classifying connection: %w", err)}
	}
	helper, err := adapter.HelperFor(kind, conn.DB)
	if err != nil {
		return &ConnectionError{Err: fmt.Errorf("binding helper: %w", err)}
	}
	e.helper = helper

	if len(e.cfg.Schemas) == 0 {
		current, err := helper.CurrentSchema(ctx)
		if err != nil {
			return &ConnectionError{Err: fmt.Errorf("resolving current schema: %w", err)}
		}
		e.cfg.Schemas = []string{current}
	}

	e.metadataSchema = e.cfg.MetadataTableSchema
	if e.metadataSchema == "" {
		e.metadataSchema = e.cfg.Schemas[0]
	}

	e.store = state.New(e.helper, e.metadataSchema, e.cfg.MetadataTableName, e.cfg.InstalledBy)

	return nil
}

func (e *Engine) obtainConnection(ctx context.Context) (*dbconn.Conn, error) {
	if e.cfg.Connection != nil {
		return dbconn.FromHandle(ctx, e.cfg.Connection)
	}

	// Pin the connection to the first configured schema, if any, so that
	// unqualified identifiers in migration scripts resolve against it.
	schema := ""
	if len(e.cfg.Schemas) > 0 {
		schema = e.cfg.Schemas[0]
	}
	return dbconn.Open(ctx, e.cfg.Driver, e.cfg.ConnectionString, schema)
}

// Close releases the underlying connection, if the engine owns it.
func (e *Engine) Close() error {
	if e.conn == nil {
		return nil
	}
	return e.conn.Close()
}

func (e *Engine) schemasToConsider() []string {
	return schemasToConsider(e.cfg.Schemas, e.metadataSchema)
}

func (e *Engine) loadScripts() ([]*migration.Script, error) {
	l := loader.New(loader.WithAffixes(e.cfg.affixes()))
	scripts, err := l.Load(e.cfg.Locations)
	if err != nil {
		return nil, &DiscoveryError{Reason: "loading scripts", Err: err}
	}
	return scripts, nil
}

// Plan computes the slice of on-disk scripts Migrate would apply right
// now, those strictly after the last applied version and at or below the
// target version, without executing any of them. Used by `info` and by a
// `migrate --dry-run` preview.
func (e *Engine) Plan(ctx context.Context) ([]ScriptPlanEntry, error) {
	scripts, err := e.loadScripts()
	if err != nil {
		return nil, err
	}

	lastApplied, err := e.lastAppliedVersion(ctx)
	if err != nil {
		return nil, err
	}

	var plan []ScriptPlanEntry
	for _, script := range scripts {
		if script.Version.LessOrEqual(lastApplied) {
			continue
		}
		if script.Version.GreaterThan(e.cfg.TargetVersion) {
			break
		}
		plan = append(plan, ScriptPlanEntry{Version: script.Version, Name: script.Name})
	}
	return plan, nil
}

func (e *Engine) lastAppliedVersion(ctx context.Context) (migration.Version, error) {
	exists, err := e.store.Exists(ctx)
	if err != nil {
		return migration.Zero(), &ConnectionError{Err: err}
	}
	if !exists {
		return migration.Zero(), nil
	}

	applied, err := e.store.ListApplied(ctx)
	if err != nil {
		return migration.Zero(), &ConnectionError{Err: err}
	}
	if len(applied) == 0 {
		return migration.Zero(), nil
	}
	return applied[len(applied)-1].Version, nil
}

func newRunID() string {
	return uuid.NewString()
}
