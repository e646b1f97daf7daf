// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"

	"github.com/northlake-data/schemadrift/pkg/migration"
)

// Migrate applies every outstanding script up to the configured target
// version. Transaction granularity is per script: a failing script's
// batch rolls back on its own, leaving every earlier successful script
// applied; the failure record is written in an independent transaction
// that survives that rollback.
func (e *Engine) Migrate(ctx context.Context) error {
	if err := e.Initialize(ctx); err != nil {
		return err
	}

	if err := e.Validate(ctx, ModeStrict); err != nil {
		if _, ok := err.(*ValidationError); ok && e.cfg.MustEraseOnValidationError {
			if eraseErr := e.eraseLocked(ctx); eraseErr != nil {
				return eraseErr
			}
		} else {
			return err
		}
	}

	if err := e.ManageSchemas(ctx); err != nil {
		return err
	}

	// The ledger table may still be absent here (fresh database with every
	// schema already present and non-empty, so ManageSchemas wrote no
	// marker) or may have just been dropped by the erase-on-validation-error
	// recovery above.
	if err := e.store.Ensure(ctx); err != nil {
		return &ConnectionError{Err: err}
	}

	lastApplied, err := e.lastAppliedVersion(ctx)
	if err != nil {
		return err
	}

	scripts, err := e.loadScripts()
	if err != nil {
		return err
	}

	finalVersion := lastApplied
	for _, script := range scripts {
		if script.Version.LessOrEqual(lastApplied) {
			continue
		}
		if script.Version.GreaterThan(e.cfg.TargetVersion) {
			break
		}

		if err := e.applyScript(ctx, script); err != nil {
			return err
		}
		finalVersion = script.Version
		e.NbMigration++
	}

	if e.NbMigration == 0 {
		e.logger.Info("NothingToMigrate")
	} else {
		e.logger.Info(fmt.Sprintf("Database migrated to version %s. %d migration(s) applied.", finalVersion.String(), e.NbMigration))
	}

	return nil
}

func (e *Engine) applyScript(ctx context.Context, script *migration.Script) error {
	body, err := script.Body()
	if err != nil {
		return &MigrationError{Script: script.Name, Err: err}
	}

	substituted := migration.Substitute(body, e.cfg.PlaceholderPrefix, e.cfg.PlaceholderSuffix, e.cfg.Placeholders)

	checksum, err := script.Checksum(e.cfg.PlaceholderPrefix, e.cfg.PlaceholderSuffix, e.cfg.Placeholders)
	if err != nil {
		return &MigrationError{Script: script.Name, Err: err}
	}

	if err := e.helper.Begin(ctx); err != nil {
		return &MigrationError{Script: script.Name, Err: err}
	}

	applyErr := func() error {
		if _, err := e.helper.Exec(ctx, substituted); err != nil {
			return err
		}
		if _, err := e.store.SaveMigration(ctx, script, checksum, true); err != nil {
			return err
		}
		return nil
	}()

	if applyErr != nil {
		_ = e.helper.Rollback(ctx)

		writeErr := e.helper.WithoutTransaction(ctx, func(ctx context.Context) error {
			_, err := e.store.SaveMigration(ctx, script, checksum, false)
			return err
		})
		if writeErr != nil {
			applyErr = fmt.Errorf("%w (also failed to record failure: %v)", applyErr, writeErr)
		}

		e.logger.LogMigrationFailed(e.runID, script.Name, applyErr)
		return &MigrationError{Script: script.Name, Err: applyErr}
	}

	if err := e.helper.Commit(ctx); err != nil {
		return &MigrationError{Script: script.Name, Err: err}
	}

	e.logger.LogMigrationApplied(e.runID, script.Name, script.Version.String())
	return nil
}

// Repair rewrites stale ledger checksums: Initialize, then Validate in
// repair mode so mismatches are fixed in place rather than failing the
// command.
func (e *Engine) Repair(ctx context.Context) error {
	if err := e.Initialize(ctx); err != nil {
		return err
	}

	if err := e.Validate(ctx, ModeRepair); err != nil {
		return err
	}

	if e.NbRepair == 0 {
		e.logger.Info("NothingToRepair")
	} else {
		e.logger.Info(fmt.Sprintf("Successfully repaired %d migration(s).", e.NbRepair))
	}

	return nil
}

// ManageSchemas prepares each schema under consideration: create it
// (recording a NewSchema consent marker) if absent, or record an
// EmptySchema consent marker if it already exists but is empty.
//
// Each schema's emptiness is judged before the ledger table is ensured:
// when the metadata schema itself is under consideration, creating the
// ledger table first would make an empty schema look non-empty and the
// consent marker would never be written.
func (e *Engine) ManageSchemas(ctx context.Context) error {
	for _, name := range e.schemasToConsider() {
		handle := e.helper.Schema(name)

		exists, err := handle.Exists(ctx)
		if err != nil {
			return &ConnectionError{Err: err}
		}

		if !exists {
			if err := e.helper.Begin(ctx); err != nil {
				return &ConnectionError{Err: err}
			}
			if err := handle.Create(ctx); err != nil {
				_ = e.helper.Rollback(ctx)
				return &ConnectionError{Err: fmt.Errorf("creating schema %q: %w", name, err)}
			}
			if err := e.store.Ensure(ctx); err != nil {
				_ = e.helper.Rollback(ctx)
				return &ConnectionError{Err: err}
			}
			if _, err := e.store.SaveNewSchema(ctx, name); err != nil {
				_ = e.helper.Rollback(ctx)
				return &ConnectionError{Err: err}
			}
			if err := e.helper.Commit(ctx); err != nil {
				return &ConnectionError{Err: err}
			}
			e.logger.LogSchemaCreated(e.runID, name)
			continue
		}

		empty, err := handle.Empty(ctx)
		if err != nil {
			return &ConnectionError{Err: err}
		}
		if empty {
			if err := e.store.Ensure(ctx); err != nil {
				return &ConnectionError{Err: err}
			}
			if _, err := e.store.SaveEmptySchema(ctx, name); err != nil {
				return &ConnectionError{Err: err}
			}
			e.logger.LogSchemaFoundEmpty(e.runID, name)
		}
	}

	return nil
}
