// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
)

// Erase drops every schema the engine created and empties every schema it
// first observed empty. If erase is disabled in configuration this is a
// safety no-op: the switch is meant to be set in production deployments.
func (e *Engine) Erase(ctx context.Context) error {
	if e.cfg.IsEraseDisabled {
		e.logger.Info("erase is disabled by configuration")
		return nil
	}

	if err := e.Initialize(ctx); err != nil {
		return err
	}

	return e.eraseLocked(ctx)
}

// eraseLocked performs the erase algorithm assuming Initialize has already
// run (Migrate's validation-error interception calls this path directly,
// reusing the connection already bound to e).
func (e *Engine) eraseLocked(ctx context.Context) error {
	exists, err := e.store.Exists(ctx)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	if !exists {
		e.logger.Info("no ledger found, nothing to erase")
		return nil
	}

	names := e.schemasToConsider()

	// Consult can_drop_schema/can_erase_schema for every schema before any
	// destructive action: the ledger lives inside one of these schemas and
	// must not be lost mid-loop.
	type decision struct {
		name      string
		drop      bool
		eraseOnly bool
	}
	decisions := make([]decision, 0, len(names))
	for _, name := range names {
		canDrop, err := e.store.CanDropSchema(ctx, name)
		if err != nil {
			return &ConnectionError{Err: err}
		}
		if canDrop {
			decisions = append(decisions, decision{name: name, drop: true})
			continue
		}
		canErase, err := e.store.CanEraseSchema(ctx, name)
		if err != nil {
			return &ConnectionError{Err: err}
		}
		if canErase {
			decisions = append(decisions, decision{name: name, eraseOnly: true})
		}
	}

	if err := e.helper.Begin(ctx); err != nil {
		return &ConnectionError{Err: err}
	}

	for _, d := range decisions {
		handle := e.helper.Schema(d.name)
		if d.drop {
			if err := handle.Drop(ctx); err != nil {
				_ = e.helper.Rollback(ctx)
				return &EraseError{Reason: "DropSchemaFailed", Schema: d.name, Err: err}
			}
			e.logger.LogSchemaDropped(e.runID, d.name)
			continue
		}

		if err := handle.Erase(ctx); err != nil {
			_ = e.helper.Rollback(ctx)
			return &EraseError{Reason: "EraseSchemaFailed", Schema: d.name, Err: err}
		}
		e.logger.LogSchemaErased(e.runID, d.name)
	}

	if err := e.helper.Commit(ctx); err != nil {
		return &ConnectionError{Err: fmt.Errorf("committing erase: %w", err)}
	}

	return nil
}
