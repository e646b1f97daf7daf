// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"

	"github.com/northlake-data/schemadrift/pkg/state"
)

// Status is a read-only snapshot of the engine's view of the database:
// the resolved metadata schema, the ledger's applied migrations, and the
// on-disk plan Migrate would apply right now. It mutates nothing and
// backs the `info` command.
type Status struct {
	MetadataSchema string
	Applied        []state.AppliedMigration
	Plan           []ScriptPlanEntry
}

// Status runs Initialize and reports the current ledger contents and the
// outstanding migration plan without applying anything.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	if err := e.Initialize(ctx); err != nil {
		return Status{}, err
	}

	var applied []state.AppliedMigration
	exists, err := e.store.Exists(ctx)
	if err != nil {
		return Status{}, &ConnectionError{Err: err}
	}
	if exists {
		applied, err = e.store.ListApplied(ctx)
		if err != nil {
			return Status{}, &ConnectionError{Err: err}
		}
	}

	plan, err := e.Plan(ctx)
	if err != nil {
		return Status{}, err
	}

	return Status{
		MetadataSchema: e.metadataSchema,
		Applied:        applied,
		Plan:           plan,
	}, nil
}
