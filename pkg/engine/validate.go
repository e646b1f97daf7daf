// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
)

// Validate reconciles the on-disk script sequence against the recorded
// ledger. mode selects whether a checksum mismatch is fatal (ModeStrict,
// used by Migrate) or repaired in place (ModeRepair, used by Repair).
func (e *Engine) Validate(ctx context.Context, mode Mode) error {
	exists, err := e.store.Exists(ctx)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	if !exists {
		e.logger.Info("NoMetadataFound")
		return nil
	}

	applied, err := e.store.ListApplied(ctx)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	if len(applied) == 0 {
		return nil
	}

	lastApplied := applied[len(applied)-1].Version

	start, err := e.store.FindStartVersion(ctx)
	if err != nil {
		return &ConnectionError{Err: err}
	}

	appliedByVersion := make(map[string]appliedEntry, len(applied))
	for _, a := range applied {
		if !a.HasVersion {
			continue
		}
		appliedByVersion[a.Version.String()] = appliedEntry{id: a.ID, checksum: a.Checksum}
	}

	scripts, err := e.loadScripts()
	if err != nil {
		return err
	}

	for _, script := range scripts {
		if script.Version.LessThan(start) {
			continue
		}
		if script.Version.GreaterThan(lastApplied) {
			continue
		}

		entry, found := appliedByVersion[script.Version.String()]
		if !found {
			return &ValidationError{Reason: "MigrationMetadataNotFound", Script: script.Name}
		}

		checksum, err := script.Checksum(e.cfg.PlaceholderPrefix, e.cfg.PlaceholderSuffix, e.cfg.Placeholders)
		if err != nil {
			return &DiscoveryError{Reason: "computing checksum", Err: err}
		}

		if checksum != entry.checksum {
			if mode != ModeRepair {
				return &ValidationError{Reason: "IncorrectMigrationChecksum", Script: script.Name}
			}
			if err := e.store.UpdateChecksum(ctx, entry.id, checksum); err != nil {
				return &ConnectionError{Err: err}
			}
			e.NbRepair++
			e.logger.LogRepair(e.runID, script.Name)
		}
	}

	return nil
}

type appliedEntry struct {
	id       int64
	checksum string
}
