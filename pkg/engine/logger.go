// SPDX-License-Identifier: Apache-2.0

package engine

import "github.com/pterm/pterm"

// Logger is the sink every command reports through: a stream of log
// lines, one event at a time.
type Logger interface {
	Info(msg string, args ...any)

	LogSchemaCreated(runID, schema string)
	LogSchemaFoundEmpty(runID, schema string)
	LogMigrationApplied(runID, name, version string)
	LogMigrationFailed(runID, name string, err error)
	LogRepair(runID, name string)
	LogSchemaDropped(runID, schema string)
	LogSchemaErased(runID, schema string)
}

type ptermLogger struct {
	logger pterm.Logger
}

type noopLogger struct{}

// NewLogger returns a Logger backed by pterm's default structured logger.
func NewLogger() Logger {
	return &ptermLogger{logger: pterm.DefaultLogger}
}

// NewNoopLogger returns a Logger that discards everything, for tests.
func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (l *ptermLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args...))
}

func (l *ptermLogger) LogSchemaCreated(runID, schema string) {
	l.logger.Info("created schema", l.logger.Args("run_id", runID, "schema", schema))
}

func (l *ptermLogger) LogSchemaFoundEmpty(runID, schema string) {
	l.logger.Info("found empty schema", l.logger.Args("run_id", runID, "schema", schema))
}

func (l *ptermLogger) LogMigrationApplied(runID, name, version string) {
	l.logger.Info("applied migration", l.logger.Args("run_id", runID, "name", name, "version", version))
}

func (l *ptermLogger) LogMigrationFailed(runID, name string, err error) {
	l.logger.Error("migration failed", l.logger.Args("run_id", runID, "name", name, "error", err))
}

func (l *ptermLogger) LogRepair(runID, name string) {
	l.logger.Info("repaired checksum", l.logger.Args("run_id", runID, "name", name))
}

func (l *ptermLogger) LogSchemaDropped(runID, schema string) {
	l.logger.Info("dropped schema", l.logger.Args("run_id", runID, "schema", schema))
}

func (l *ptermLogger) LogSchemaErased(runID, schema string) {
	l.logger.Info("erased schema", l.logger.Args("run_id", runID, "schema", schema))
}

func (l *noopLogger) Info(msg string, args ...any)                     {}
func (l *noopLogger) LogSchemaCreated(runID, schema string)            {}
func (l *noopLogger) LogSchemaFoundEmpty(runID, schema string)         {}
func (l *noopLogger) LogMigrationApplied(runID, name, version string)  {}
func (l *noopLogger) LogMigrationFailed(runID, name string, err error) {}
func (l *noopLogger) LogRepair(runID, name string)                     {}
func (l *noopLogger) LogSchemaDropped(runID, schema string)            {}
func (l *noopLogger) LogSchemaErased(runID, schema string)             {}
