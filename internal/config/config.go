// SPDX-License-Identifier: Apache-2.0

// Package config loads the engine's configuration surface from a file
// and environment variables, validates it against an embedded JSON Schema
// document, and translates it into an engine.Config. Validation happens
// once, before the engine.Config value is constructed — the engine itself
// forbids mutating a Config after a command begins, so there is no setter
// path left for a late validation error to slip through.
package config

import (
	_ "embed"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/viper"

	"github.com/northlake-data/schemadrift/pkg/engine"
	"github.com/northlake-data/schemadrift/pkg/migration"
)

//go:embed schema.json
var schemaDoc []byte

const envPrefix = "SCHEMADRIFT"

// Load reads configuration from the file at path (if non-empty), overlays
// environment variables prefixed SCHEMADRIFT_, validates the merged
// document against schema.json, and returns the resulting engine.Config.
func Load(path string) (engine.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return engine.Config{}, &engine.ConfigurationError{Field: "file", Err: err}
		}
	}

	if err := validate(v.AllSettings()); err != nil {
		return engine.Config{}, err
	}

	return toEngineConfig(v)
}

func validate(document map[string]any) error {
	compiler := jsonschema.NewCompiler()
	schema, err := jsonschema.UnmarshalJSON(newReader(schemaDoc))
	if err != nil {
		return &engine.ConfigurationError{Field: "schema.json", Err: err}
	}
	if err := compiler.AddResource("schema.json", schema); err != nil {
		return &engine.ConfigurationError{Field: "schema.json", Err: err}
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return &engine.ConfigurationError{Field: "schema.json", Err: err}
	}

	if err := compiled.Validate(document); err != nil {
		return &engine.ConfigurationError{Field: "document", Err: err}
	}
	return nil
}

func toEngineConfig(v *viper.Viper) (engine.Config, error) {
	cfg := engine.Config{
		ConnectionString:           v.GetString("connection_string"),
		Driver:                     v.GetString("driver"),
		Schemas:                    v.GetStringSlice("schemas"),
		MetadataTableSchema:        v.GetString("metadata_table_schema"),
		MetadataTableName:          v.GetString("metadata_table_name"),
		Locations:                  v.GetStringSlice("locations"),
		Encoding:                   v.GetString("encoding"),
		SQLMigrationPrefix:         v.GetString("sql_migration_prefix"),
		SQLMigrationSeparator:      v.GetString("sql_migration_separator"),
		SQLMigrationSuffix:         v.GetString("sql_migration_suffix"),
		PlaceholderPrefix:          v.GetString("placeholder_prefix"),
		PlaceholderSuffix:          v.GetString("placeholder_suffix"),
		Placeholders:               migration.Placeholders(v.GetStringMapString("placeholders")),
		Command:                    engine.Command(v.GetString("command")),
		IsEraseDisabled:            v.GetBool("is_erase_disabled"),
		MustEraseOnValidationError: v.GetBool("must_erase_on_validation_error"),
		InstalledBy:                v.GetString("installed_by"),
	}

	if raw := v.GetString("target_version"); raw != "" {
		version, err := migration.Parse(raw)
		if err != nil {
			return engine.Config{}, &engine.ConfigurationError{Field: "target_version", Err: err}
		}
		cfg.TargetVersion = version
	}

	return cfg, nil
}

func newReader(b []byte) *strings.Reader {
	return strings.NewReader(string(b))
}
