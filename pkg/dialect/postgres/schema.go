// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"fmt"

	"github.com/northlake-data/schemadrift/pkg/dialect"
)

type schemaHandle struct {
	helper *Helper
	name   string
}

var _ dialect.SchemaHandle = (*schemaHandle)(nil)

func (s *schemaHandle) Exists(ctx context.Context) (bool, error) {
	var exists bool
	rows, err := s.helper.Query(ctx, `SELECT EXISTS (
		SELECT 1 FROM information_schema.schemata WHERE schema_name = $1
	)`, s.name)
	if err != nil {
		return false, fmt.Errorf("checking existence of schema %q: %w", s.name, err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&exists); err != nil {
			return false, err
		}
	}
	return exists, rows.Err()
}

func (s *schemaHandle) Empty(ctx context.Context) (bool, error) {
	var count int
	rows, err := s.helper.Query(ctx, `SELECT count(*) FROM information_schema.tables
		WHERE table_schema = $1`, s.name)
	if err != nil {
		return false, fmt.Errorf("checking whether schema %q is empty: %w", s.name, err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return false, err
		}
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (s *schemaHandle) Create(ctx context.Context) error {
	_, err := s.helper.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", s.helper.QuoteIdentifier(s.name)))
	if err != nil {
		return fmt.Errorf("creating schema %q: %w", s.name, err)
	}
	return nil
}

func (s *schemaHandle) Drop(ctx context.Context) error {
	_, err := s.helper.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", s.helper.QuoteIdentifier(s.name)))
	if err != nil {
		return fmt.Errorf("dropping schema %q: %w", s.name, err)
	}
	return nil
}

// Erase removes every object inside the schema by dropping and immediately
// recreating it, so a schema of the same name exists afterwards. Grants and
// other settings on the old schema are not carried over to the new one.
func (s *schemaHandle) Erase(ctx context.Context) error {
	quoted := s.helper.QuoteIdentifier(s.name)
	_, err := s.helper.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE; CREATE SCHEMA %s", quoted, quoted))
	if err != nil {
		return fmt.Errorf("erasing schema %q: %w", s.name, err)
	}
	return nil
}
