// SPDX-License-Identifier: Apache-2.0

// Package loader discovers migration scripts under a set of filesystem
// locations and returns them as a finite, strictly version-ascending
// sequence. File content is never read eagerly: each returned script is
// bound to a lazy loader so that a Validate pass over already-applied
// scripts doesn't pay for reading scripts it never needs to checksum.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/northlake-data/schemadrift/pkg/migration"
)

// DirReader lists the entries of a directory. It returns an error if the
// directory does not exist; the loader wraps that as LocationMissingError.
type DirReader func(dir string) ([]fs.DirEntry, error)

// FileReader reads the full contents of a single file.
type FileReader func(path string) ([]byte, error)

// Loader discovers Scripts under configured locations.
type Loader struct {
	affixes  migration.Affixes
	readDir  DirReader
	readFile FileReader
}

// Option configures a Loader.
type Option func(*Loader)

// WithAffixes overrides the default filename grammar.
func WithAffixes(a migration.Affixes) Option {
	return func(l *Loader) { l.affixes = a }
}

// WithDirReader overrides how directories are listed. Intended for tests
// that want to exercise the loader without touching the real filesystem.
func WithDirReader(r DirReader) Option {
	return func(l *Loader) { l.readDir = r }
}

// WithFileReader overrides how file content is read. Intended for tests.
func WithFileReader(r FileReader) Option {
	return func(l *Loader) { l.readFile = r }
}

// New constructs a Loader with the default filename grammar and OS-backed
// directory/file readers.
func New(opts ...Option) *Loader {
	l := &Loader{
		affixes:  migration.DefaultAffixes(),
		readDir:  func(dir string) ([]fs.DirEntry, error) { return os.ReadDir(dir) },
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load discovers scripts under locations, in the order the locations are
// given, and returns them as a single version-ascending sequence.
//
// A location that does not exist fails the whole load with
// LocationMissingError. A filename that matches the grammar but embeds an
// unparsable version fails the whole load. A filename that simply doesn't
// match the grammar is ignored. Two scripts sharing a version, whether in
// the same or different locations, fail with DuplicateVersionError.
func (l *Loader) Load(locations []string) ([]*migration.Script, error) {
	seen := make(map[string]*migration.Script)
	scripts := make([]*migration.Script, 0)

	for _, location := range locations {
		entries, err := l.readDir(location)
		if err != nil {
			return nil, &LocationMissingError{Location: location}
		}

		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			names = append(names, entry.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			version, _, ok, err := migration.ParseFilename(l.affixes, name)
			if err != nil {
				return nil, fmt.Errorf("discovering scripts in %q: %w", location, err)
			}
			if !ok {
				continue
			}

			path := filepath.Join(location, name)
			script := migration.NewScript(version, name, path, l.fileLoader(path))

			key := version.String()
			if existing, dup := seen[key]; dup {
				return nil, &DuplicateVersionError{
					Version: key,
					First:   existing.Location,
					Second:  script.Location,
				}
			}
			seen[key] = script
			scripts = append(scripts, script)
		}
	}

	sort.SliceStable(scripts, func(i, j int) bool {
		return scripts[i].Version.LessThan(scripts[j].Version)
	})

	return scripts, nil
}

func (l *Loader) fileLoader(path string) migration.ContentLoader {
	return func() ([]byte, error) {
		return l.readFile(path)
	}
}
