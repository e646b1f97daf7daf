// SPDX-License-Identifier: Apache-2.0

package loader_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northlake-data/schemadrift/pkg/loader"
)

type fakeEntry struct {
	name  string
	isDir bool
}

func (e fakeEntry) Name() string               { return e.name }
func (e fakeEntry) IsDir() bool                { return e.isDir }
func (e fakeEntry) Type() fs.FileMode          { return 0 }
func (e fakeEntry) Info() (fs.FileInfo, error) { return nil, nil }

// fakeTree is a tiny in-memory location -> filenames -> content map, used so
// loader tests never touch the real filesystem.
type fakeTree struct {
	files map[string][]string
	body  map[string]string
}

func (t *fakeTree) readDir(dir string) ([]fs.DirEntry, error) {
	names, ok := t.files[dir]
	if !ok {
		return nil, fs.ErrNotExist
	}
	entries := make([]fs.DirEntry, len(names))
	for i, n := range names {
		entries[i] = fakeEntry{name: n}
	}
	return entries, nil
}

func (t *fakeTree) readFile(path string) ([]byte, error) {
	body, ok := t.body[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(body), nil
}

func TestLoadOrdersAcrossLocationsByVersion(t *testing.T) {
	tree := &fakeTree{
		files: map[string][]string{
			"locA": {"V2__add_users.sql", "V1__init.sql", "README.md"},
			"locB": {"V1.5__patch.sql"},
		},
		body: map[string]string{
			"locA/V2__add_users.sql": "create table users();",
			"locA/V1__init.sql":      "create schema app;",
			"locB/V1.5__patch.sql":   "alter table app.t add column x int;",
		},
	}

	l := loader.New(loader.WithDirReader(tree.readDir), loader.WithFileReader(tree.readFile))
	scripts, err := l.Load([]string{"locA", "locB"})
	require.NoError(t, err)
	require.Len(t, scripts, 3)

	assert.Equal(t, "V1__init.sql", scripts[0].Name)
	assert.Equal(t, "V1.5__patch.sql", scripts[1].Name)
	assert.Equal(t, "V2__add_users.sql", scripts[2].Name)

	body, err := scripts[0].Body()
	require.NoError(t, err)
	assert.Equal(t, "create schema app;", body)
}

func TestLoadFailsOnMissingLocation(t *testing.T) {
	tree := &fakeTree{files: map[string][]string{}}
	l := loader.New(loader.WithDirReader(tree.readDir), loader.WithFileReader(tree.readFile))

	_, err := l.Load([]string{"does-not-exist"})
	require.Error(t, err)

	var missing *loader.LocationMissingError
	assert.ErrorAs(t, err, &missing)
}

func TestLoadFailsOnDuplicateVersionAcrossLocations(t *testing.T) {
	tree := &fakeTree{
		files: map[string][]string{
			"locA": {"V1__init.sql"},
			"locB": {"V1__also_init.sql"},
		},
		body: map[string]string{
			"locA/V1__init.sql":      "select 1;",
			"locB/V1__also_init.sql": "select 2;",
		},
	}

	l := loader.New(loader.WithDirReader(tree.readDir), loader.WithFileReader(tree.readFile))
	_, err := l.Load([]string{"locA", "locB"})
	require.Error(t, err)

	var dup *loader.DuplicateVersionError
	assert.ErrorAs(t, err, &dup)
}

func TestLoadFailsOnUnparsableVersionInFilename(t *testing.T) {
	tree := &fakeTree{
		files: map[string][]string{
			"locA": {"Vabc__broken.sql"},
		},
		body: map[string]string{},
	}

	l := loader.New(loader.WithDirReader(tree.readDir), loader.WithFileReader(tree.readFile))
	_, err := l.Load([]string{"locA"})
	assert.Error(t, err)
}

func TestLoadIgnoresNonMatchingFilesSilently(t *testing.T) {
	tree := &fakeTree{
		files: map[string][]string{
			"locA": {"README.md", "afterMigrate.sql"},
		},
		body: map[string]string{},
	}

	l := loader.New(loader.WithDirReader(tree.readDir), loader.WithFileReader(tree.readFile))
	scripts, err := l.Load([]string{"locA"})
	require.NoError(t, err)
	assert.Empty(t, scripts)
}
