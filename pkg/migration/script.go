// SPDX-License-Identifier: Apache-2.0

// Package migration defines the immutable on-disk migration script entity:
// its version, its filename grammar, placeholder substitution and checksum.
// It does not read files or talk to a database; both are external
// collaborators (see Loader and the dialect/state packages).
package migration

import (
	"fmt"
	"strings"
)

// Affixes configures the filename grammar used to recognize a migration
// script: <prefix><version><separator><description><suffix>.
type Affixes struct {
	Prefix    string
	Separator string
	Suffix    string
}

// DefaultAffixes returns the grammar defaults from the configuration
// surface: prefix "V", separator "__", suffix ".sql".
func DefaultAffixes() Affixes {
	return Affixes{Prefix: "V", Separator: "__", Suffix: ".sql"}
}

// ContentLoader lazily fetches the raw bytes of a script's body. It is
// supplied by the caller (the loader's file-I/O collaborator); the Script
// type never touches the filesystem itself.
type ContentLoader func() ([]byte, error)

// Script is an immutable record of one on-disk migration file. It is
// created during discovery, never mutated, and discarded at command end.
// Its identity is its Version.
type Script struct {
	Version  Version
	Name     string
	Location string

	load ContentLoader
	body *string
}

// NewScript constructs a Script bound to a lazy content loader. The body is
// not read until Body or Checksum is first called.
func NewScript(version Version, name, location string, load ContentLoader) *Script {
	return &Script{Version: version, Name: name, Location: location, load: load}
}

// Body returns the decoded script body, reading and caching it on first
// access. Scripts are discarded at command end, so the cache never goes
// stale within a single command.
func (s *Script) Body() (string, error) {
	if s.body != nil {
		return *s.body, nil
	}

	raw, err := s.load()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", s.Name, err)
	}

	decoded := string(raw)
	s.body = &decoded
	return decoded, nil
}

// Checksum returns the deterministic checksum of the body after placeholder
// substitution with the caller-supplied placeholder affixes and values.
func (s *Script) Checksum(placeholderPrefix, placeholderSuffix string, placeholders Placeholders) (string, error) {
	body, err := s.Body()
	if err != nil {
		return "", err
	}

	substituted := Substitute(body, placeholderPrefix, placeholderSuffix, placeholders)
	return Checksum(substituted), nil
}

// ParseFilename parses a candidate filename against the filename grammar.
// ok is false (with a nil error) when the filename simply doesn't match the
// grammar — such files are ignored silently by the loader (this lets
// README-style files live alongside scripts). A non-nil error means the
// filename matched the affixes but the embedded version failed to parse,
// which is a fatal discovery error for that file.
func ParseFilename(affixes Affixes, filename string) (version Version, description string, ok bool, err error) {
	rest, hasPrefix := cutPrefix(filename, affixes.Prefix)
	if !hasPrefix {
		return Version{}, "", false, nil
	}

	rest, hasSuffix := cutSuffix(rest, affixes.Suffix)
	if !hasSuffix {
		return Version{}, "", false, nil
	}

	versionPart, descriptionPart, hasSeparator := strings.Cut(rest, affixes.Separator)
	if !hasSeparator || versionPart == "" {
		return Version{}, "", false, nil
	}

	v, err := Parse(versionPart)
	if err != nil {
		return Version{}, "", true, fmt.Errorf("parsing version from filename %q: %w", filename, err)
	}

	return v, descriptionPart, true, nil
}

func cutPrefix(s, prefix string) (string, bool) {
	if prefix == "" {
		return s, true
	}
	return strings.CutPrefix(s, prefix)
}

func cutSuffix(s, suffix string) (string, bool) {
	if suffix == "" {
		return s, true
	}
	return strings.CutSuffix(s, suffix)
}
