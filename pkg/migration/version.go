// SPDX-License-Identifier: Apache-2.0

package migration

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a totally ordered identifier parsed from a dotted numeric
// string such as "1", "1.2" or "2.0.10". Components are compared as
// integers, left to right; a version with fewer components is treated as
// zero-padded on the right.
type Version struct {
	raw        string
	components []int64
	kind       versionKind
}

type versionKind int

const (
	kindNormal versionKind = iota
	kindZero
	kindMax
)

// Zero returns the sentinel version that compares less than any real
// version. It is the default start version (no baseline set).
func Zero() Version {
	return Version{raw: "0", kind: kindZero}
}

// Max returns the sentinel version that compares greater than any real
// version. It is the default target version for Migrate (no cap).
func Max() Version {
	return Version{raw: "", kind: kindMax}
}

// Parse parses a dotted numeric version string. Each component must be a
// non-negative integer; the string must contain at least one component.
func Parse(raw string) (Version, error) {
	if raw == "" {
		return Version{}, fmt.Errorf("version string is empty")
	}

	parts := strings.Split(raw, ".")
	components := make([]int64, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return Version{}, fmt.Errorf("version %q has an empty component", raw)
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("version %q: component %q is not an integer: %w", raw, p, err)
		}
		if n < 0 {
			return Version{}, fmt.Errorf("version %q: component %q is negative", raw, p)
		}
		components = append(components, n)
	}

	return Version{raw: raw, components: components, kind: kindNormal}, nil
}

// MustParse is like Parse but panics on error. Intended for constants in
// tests.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the original dotted representation for normal versions,
// or a sentinel label for Zero/Max.
func (v Version) String() string {
	switch v.kind {
	case kindZero:
		return "0"
	case kindMax:
		return "<max>"
	default:
		return v.raw
	}
}

// IsZero reports whether v is the zero sentinel.
func (v Version) IsZero() bool {
	return v.kind == kindZero
}

// Equal reports whether two versions compare equal under Compare, so a
// shorter version equals its zero-padded form ("1" equals "1.0").
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// Compare returns -1, 0 or 1 if v is less than, equal to, or greater than
// other, following component-wise integer ordering with zero-padding of
// the shorter version.
func (v Version) Compare(other Version) int {
	if v.kind == kindMax && other.kind == kindMax {
		return 0
	}
	if v.kind == kindMax {
		return 1
	}
	if other.kind == kindMax {
		return -1
	}
	if v.kind == kindZero && other.kind == kindZero {
		return 0
	}
	if v.kind == kindZero {
		return -1
	}
	if other.kind == kindZero {
		return 1
	}

	n := len(v.components)
	if len(other.components) > n {
		n = len(other.components)
	}
	for i := 0; i < n; i++ {
		var a, b int64
		if i < len(v.components) {
			a = v.components[i]
		}
		if i < len(other.components) {
			b = other.components[i]
		}
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}

// LessThan reports whether v sorts strictly before other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// LessOrEqual reports whether v sorts before or equal to other.
func (v Version) LessOrEqual(other Version) bool {
	return v.Compare(other) <= 0
}

// GreaterThan reports whether v sorts strictly after other.
func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}
