package manifest

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Constraint is a declared version requirement: either an exact pin
// ("1.2.19") or a range predicate ("^1.2.20", "~1.4", ">=2, <3").
type Constraint struct {
	raw   string
	exact *semver.Version
	rng   *semver.Constraints
}

// ParseConstraint parses a constraint string. A string that parses as a bare
// semantic version is a pin; anything else must be a valid range expression.
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Constraint{}, fmt.Errorf("empty version constraint")
	}
	if v, err := semver.StrictNewVersion(s); err == nil {
		return Constraint{raw: s, exact: v}, nil
	}
	rng, err := semver.NewConstraint(s)
	if err != nil {
		return Constraint{}, fmt.Errorf("parse constraint %q: %w", s, err)
	}
	return Constraint{raw: s, rng: rng}, nil
}

// IsExact reports whether the constraint is a pin.
func (c Constraint) IsExact() bool { return c.exact != nil }

// Exact returns the pinned version, or nil for range constraints.
func (c Constraint) Exact() *semver.Version { return c.exact }

// Check reports whether v satisfies the constraint.
func (c Constraint) Check(v *semver.Version) bool {
	if v == nil {
		return false
	}
	if c.exact != nil {
		return c.exact.Equal(v)
	}
	if c.rng != nil {
		return c.rng.Check(v)
	}
	return false
}

func (c Constraint) String() string { return c.raw }
