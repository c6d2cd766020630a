// Package version compares image tags that follow semantic versioning.
package version

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	log "github.com/lucas-albers-lz4/kubedeps/pkg/log"
)

// ErrInvalidVersion is returned for tags that are not semantic versions.
var ErrInvalidVersion = errors.New("invalid version")

// Parse reads tag as a semantic version. A leading "v" and missing minor or
// patch components are accepted, so "17.04" and "v1.3" parse.
func Parse(tag string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(tag))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidVersion, tag, err)
	}
	return v, nil
}

// IsValid reports whether tag parses as a semantic version.
func IsValid(tag string) bool {
	_, err := Parse(tag)
	return err == nil
}

// Compare returns -1, 0 or 1 as a is lower than, equal to or greater than b.
func Compare(a, b string) (int, error) {
	va, err := Parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// IsGreater reports whether a is a higher version than b.
func IsGreater(a, b string) (bool, error) {
	c, err := Compare(a, b)
	if err != nil {
		return false, err
	}
	log.Debug("Compared versions", "a", a, "b", b, "result", c)
	return c > 0, nil
}
