// Package version parses, compares and increments semantic versions.
package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Comparator parses and orders semantic versions.
type Comparator interface {
	// Parse returns the version and true when s is a valid semantic version.
	Parse(s string) (*semver.Version, bool)

	// Compare returns -1, 0 or 1 when a is lower than, equal to or greater than b.
	Compare(a, b *semver.Version) int
}

// Zero is the version assumed when a repository carries no version tags.
var Zero = semver.New(0, 0, 0, "", "")

type Semver struct{}

func New() Semver {
	return Semver{}
}

// Parse accepts MAJOR.MINOR.PATCH with optional pre-release and build
// metadata. Surrounding whitespace and a single leading "v" or "=" are
// tolerated so that tags like "v1.2.3" count as versions.
func (Semver) Parse(s string) (*semver.Version, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "=")
	if strings.HasPrefix(s, "v") || strings.HasPrefix(s, "V") {
		s = s[1:]
	}
	if s == "" {
		return nil, false
	}

	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return nil, false
	}
	return v, true
}

func (Semver) Compare(a, b *semver.Version) int {
	return a.Compare(b)
}

// Highest returns the greatest valid version among tags. Tags that do not
// parse are skipped. Zero is returned when nothing parses.
func Highest(c Comparator, tags []string) *semver.Version {
	highest := Zero
	for _, tag := range tags {
		v, ok := c.Parse(tag)
		if !ok {
			continue
		}
		if c.Compare(v, highest) > 0 {
			highest = v
		}
	}
	return highest
}
