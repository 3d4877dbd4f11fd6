package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	Major      = "major"
	Minor      = "minor"
	Patch      = "patch"
	Prerelease = "prerelease"
)

// Increment returns current bumped by kind. An empty kind means patch.
func Increment(current *semver.Version, kind string) (*semver.Version, error) {
	var next semver.Version

	switch strings.ToLower(kind) {
	case Major:
		next = current.IncMajor()
	case Minor:
		next = current.IncMinor()
	case Patch, "":
		next = current.IncPatch()
	case Prerelease:
		return incPrerelease(current)
	default:
		return nil, fmt.Errorf("unknown increment %q: want major | minor | patch | prerelease", kind)
	}
	return &next, nil
}

// incPrerelease bumps the trailing numeric pre-release identifier, appends
// ".0" when there is none, and starts "<next patch>-0" on a release version.
func incPrerelease(current *semver.Version) (*semver.Version, error) {
	pre := current.Prerelease()
	if pre == "" {
		patched := current.IncPatch()
		next, err := patched.SetPrerelease("0")
		if err != nil {
			return nil, fmt.Errorf("set prerelease: %w", err)
		}
		return &next, nil
	}

	ids := strings.Split(pre, ".")
	last := ids[len(ids)-1]
	if n, err := strconv.ParseUint(last, 10, 64); err == nil {
		ids[len(ids)-1] = strconv.FormatUint(n+1, 10)
	} else {
		ids = append(ids, "0")
	}

	next, err := current.SetPrerelease(strings.Join(ids, "."))
	if err != nil {
		return nil, fmt.Errorf("set prerelease: %w", err)
	}
	next, err = next.SetMetadata("")
	if err != nil {
		return nil, fmt.Errorf("clear metadata: %w", err)
	}
	return &next, nil
}
