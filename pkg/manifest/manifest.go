// Package manifest reads and rewrites the version recorded in project
// metadata files.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoVersion is returned when a manifest has no version field.
var ErrNoVersion = errors.New("manifest has no version")

type Manifest interface {
	// Read returns the version recorded in the file at path.
	Read(path string) (string, error)

	// Write replaces the recorded version, leaving the rest of the file
	// as it was.
	Write(path, version string) error

	Format() string
}

// Candidates lists the files Detect looks for, in order.
var Candidates = []string{
	"package.json",
	"bower.json",
	"composer.json",
	"manifest.json",
	"Chart.yaml",
	"pubspec.yaml",
	"VERSION",
}

func New(path string) (Manifest, error) {
	base := filepath.Base(path)
	switch ext := strings.ToLower(filepath.Ext(base)); {
	case ext == ".json":
		return &JSONManifest{}, nil
	case ext == ".yaml" || ext == ".yml":
		return &YAMLManifest{}, nil
	case base == "VERSION" || ext == ".txt":
		return &TextManifest{}, nil
	default:
		return nil, fmt.Errorf("unsupported manifest: %s", base)
	}
}

// Detect returns the first candidate manifest present in dir.
func Detect(dir string) (string, error) {
	for _, c := range Candidates {
		p := filepath.Join(dir, c)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no manifest found in %s; looked for %s", dir, strings.Join(Candidates, ", "))
}

// ReadVersion reads the version from the manifest at path.
func ReadVersion(path string) (string, error) {
	m, err := New(path)
	if err != nil {
		return "", err
	}
	v, err := m.Read(path)
	if err != nil {
		return "", fmt.Errorf("read %s manifest %s: %w", m.Format(), path, err)
	}
	return v, nil
}

// WriteVersion records version in the manifest at path.
func WriteVersion(path, version string) error {
	m, err := New(path)
	if err != nil {
		return err
	}
	if err := m.Write(path, version); err != nil {
		return fmt.Errorf("write %s manifest %s: %w", m.Format(), path, err)
	}
	return nil
}

// writeFile keeps the existing file mode.
func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}
