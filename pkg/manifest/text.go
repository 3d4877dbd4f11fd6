package manifest

import (
	"os"
	"strings"
)

// TextManifest handles a VERSION file holding nothing but the version.
type TextManifest struct{}

func (m *TextManifest) Format() string { return "text" }

func (m *TextManifest) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", ErrNoVersion
	}
	return v, nil
}

func (m *TextManifest) Write(path, version string) error {
	return writeFile(path, []byte(version+"\n"))
}
