package manifest

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// JSONManifest handles package.json style files with a top-level
// "version" string.
type JSONManifest struct{}

func (m *JSONManifest) Format() string { return "json" }

func (m *JSONManifest) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return m.version(data)
}

func (m *JSONManifest) version(data []byte) (string, error) {
	var pkg struct {
		Version *string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if pkg.Version == nil || *pkg.Version == "" {
		return "", ErrNoVersion
	}
	return *pkg.Version, nil
}

// Write edits the raw bytes instead of re-encoding so that key order,
// indentation and unrelated values survive. Only the top-level key is
// touched; nested "version" fields are left alone.
func (m *JSONManifest) Write(path, version string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	current, err := m.version(data)
	if err != nil {
		return err
	}

	start, end, ok := topLevelValue(data, "version")
	if !ok {
		return fmt.Errorf("locate version %s: %w", current, ErrNoVersion)
	}

	quoted, err := json.Marshal(version)
	if err != nil {
		return err
	}

	out := make([]byte, 0, len(data)+len(quoted))
	out = append(out, data[:start]...)
	out = append(out, quoted...)
	out = append(out, data[end:]...)

	return writeFile(path, out)
}

// topLevelValue returns the byte range of the string value stored under
// key in the outermost object of data. The document must already be
// valid JSON.
func topLevelValue(data []byte, key string) (int, int, bool) {
	want := `"` + key + `"`
	depth := 0

	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case '"':
			end := stringEnd(data, i)
			if end < 0 {
				return 0, 0, false
			}

			colon := skipSpace(data, end)
			if depth == 1 && colon < len(data) && data[colon] == ':' && string(data[i:end]) == want {
				val := skipSpace(data, colon+1)
				if val >= len(data) || data[val] != '"' {
					return 0, 0, false
				}
				valEnd := stringEnd(data, val)
				return val, valEnd, valEnd > 0
			}
			i = end - 1
		}
	}
	return 0, 0, false
}

// stringEnd returns the offset just past the closing quote of the string
// starting at data[start], or -1.
func stringEnd(data []byte, start int) int {
	for i := start + 1; i < len(data); i++ {
		switch data[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return -1
}

func skipSpace(data []byte, i int) int {
	for i < len(data) {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}
