package manifest

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// YAMLManifest handles Chart.yaml, pubspec.yaml and similar files with a
// top-level version key.
type YAMLManifest struct{}

func (m *YAMLManifest) Format() string { return "yaml" }

func (m *YAMLManifest) Read(path string) (string, error) {
	doc, err := m.load(path)
	if err != nil {
		return "", err
	}
	node, err := versionNode(doc)
	if err != nil {
		return "", err
	}
	return node.Value, nil
}

// Write replaces the version scalar where it sits in the file, so
// comments, blank lines and indentation are untouched. Files where the
// scalar cannot be located that way are re-encoded through yaml.Node,
// which keeps comments and key order but normalises layout.
func (m *YAMLManifest) Write(path, version string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := m.decode(data)
	if err != nil {
		return err
	}
	node, err := versionNode(doc)
	if err != nil {
		return err
	}

	if out, ok := replaceScalar(data, node, version); ok {
		return writeFile(path, out)
	}

	node.Value = version
	node.Tag = "!!str"
	node.Style = 0

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

// replaceScalar swaps the single-line scalar at node's position for
// value, keeping its quoting.
func replaceScalar(data []byte, node *yaml.Node, value string) ([]byte, bool) {
	start := offsetOf(data, node.Line, node.Column)
	if start < 0 {
		return nil, false
	}

	var raw, repl string
	switch node.Style {
	case yaml.DoubleQuotedStyle:
		raw, repl = strconv.Quote(node.Value), strconv.Quote(value)
	case yaml.SingleQuotedStyle:
		raw, repl = "'"+node.Value+"'", "'"+value+"'"
	case 0:
		raw, repl = node.Value, value
	default:
		return nil, false
	}
	if !bytes.HasPrefix(data[start:], []byte(raw)) {
		return nil, false
	}

	out := make([]byte, 0, len(data)+len(repl))
	out = append(out, data[:start]...)
	out = append(out, repl...)
	out = append(out, data[start+len(raw):]...)
	return out, true
}

// offsetOf converts a 1-based line and column into a byte offset, or -1.
func offsetOf(data []byte, line, column int) int {
	if line < 1 || column < 1 {
		return -1
	}
	off := 0
	for l := 1; l < line; l++ {
		i := bytes.IndexByte(data[off:], '\n')
		if i < 0 {
			return -1
		}
		off += i + 1
	}
	off += column - 1
	if off > len(data) {
		return -1
	}
	return off
}

func (m *YAMLManifest) load(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return m.decode(data)
}

func (m *YAMLManifest) decode(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &doc, nil
}

func versionNode(doc *yaml.Node) (*yaml.Node, error) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrNoVersion
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, ErrNoVersion
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if key.Value == "version" && val.Kind == yaml.ScalarNode && val.Value != "" {
			return val, nil
		}
	}
	return nil, ErrNoVersion
}
