package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/nacre/model"
)

// docFormat identifies how a graph document is encoded on disk.
type docFormat string

const (
	formatJSON docFormat = "json"
	formatYAML docFormat = "yaml"
)

// resolveFormat picks the document format from the configured preference
// and the file extension. "auto" (or empty) detects by extension, falling
// back to JSON for unknown extensions.
func resolveFormat(path, configured string) docFormat {
	switch configured {
	case string(formatJSON):
		return formatJSON
	case string(formatYAML):
		return formatYAML
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

// loadDocument reads a graph document into a bag. YAML scalars are
// normalized to their JSON types so both formats materialize identically.
func loadDocument(path string, format docFormat) (model.Data, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc any
	switch format {
	case formatYAML:
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	bag, ok := normalizeValue(doc).(model.Data)
	if !ok {
		return nil, fmt.Errorf("parsing %s: document root is not an object", path)
	}
	return bag, nil
}

// normalizeValue rebuilds parsed values with JSON scalar types: whole
// numbers become float64 and nested maps become bags.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(model.Data, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	}
	return v
}

// marshalDocument encodes the bag in the given format.
func marshalDocument(doc model.Data, format docFormat) ([]byte, error) {
	switch format {
	case formatYAML:
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(map[string]any(doc)); err != nil {
			return nil, fmt.Errorf("marshaling document: %w", err)
		}
		_ = encoder.Close()
		return buf.Bytes(), nil
	default:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling document: %w", err)
		}
		return append(out, '\n'), nil
	}
}

// writeDocument writes the document to path atomically (write to temp,
// then rename).
func writeDocument(path string, doc model.Data, format docFormat) error {
	data, err := marshalDocument(doc, format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, ".nacre.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
