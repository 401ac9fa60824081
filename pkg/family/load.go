package family

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the serialisation of a record file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the format from a file extension. Unknown
// extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode reads one family record.
func Decode(r io.Reader, format Format) (*Family, error) {
	var f Family
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode family JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode family YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported record format %q", format)
	}
	return &f, nil
}

// Load reads a record from disk, choosing the format from the extension.
func Load(path string) (*Family, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Decode(fh, FormatFromPath(path))
}
