package overlay

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknownTable is returned when no calibration table has the requested name.
var ErrUnknownTable = errors.New("unknown calibration table")

// FieldCoordinate is a hand-measured position on an official form, in PDF
// point space (origin bottom-left). Y is the text baseline.
type FieldCoordinate struct {
	Page      int     `yaml:"page"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	FontSize  float64 `yaml:"fontSize,omitempty"`
	FontColor Color   `yaml:"fontColor,omitempty"`
	MaxWidth  float64 `yaml:"maxWidth,omitempty"` // 0 means unbounded
	Mark      bool    `yaml:"mark,omitempty"`     // Boolean value, stamped as a cross when true
}

// Point is a position in PDF point space.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Group is a set of independently positioned boxes answering one question.
// Only the box whose key matches the value is marked.
type Group struct {
	Page     int              `yaml:"page"`
	FontSize float64          `yaml:"fontSize,omitempty"`
	Options  map[string]Point `yaml:"options"`
}

// Table is the calibration of one revision of an official PDF.
type Table struct {
	Name   string                     `yaml:"name"`
	Title  string                     `yaml:"title,omitempty"`
	File   string                     `yaml:"file"` // Asset file name, may contain accents and dashes
	Fields map[string]FieldCoordinate `yaml:"fields"`
	Groups map[string]Group           `yaml:"groups,omitempty"`
}

// TemplateName names the documents produced from t.
func (t *Table) TemplateName() string { return t.Name }

// Paths returns every field and group path of t, sorted.
func (t *Table) Paths() []string {
	out := make([]string, 0, len(t.Fields)+len(t.Groups))
	for p := range t.Fields {
		out = append(out, p)
	}
	for p := range t.Groups {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Validate checks that every position is usable.
func (t *Table) Validate() error {
	if t.Name == "" {
		return errors.New("calibration table name is required")
	}
	if t.File == "" {
		return fmt.Errorf("calibration table %s: file is required", t.Name)
	}
	for p, fc := range t.Fields {
		if fc.Page < 1 {
			return fmt.Errorf("calibration table %s: field %s: page must be at least 1", t.Name, p)
		}
		if fc.FontSize < 0 || fc.MaxWidth < 0 {
			return fmt.Errorf("calibration table %s: field %s: negative size", t.Name, p)
		}
	}
	for p, g := range t.Groups {
		if _, dup := t.Fields[p]; dup {
			return fmt.Errorf("calibration table %s: %s is both a field and a group", t.Name, p)
		}
		if g.Page < 1 {
			return fmt.Errorf("calibration table %s: group %s: page must be at least 1", t.Name, p)
		}
		if len(g.Options) == 0 {
			return fmt.Errorf("calibration table %s: group %s has no options", t.Name, p)
		}
	}
	return nil
}

// ParseTable decodes and validates a YAML calibration table.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse calibration table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

//go:embed calibrations/*.yaml
var calibrations embed.FS

var (
	builtinOnce sync.Once
	builtin     map[string]*Table
	builtinErr  error
)

func loadBuiltin() {
	entries, err := calibrations.ReadDir("calibrations")
	if err != nil {
		builtinErr = err
		return
	}
	builtin = make(map[string]*Table, len(entries))
	for _, e := range entries {
		data, err := calibrations.ReadFile(path.Join("calibrations", e.Name()))
		if err != nil {
			builtinErr = err
			return
		}
		t, err := ParseTable(data)
		if err != nil {
			builtinErr = fmt.Errorf("%s: %w", e.Name(), err)
			return
		}
		builtin[t.Name] = t
	}
}

// Tables returns the names of the built-in calibration tables, sorted.
func Tables() ([]string, error) {
	builtinOnce.Do(loadBuiltin)
	if builtinErr != nil {
		return nil, builtinErr
	}
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// LookupTable returns the built-in calibration table called name. Callers
// must not modify it.
func LookupTable(name string) (*Table, error) {
	builtinOnce.Do(loadBuiltin)
	if builtinErr != nil {
		return nil, builtinErr
	}
	t, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// Color is an RGB text color written as "#rrggbb" in tables.
type Color struct {
	R, G, B int
	Set     bool
}

// ParseColor accepts "#rrggbb" and "rrggbb".
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return Color{}, nil
	}
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff), Set: true}, nil
}

func (c Color) String() string {
	if !c.Set {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// IsZero lets yaml omit unset colors.
func (c Color) IsZero() bool { return !c.Set }
