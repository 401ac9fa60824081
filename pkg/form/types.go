// Package form describes document templates independently of any family's data.
//
// A Template is an ordered list of Sections, each an ordered list of
// FieldDescriptors. Order is rendering order and never changes at runtime.
// A descriptor's ID names both the wizard input and the document slot it feeds.
//
// Data (the extracted values for one generation) is a flat map from descriptor
// ID to a tagged Value.
package form

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTemplate is returned by Lookup for IDs not in the catalog.
var ErrUnknownTemplate = errors.New("unknown template")

// FieldType enumerates the supported field kinds.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldDate     FieldType = "date"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
)

var fieldTypes = map[FieldType]struct{}{
	FieldText: {}, FieldDate: {}, FieldEmail: {}, FieldPhone: {},
	FieldTextarea: {}, FieldSelect: {}, FieldCheckbox: {},
}

// ParseFieldType validates s as a FieldType. The empty string means text.
func ParseFieldType(s string) (FieldType, error) {
	if s == "" {
		return FieldText, nil
	}
	ft := FieldType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := fieldTypes[ft]; !ok {
		return "", fmt.Errorf("unknown field type %q", s)
	}
	return ft, nil
}

// FieldDescriptor defines one field of a template.
type FieldDescriptor struct {
	ID        string    `yaml:"id"`
	Label     string    `yaml:"label"`
	Type      FieldType `yaml:"type"`
	Required  bool      `yaml:"required,omitempty"`
	Options   []string  `yaml:"options,omitempty"`
	MaxLength int       `yaml:"maxLength,omitempty"`
}

// HasOption reports whether v is one of the descriptor's options.
func (f FieldDescriptor) HasOption(v string) bool {
	for _, o := range f.Options {
		if o == v {
			return true
		}
	}
	return false
}

// Section groups fields under a title. Fields render two per row.
type Section struct {
	Title  string            `yaml:"title"`
	Fields []FieldDescriptor `yaml:"fields"`
}

// Template is a static description of a document.
type Template struct {
	ID       string    `yaml:"id"`
	Title    string    `yaml:"title"`
	Sections []Section `yaml:"sections"`
}

// TemplateName implements the docgen template contract.
func (t *Template) TemplateName() string { return t.ID }

// Fields returns every descriptor in rendering order.
func (t *Template) Fields() []FieldDescriptor {
	var out []FieldDescriptor
	for _, s := range t.Sections {
		out = append(out, s.Fields...)
	}
	return out
}

// Validate checks the template for structural errors.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("template id is required")
	}
	for si, s := range t.Sections {
		for fi, f := range s.Fields {
			where := fmt.Sprintf("template %s: section %d (%s) field %d", t.ID, si+1, s.Title, fi+1)
			if strings.TrimSpace(f.ID) == "" {
				return fmt.Errorf("%s: id is required", where)
			}
			if _, ok := fieldTypes[f.Type]; !ok {
				return fmt.Errorf("%s (%s): unknown field type %q", where, f.ID, f.Type)
			}
			if len(f.Options) > 0 && f.Type != FieldSelect {
				return fmt.Errorf("%s (%s): options are only allowed on select fields", where, f.ID)
			}
			if f.MaxLength < 0 {
				return fmt.Errorf("%s (%s): maxLength must not be negative", where, f.ID)
			}
		}
	}
	return nil
}
