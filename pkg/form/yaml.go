package form

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlField struct {
	ID        string   `yaml:"id"`
	Label     string   `yaml:"label"`
	Type      string   `yaml:"type"`
	Required  bool     `yaml:"required"`
	Options   []string `yaml:"options"`
	MaxLength int      `yaml:"maxLength"`
}

type yamlSection struct {
	Title  string      `yaml:"title"`
	Fields []yamlField `yaml:"fields"`
}

type yamlTemplate struct {
	ID       string        `yaml:"id"`
	Title    string        `yaml:"title"`
	Sections []yamlSection `yaml:"sections"`
}

// ParseTemplate decodes and validates a YAML template.
func ParseTemplate(data []byte) (*Template, error) {
	var yt yamlTemplate
	if err := yaml.Unmarshal(data, &yt); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	t := &Template{ID: yt.ID, Title: yt.Title}
	for _, ys := range yt.Sections {
		s := Section{Title: ys.Title}
		for _, yf := range ys.Fields {
			ft, err := ParseFieldType(yf.Type)
			if err != nil {
				return nil, fmt.Errorf("template %s: field %s: %w", yt.ID, yf.ID, err)
			}
			s.Fields = append(s.Fields, FieldDescriptor{
				ID:        yf.ID,
				Label:     yf.Label,
				Type:      ft,
				Required:  yf.Required,
				Options:   yf.Options,
				MaxLength: yf.MaxLength,
			})
		}
		t.Sections = append(t.Sections, s)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTemplate reads a YAML template from disk.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTemplate(data)
}
