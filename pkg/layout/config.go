package layout

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gardar/formpdf/pkg/units"
)

// Mode selects how field values end up in the document.
type Mode int

const (
	// ModeFlat draws values as static text.
	ModeFlat Mode = iota
	// ModeInteractive embeds named, editable form fields.
	ModeInteractive
)

func (m Mode) String() string {
	if m == ModeInteractive {
		return "interactive"
	}
	return "flat"
}

// ParseMode accepts "flat" and "interactive".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "flat":
		return ModeFlat, nil
	case "interactive":
		return ModeInteractive, nil
	}
	return ModeFlat, fmt.Errorf("unknown render mode %q (expected flat or interactive)", s)
}

// Config holds the page geometry and typography of generated documents.
// All lengths are in points.
type Config struct {
	Paper string // Page size name, see units.Lookup

	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64

	ColumnGap      float64 // Horizontal space between the two columns
	MinColumnWidth float64 // Narrowest column Validate accepts
	LabelHeight    float64 // Space reserved above a field box for its label
	FieldHeight    float64 // Height of a single-line field box
	TextareaHeight float64 // Height of a textarea field box
	CheckboxSize   float64
	FieldGap       float64 // Vertical space between rows
	SectionGap     float64 // Vertical space between sections
	SectionHeight  float64 // Height of a section title band
	TitleHeight    float64 // Space taken by the document title
	Padding        float64 // Inset of values inside their box
	LineGap        float64 // Extra space between wrapped lines
	FooterOffset   float64 // Distance of the footer below the bottom margin line

	Title   FontConfig
	Section FontConfig
	Label   FontConfig
	Value   FontConfig
	Footer  FontConfig

	PageNumbers bool

	Logger *slog.Logger     // nil means slog.Default()
	Now    func() time.Time // nil means time.Now
}

// FontConfig names a core font.
type FontConfig struct {
	Name  string  // Font family (e.g. "Helvetica")
	Style string  // "", "B", "I", "BI"
	Size  float64 // Size in points
}

// DefaultConfig returns an A4 layout with 50pt margins.
func DefaultConfig() Config {
	return Config{
		Paper:          "A4",
		MarginTop:      50,
		MarginBottom:   50,
		MarginLeft:     50,
		MarginRight:    50,
		ColumnGap:      15,
		MinColumnWidth: 120,
		LabelHeight:    11,
		FieldHeight:    22,
		TextareaHeight: 48,
		CheckboxSize:   12,
		FieldGap:       8,
		SectionGap:     12,
		SectionHeight:  18,
		TitleHeight:    34,
		Padding:        5,
		LineGap:        2,
		FooterOffset:   20,
		Title:          FontConfig{Name: "Helvetica", Style: "B", Size: 16},
		Section:        FontConfig{Name: "Helvetica", Style: "B", Size: 11},
		Label:          FontConfig{Name: "Helvetica", Style: "", Size: 8},
		Value:          FontConfig{Name: "Helvetica", Style: "", Size: 10},
		Footer:         FontConfig{Name: "Helvetica", Style: "I", Size: 7},
		PageNumbers:    true,
	}
}

// PageSize resolves Paper.
func (c Config) PageSize() (units.Size, error) {
	return units.Lookup(c.Paper)
}

// ColumnWidth is the width of one of the two columns on a page of width w.
func (c Config) ColumnWidth(w float64) float64 {
	return (w - c.MarginLeft - c.MarginRight - c.ColumnGap) / 2
}

// LineHeight is the vertical advance between wrapped value lines.
func (c Config) LineHeight() float64 {
	return c.Value.Size + c.LineGap
}

// Validate rejects geometry that cannot hold a single field.
func (c Config) Validate() error {
	size, err := c.PageSize()
	if err != nil {
		return err
	}
	if w := c.ColumnWidth(size.Width); w <= 2*c.Padding || w < c.MinColumnWidth {
		return fmt.Errorf("margins leave %.1fpt columns on %s paper, need at least %.1fpt",
			w, c.Paper, max(c.MinColumnWidth, 2*c.Padding))
	}
	if size.Height-c.MarginTop-c.MarginBottom < c.LabelHeight+c.FieldHeight {
		return fmt.Errorf("margins leave no room for a field on %s paper", c.Paper)
	}
	if c.Value.Size <= 0 || c.Label.Size <= 0 {
		return fmt.Errorf("font sizes must be positive")
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c Config) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
