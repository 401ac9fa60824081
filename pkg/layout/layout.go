// Package layout renders a form template and its extracted values into a
// paginated PDF.
//
// Fields flow into two columns, two per row, section after section. A row
// that does not fit above the bottom margin moves to a new page as a whole, so
// a field's label and box always share a page. Values are either drawn as
// wrapped static text (ModeFlat) or embedded as named interactive fields
// (ModeInteractive). An interactive field that cannot be created is drawn flat
// and the rest of the document continues; any other drawing or serialisation
// failure aborts the generation.
//
// Drawing uses fpdf with visual (top-left origin) coordinates; interactive
// widgets are written afterwards by pdfcpu in PDF point space.
package layout

import (
	"bytes"
	"fmt"

	"github.com/gardar/formpdf/pkg/form"
)

// Result is the outcome of one generation pass.
type Result struct {
	PDF        []byte
	Pages      int
	Placements []Placement
}

// Fallbacks returns the placements of interactive fields drawn flat.
func (r *Result) Fallbacks() []Placement {
	var out []Placement
	for _, p := range r.Placements {
		if p.Fallback {
			out = append(out, p)
		}
	}
	return out
}

// Render lays out tmpl with data. Every call uses its own document, cursor
// and field-name counter.
func Render(tmpl *form.Template, data form.Data, cfg Config, mode Mode) (*Result, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("template is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout config: %w", err)
	}

	r, err := newRenderer(tmpl, data, cfg, mode)
	if err != nil {
		return nil, err
	}
	if err := r.run(); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", tmpl.ID, err)
	}

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	out, err := r.fields.apply(buf.Bytes(), cfg.Paper, cfg.Value)
	if err != nil {
		return nil, err
	}

	r.log.Debug("document rendered",
		"template", tmpl.ID,
		"mode", mode.String(),
		"pages", r.cursor.Page,
		"fields", len(r.placements),
		"widgets", len(r.fields.widgets),
		"bytes", len(out))

	return &Result{PDF: out, Pages: r.cursor.Page, Placements: r.placements}, nil
}
