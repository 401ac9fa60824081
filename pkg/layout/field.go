package layout

import (
	"errors"
	"fmt"

	"github.com/gardar/formpdf/pkg/form"
	"github.com/gardar/formpdf/pkg/units"
)

// RenderCursor is the mutable state of one generation pass.
type RenderCursor struct {
	Page    int     // 1-based page currently drawn on
	Y       float64 // Top of the next element, visual space
	counter int
}

// NextName returns a document-unique field name derived from id.
func (c *RenderCursor) NextName(id string) string {
	c.counter++
	return fmt.Sprintf("%s_%d", id, c.counter)
}

// Placement records where a field ended up.
type Placement struct {
	ID       string
	Name     string     // Interactive field name, empty when drawn flat
	Kind     WidgetKind // WidgetNone when drawn flat
	Fallback bool       // Interactive creation failed and the field was drawn flat
	Page     int
	Column   int
	Top      float64    // Label top, visual space
	Bottom   float64    // Box bottom, visual space
	Box      units.Rect // Field box, visual space
	Lines    int        // Number of value lines drawn flat
}

// fieldPlan is a measured field, ready to draw.
type fieldPlan struct {
	fd        form.FieldDescriptor
	value     form.Value
	kind      WidgetKind
	name      string
	fallback  bool
	lines     []string
	boxHeight float64
}

func (p *fieldPlan) height(cfg Config) float64 {
	return cfg.LabelHeight + p.boxHeight
}

// plan decides how a field renders and measures it. In interactive mode the
// widget name is reserved here; a rejected name downgrades the field to flat.
func (r *renderer) plan(fd form.FieldDescriptor, v form.Value, width float64) *fieldPlan {
	p := &fieldPlan{fd: fd, value: v}

	if r.mode == ModeInteractive {
		kind := WidgetFor(fd, v)
		name := r.cursor.NextName(fd.ID)
		if err := r.fields.reserve(name); err != nil {
			r.log.Warn("interactive field rejected, drawing flat",
				"field", fd.ID, "name", name, "error", err)
			p.fallback = true
		} else {
			p.kind = kind
			p.name = name
		}
	}

	switch {
	case fd.Type == form.FieldCheckbox:
		p.boxHeight = r.cfg.CheckboxSize
	case p.kind == WidgetTextarea:
		p.boxHeight = r.cfg.TextareaHeight
	case p.kind != WidgetNone:
		p.boxHeight = r.cfg.FieldHeight
	default:
		p.lines = r.wrapValue(v.Text(), width-2*r.cfg.Padding)
		base := r.cfg.FieldHeight
		if fd.Type == form.FieldTextarea {
			base = r.cfg.TextareaHeight
		}
		need := 2*r.cfg.Padding + r.cfg.Value.Size + float64(len(p.lines)-1)*r.cfg.LineHeight()
		p.boxHeight = max(base, need)
	}
	return p
}

func (r *renderer) wrapValue(s string, width float64) []string {
	r.setFont(r.cfg.Value)
	return WrapText(r.measure, s, width)
}

func (r *renderer) measure(s string) float64 {
	return r.pdf.GetStringWidth(encodeCP1252(s))
}

func (r *renderer) setFont(f FontConfig) {
	r.pdf.SetFont(f.Name, f.Style, f.Size)
}

// drawField renders a planned field with its label top at (x, top).
func (r *renderer) drawField(p *fieldPlan, column int, x, top, width float64) {
	cfg := r.cfg

	label := p.fd.Label
	if p.fd.Required {
		label += " *"
	}
	r.setFont(cfg.Label)
	r.pdf.SetTextColor(110, 110, 110)
	r.pdf.Text(x, top+cfg.Label.Size, encodeCP1252(Truncate(r.measure, label, width)))

	boxTop := top + cfg.LabelHeight
	box := units.Rect{X: x, Y: boxTop, W: width, H: p.boxHeight}
	if p.fd.Type == form.FieldCheckbox {
		box.W = cfg.CheckboxSize
	}

	r.pdf.SetDrawColor(170, 170, 170)
	r.pdf.SetFillColor(248, 248, 248)
	r.pdf.SetLineWidth(0.5)
	r.pdf.Rect(box.X, box.Y, box.W, box.H, "FD")

	if p.kind != WidgetNone {
		r.fields.place(widget{
			Kind:    p.kind,
			Name:    p.name,
			Tip:     p.fd.Label,
			Page:    r.cursor.Page,
			Rect:    units.ToDocumentRect(box, r.size.Height),
			Value:   p.value,
			Options: p.fd.Options,
		})
	} else if p.fd.Type == form.FieldCheckbox {
		r.drawCheckmark(box, p.value.Checked())
	} else {
		r.drawLines(p.lines, x+cfg.Padding, boxTop+cfg.Padding+cfg.Value.Size)
	}

	r.placements = append(r.placements, Placement{
		ID:       p.fd.ID,
		Name:     p.name,
		Kind:     p.kind,
		Fallback: p.fallback,
		Page:     r.cursor.Page,
		Column:   column,
		Top:      top,
		Bottom:   boxTop + p.boxHeight,
		Box:      box,
		Lines:    len(p.lines),
	})
}

func (r *renderer) drawLines(lines []string, x, baseline float64) {
	r.setFont(r.cfg.Value)
	r.pdf.SetTextColor(0, 0, 0)
	for i, line := range lines {
		if line == "" {
			continue
		}
		r.pdf.Text(x, baseline+float64(i)*r.cfg.LineHeight(), encodeCP1252(line))
	}
}

// drawCheckmark stamps a check glyph inside box when checked.
func (r *renderer) drawCheckmark(box units.Rect, checked bool) {
	if !checked {
		return
	}
	size := box.H * 0.9
	r.pdf.SetFont("ZapfDingbats", "", size)
	r.pdf.SetTextColor(0, 0, 0)
	w := r.pdf.GetStringWidth("4")
	r.pdf.Text(box.X+(box.W-w)/2, box.Y+box.H*0.82, "4")
}

func (r *fieldRegistry) reserve(name string) error {
	if !validFieldName(name) {
		return fmt.Errorf("%w: %q", errInvalidFieldName, name)
	}
	if _, dup := r.names[name]; dup {
		return fmt.Errorf("%w: %q", errDuplicateFieldName, name)
	}
	r.names[name] = struct{}{}
	return nil
}

func (r *fieldRegistry) place(w widget) {
	r.widgets = append(r.widgets, w)
}

// IsFieldNameError reports whether err is a rejected interactive field name.
func IsFieldNameError(err error) bool {
	return errors.Is(err, errInvalidFieldName) || errors.Is(err, errDuplicateFieldName)
}
