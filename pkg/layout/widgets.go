package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/gardar/formpdf/internal/pdfconf"
	"github.com/gardar/formpdf/pkg/form"
	"github.com/gardar/formpdf/pkg/units"
)

// WidgetKind is the interactive field created for a descriptor.
type WidgetKind int

const (
	WidgetNone WidgetKind = iota
	WidgetText
	WidgetTextarea
	WidgetCheckbox
	WidgetDropdown
)

func (k WidgetKind) String() string {
	switch k {
	case WidgetText:
		return "text"
	case WidgetTextarea:
		return "textarea"
	case WidgetCheckbox:
		return "checkbox"
	case WidgetDropdown:
		return "dropdown"
	}
	return "none"
}

// WidgetFor picks the widget kind for a descriptor and its current value.
// Select fields without options, or whose value is not one of them, become
// text fields so the value is not lost.
func WidgetFor(fd form.FieldDescriptor, v form.Value) WidgetKind {
	switch fd.Type {
	case form.FieldCheckbox:
		return WidgetCheckbox
	case form.FieldTextarea:
		return WidgetTextarea
	case form.FieldSelect:
		if len(fd.Options) == 0 {
			return WidgetText
		}
		if s := v.Text(); s != "" && !fd.HasOption(s) {
			return WidgetText
		}
		return WidgetDropdown
	case form.FieldText, form.FieldDate, form.FieldEmail, form.FieldPhone:
		return WidgetText
	}
	return WidgetText
}

var (
	errInvalidFieldName   = errors.New("invalid field name")
	errDuplicateFieldName = errors.New("duplicate field name")
)

// widget is one interactive field waiting to be written by pdfcpu.
type widget struct {
	Kind    WidgetKind
	Name    string
	Tip     string
	Page    int
	Rect    units.Rect // document space
	Value   form.Value
	Options []string
}

// fieldRegistry holds the widgets of one document and enforces name rules.
type fieldRegistry struct {
	names   map[string]struct{}
	widgets []widget
}

func newFieldRegistry() *fieldRegistry {
	return &fieldRegistry{names: make(map[string]struct{})}
}

func validFieldName(name string) bool {
	if name == "" || strings.Contains(name, ".") {
		return false
	}
	for _, r := range name {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// pdfcpu form description, see pdfcpu's "create" JSON.
type pdfcpuDoc struct {
	Paper  string                 `json:"paper"`
	Origin string                 `json:"origin"`
	Pages  map[string]*pdfcpuPage `json:"pages"`
}

type pdfcpuPage struct {
	Content pdfcpuContent `json:"content"`
}

type pdfcpuContent struct {
	TextFields []pdfcpuTextField `json:"textfield,omitempty"`
	CheckBoxes []pdfcpuCheckBox  `json:"checkbox,omitempty"`
	ComboBoxes []pdfcpuComboBox  `json:"combobox,omitempty"`
}

type pdfcpuFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type pdfcpuTextField struct {
	ID        string     `json:"id"`
	Tip       string     `json:"tip,omitempty"`
	Value     string     `json:"value,omitempty"`
	Pos       [2]float64 `json:"pos"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Multiline bool       `json:"multiline,omitempty"`
	Font      pdfcpuFont `json:"font"`
}

type pdfcpuCheckBox struct {
	ID    string     `json:"id"`
	Tip   string     `json:"tip,omitempty"`
	Value bool       `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Width float64    `json:"width"`
}

type pdfcpuComboBox struct {
	ID      string     `json:"id"`
	Tip     string     `json:"tip,omitempty"`
	Value   string     `json:"value,omitempty"`
	Options []string   `json:"options"`
	Pos     [2]float64 `json:"pos"`
	Width   float64    `json:"width"`
	Font    pdfcpuFont `json:"font"`
}

func (r *fieldRegistry) describe(paper string, font FontConfig) ([]byte, error) {
	doc := pdfcpuDoc{Paper: paper, Origin: "LowerLeft", Pages: make(map[string]*pdfcpuPage)}
	f := pdfcpuFont{Name: font.Name, Size: int(font.Size)}

	for _, w := range r.widgets {
		key := strconv.Itoa(w.Page)
		page, ok := doc.Pages[key]
		if !ok {
			page = &pdfcpuPage{}
			doc.Pages[key] = page
		}
		pos := [2]float64{w.Rect.X, w.Rect.Y}

		switch w.Kind {
		case WidgetCheckbox:
			page.Content.CheckBoxes = append(page.Content.CheckBoxes, pdfcpuCheckBox{
				ID: w.Name, Tip: w.Tip, Value: w.Value.Checked(), Pos: pos, Width: w.Rect.W,
			})
		case WidgetDropdown:
			page.Content.ComboBoxes = append(page.Content.ComboBoxes, pdfcpuComboBox{
				ID: w.Name, Tip: w.Tip, Value: w.Value.Text(), Options: w.Options, Pos: pos, Width: w.Rect.W, Font: f,
			})
		case WidgetText, WidgetTextarea:
			page.Content.TextFields = append(page.Content.TextFields, pdfcpuTextField{
				ID: w.Name, Tip: w.Tip, Value: w.Value.Text(), Pos: pos, Width: w.Rect.W, Height: w.Rect.H,
				Multiline: w.Kind == WidgetTextarea, Font: f,
			})
		default:
			return nil, fmt.Errorf("widget %s has no kind", w.Name)
		}
	}
	return json.Marshal(doc)
}

// apply writes the registered widgets onto the pages of pdf. pdfcpu takes
// the whole description at once, so a field it rejects fails the document;
// reserve keeps names pdfcpu would refuse out of the registry.
func (r *fieldRegistry) apply(pdf []byte, paper string, font FontConfig) ([]byte, error) {
	if len(r.widgets) == 0 {
		return pdf, nil
	}
	desc, err := r.describe(paper, font)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := api.Create(bytes.NewReader(pdf), bytes.NewReader(desc), &out, pdfconf.New()); err != nil {
		return nil, fmt.Errorf("failed to add %d interactive fields: %w", len(r.widgets), err)
	}
	return fitWidgets(out.Bytes(), r.widgets)
}

// fitWidgets sets the rectangle of every widget to its drawn box. pdfcpu
// sizes single-line fields from their font; their appearance keeps its
// height and is centred vertically in the box.
func fitWidgets(data []byte, widgets []widget) ([]byte, error) {
	boxes := make(map[string]units.Rect, len(widgets))
	for _, w := range widgets {
		boxes[w.Name] = w.Rect
	}

	ctx, err := api.ReadContext(bytes.NewReader(data), pdfconf.New())
	if err != nil {
		return nil, fmt.Errorf("failed to read interactive fields back: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	for i := 1; i <= ctx.PageCount; i++ {
		page, _, _, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		obj, found := page.Find("Annots")
		if !found {
			continue
		}
		annots, err := ctx.DereferenceArray(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to read annotations of page %d: %w", i, err)
		}
		for _, a := range annots {
			d, err := ctx.DereferenceDict(a)
			if err != nil || d == nil {
				continue
			}
			t, found := d.Find("T")
			if !found {
				continue
			}
			name, err := ctx.DereferenceStringOrHexLiteral(t, model.V10, nil)
			if err != nil {
				continue
			}
			box, ok := boxes[name]
			if !ok {
				continue
			}
			if err := fitWidget(ctx, d, box); err != nil {
				return nil, fmt.Errorf("failed to fit field %s: %w", name, err)
			}
		}
	}

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to write interactive fields: %w", err)
	}
	return out.Bytes(), nil
}

func fitWidget(ctx *model.Context, d types.Dict, box units.Rect) error {
	rect, err := ctx.RectForArray(d.ArrayEntry("Rect"))
	if err != nil {
		return err
	}
	d["Rect"] = types.NewNumberArray(box.X, box.Y, box.X+box.W, box.Y+box.H)

	ap := d.DictEntry("AP")
	if ap == nil {
		return nil
	}
	// Checkboxes keep a dict of states here and are already square.
	ref, ok := ap["N"].(types.IndirectRef)
	if !ok {
		return nil
	}
	sd, _, err := ctx.DereferenceStreamDict(ref)
	if err != nil || sd == nil {
		return err
	}
	dy := (box.H - rect.Height()) / 2
	sd.Dict["BBox"] = types.NewNumberArray(0, -dy, rect.Width(), box.H-dy)
	return nil
}
