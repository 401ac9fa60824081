// Package inspect reads generated documents back: page count and sizes,
// interactive field names and the drawn text.
package inspect

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/gardar/formpdf/internal/pdfconf"
	"github.com/gardar/formpdf/pkg/units"
)

func readContext(data []byte) (*model.Context, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), pdfconf.New())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx, nil
}

// PageCount returns the number of pages of data.
func PageCount(data []byte) (int, error) {
	ctx, err := readContext(data)
	if err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}

// PageSizes returns the media box size of every page, in points.
func PageSizes(data []byte) ([]units.Size, error) {
	ctx, err := readContext(data)
	if err != nil {
		return nil, err
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	sizes := make([]units.Size, len(dims))
	for i, d := range dims {
		sizes[i] = units.Size{Width: d.Width, Height: d.Height}
	}
	return sizes, nil
}

// FieldNames lists the fully qualified names of every terminal AcroForm
// field, in document order.
func FieldNames(data []byte) ([]string, error) {
	ctx, err := readContext(data)
	if err != nil {
		return nil, err
	}

	root, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}
	acroFormObj, found := root.Find("AcroForm")
	if !found {
		return nil, nil
	}
	acroForm, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroForm == nil {
		return nil, nil
	}
	fieldsObj, found := acroForm.Find("Fields")
	if !found {
		return nil, nil
	}
	fields, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	var names []string
	for _, f := range fields {
		if err := collectFieldNames(ctx, f, "", &names, 0); err != nil {
			return nil, err
		}
	}
	return names, nil
}

func collectFieldNames(ctx *model.Context, obj types.Object, parent string, names *[]string, depth int) error {
	if depth > 32 {
		return fmt.Errorf("field hierarchy too deep under %q", parent)
	}
	dict, err := ctx.DereferenceDict(obj)
	if err != nil {
		return fmt.Errorf("failed to dereference field: %w", err)
	}
	if dict == nil {
		return nil
	}

	name := parent
	if t, found := dict.Find("T"); found {
		if partial, err := ctx.DereferenceStringOrHexLiteral(t, model.V10, nil); err == nil && partial != "" {
			if name != "" {
				name += "."
			}
			name += partial
		}
	}

	kidsObj, found := dict.Find("Kids")
	if found {
		kids, err := ctx.DereferenceArray(kidsObj)
		if err != nil {
			return fmt.Errorf("failed to dereference kids of %q: %w", name, err)
		}
		named := 0
		for _, k := range kids {
			kd, err := ctx.DereferenceDict(k)
			if err == nil && kd != nil {
				if _, ok := kd.Find("T"); ok {
					named++
				}
			}
		}
		// Kids without names are widget annotations of this field.
		if named > 0 {
			for _, k := range kids {
				if err := collectFieldNames(ctx, k, name, names, depth+1); err != nil {
					return err
				}
			}
			return nil
		}
	}

	if name != "" {
		*names = append(*names, name)
	}
	return nil
}

// Widget is a named widget annotation. Rect is in document space.
type Widget struct {
	Name string
	Page int
	Rect units.Rect
}

// Widgets lists the widget annotations carrying a field name, page by page.
func Widgets(data []byte) ([]Widget, error) {
	ctx, err := readContext(data)
	if err != nil {
		return nil, err
	}

	var widgets []Widget
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
			return nil, fmt.Errorf("failed to dereference annotations of page %d: %w", i, err)
		}
		for _, a := range annots {
			d, err := ctx.DereferenceDict(a)
			if err != nil || d == nil {
				continue
			}
			if st := d.NameEntry("Subtype"); st == nil || *st != "Widget" {
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
			r, err := ctx.RectForArray(d.ArrayEntry("Rect"))
			if err != nil || r == nil {
				continue
			}
			widgets = append(widgets, Widget{
				Name: name,
				Page: i,
				Rect: units.Rect{X: r.LL.X, Y: r.LL.Y, W: r.Width(), H: r.Height()},
			})
		}
	}
	return widgets, nil
}

// Layers lists the names of the optional content groups declared in the
// document catalog.
func Layers(data []byte) ([]string, error) {
	ctx, err := readContext(data)
	if err != nil {
		return nil, err
	}
	root, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}
	propsObj, found := root.Find("OCProperties")
	if !found {
		return nil, nil
	}
	props, err := ctx.DereferenceDict(propsObj)
	if err != nil || props == nil {
		return nil, err
	}
	ocgsObj, found := props.Find("OCGs")
	if !found {
		return nil, nil
	}
	ocgs, err := ctx.DereferenceArray(ocgsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference OCGs: %w", err)
	}

	var names []string
	for _, o := range ocgs {
		d, err := ctx.DereferenceDict(o)
		if err != nil || d == nil {
			continue
		}
		n, found := d.Find("Name")
		if !found {
			continue
		}
		name, err := ctx.DereferenceStringOrHexLiteral(n, model.V10, nil)
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Text returns the text drawn on each page.
func Text(data []byte) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("text extraction failed: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for text extraction: %w", err)
	}

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		var b strings.Builder
		for _, t := range page.Content().Text {
			b.WriteString(t.S)
		}
		pages = append(pages, b.String())
	}
	return pages, nil
}
