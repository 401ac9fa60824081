// Package docgen is the single entry point for producing enrollment
// documents.
//
// Two strategies exist: the flow layout builds a document from a form
// template, and the overlay stamps values onto an official PDF described by a
// calibration table. Both implement DocumentRenderer and the Generator
// picks one from the kind of template it is given.
package docgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gardar/formpdf/pkg/family"
	"github.com/gardar/formpdf/pkg/form"
	"github.com/gardar/formpdf/pkg/layout"
	"github.com/gardar/formpdf/pkg/overlay"
)

// ErrNoRenderer is returned when no registered renderer supports a template.
var ErrNoRenderer = errors.New("no renderer")

// Template is anything a document can be generated from: a *form.Template
// or an *overlay.Table.
type Template interface {
	TemplateName() string
}

// Options tune one generation.
type Options struct {
	Mode     layout.Mode // Flow layout only
	Filename string      // Defaults to {templateName}_{YYYY-MM-DD}.pdf
}

// Request is what a DocumentRenderer receives.
type Request struct {
	Template Template
	Record   *family.Family
	Options  Options
	Now      time.Time
}

// Document is a generated PDF.
type Document struct {
	Name       string // Template name
	Filename   string
	Bytes      []byte
	Pages      int
	Placements []layout.Placement // Flow layout only
	Stamped    []string           // Overlay only
	Data       form.Data
}

// DocumentRenderer produces a Document from one kind of template.
type DocumentRenderer interface {
	Name() string
	Supports(tmpl Template) bool
	Render(ctx context.Context, req Request) (*Document, error)
}

// Generator dispatches generations to the registered renderers.
type Generator struct {
	Registry *Registry
	Logger   *slog.Logger     // nil means slog.Default()
	Now      func() time.Time // nil means time.Now
}

// New returns a Generator with renderers registered in order.
func New(renderers ...DocumentRenderer) (*Generator, error) {
	reg := NewRegistry()
	for _, r := range renderers {
		if err := reg.Register(r); err != nil {
			return nil, err
		}
	}
	return &Generator{Registry: reg}, nil
}

// Generate renders tmpl with rec. A nil record yields a blank document.
func (g *Generator) Generate(ctx context.Context, tmpl Template, rec *family.Family, opts Options) (*Document, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("template is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.Registry == nil {
		return nil, fmt.Errorf("%w: generator has no registry", ErrNoRenderer)
	}
	renderer, err := g.Registry.For(tmpl)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if g.Now != nil {
		now = g.Now()
	}
	log := g.Logger
	if log == nil {
		log = slog.Default()
	}

	doc, err := renderer.Render(ctx, Request{Template: tmpl, Record: rec, Options: opts, Now: now})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", renderer.Name(), err)
	}

	doc.Name = tmpl.TemplateName()
	doc.Filename = opts.Filename
	if doc.Filename == "" {
		doc.Filename = DefaultFilename(doc.Name, now)
	}

	log.Info("document generated",
		"template", doc.Name,
		"renderer", renderer.Name(),
		"file", doc.Filename,
		"pages", doc.Pages,
		"bytes", len(doc.Bytes))
	return doc, nil
}

// DefaultFilename is {name}_{YYYY-MM-DD}.pdf.
func DefaultFilename(name string, now time.Time) string {
	return fmt.Sprintf("%s_%s.pdf", name, now.Format("2006-01-02"))
}

// Lookup resolves a built-in form template or calibration table by name.
func Lookup(name string) (Template, error) {
	if t, err := form.Lookup(name); err == nil {
		return t, nil
	}
	t, err := overlay.LookupTable(name)
	if errors.Is(err, overlay.ErrUnknownTable) {
		return nil, fmt.Errorf("%w: %q", form.ErrUnknownTemplate, name)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Names lists the built-in form templates followed by the calibration tables.
func Names() ([]string, error) {
	names := form.Catalog()
	tables, err := overlay.Tables()
	if err != nil {
		return nil, err
	}
	return append(names, tables...), nil
}
