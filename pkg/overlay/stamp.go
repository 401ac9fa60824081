// Package overlay stamps values onto pre-existing official PDFs at
// hand-calibrated positions.
//
// The calibrations are data (see Table) kept apart from the stamping code, so a
// new revision of a form only needs a new YAML table. Each source page is
// imported unchanged and the values are drawn on top of it, on one optional
// content layer per page. There is no wrapping and no pagination: a value
// wider than its MaxWidth is cut.
package overlay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/gardar/formpdf/pkg/form"
	"github.com/gardar/formpdf/pkg/inspect"
	"github.com/gardar/formpdf/pkg/units"
)

var (
	// ErrBadSignature is returned when the source bytes are not a PDF.
	ErrBadSignature = errors.New("not a PDF document")
	// ErrAlreadyStamped is returned when the source already carries a stamp
	// layer and Config.Force is not set.
	ErrAlreadyStamped = errors.New("document already stamped")
)

var pdfSignature = []byte("%PDF-")

// CheckSignature fails fast on bytes that do not start with "%PDF-".
func CheckSignature(data []byte) error {
	if bytes.HasPrefix(data, pdfSignature) {
		return nil
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: input is empty", ErrBadSignature)
	}
	head := data[:min(len(data), 16)]
	return fmt.Errorf("%w: starts with %q instead of %q", ErrBadSignature, head, pdfSignature)
}

// Result is the outcome of one stamping pass.
type Result struct {
	PDF     []byte
	Pages   int
	Stamped []string // Paths drawn
	Skipped []string // Paths whose page does not exist in the source
}

// Stamp draws values onto source at the positions of table. Missing or empty
// values are left blank.
func Stamp(source []byte, table *Table, values map[string]form.Value, cfg Config) (*Result, error) {
	if table == nil {
		return nil, fmt.Errorf("calibration table is nil")
	}
	if err := CheckSignature(source); err != nil {
		return nil, err
	}
	log := cfg.logger().With("table", table.Name)

	layerResult, err := CheckExistingLayers(source, cfg.LayerName)
	if err != nil {
		return nil, fmt.Errorf("layer detection failed: %w", err)
	}
	for _, w := range layerResult.Warnings {
		log.Warn(w)
	}
	if layerResult.HasStamp {
		if !cfg.Force {
			return nil, fmt.Errorf("%w (layer %q), use force to stamp again", ErrAlreadyStamped, layerResult.StampLayer)
		}
		log.Warn("source already stamped, stamping again", "layer", layerResult.StampLayer)
	}

	sizes, err := inspect.PageSizes(source)
	if err != nil {
		return nil, err
	}

	res := &Result{Pages: len(sizes)}
	byPage := make(map[int][]stamp)
	for _, path := range table.Paths() {
		s, page, ok := resolve(table, path, values, cfg, log)
		if !ok {
			continue
		}
		if page < 1 || page > len(sizes) {
			log.Warn("calibrated page missing from source, skipping",
				"path", path, "page", page, "pages", len(sizes))
			res.Skipped = append(res.Skipped, path)
			continue
		}
		byPage[page] = append(byPage[page], s)
		res.Stamped = append(res.Stamped, path)
	}

	out, err := modifyExistingPDF(source, sizes, byPage, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("error stamping %s: %w", table.Name, err)
	}
	res.PDF = out

	log.Debug("document stamped",
		"pages", res.Pages, "stamped", len(res.Stamped), "skipped", len(res.Skipped))
	return res, nil
}

// resolve turns the value of path into a stamp. ok is false when there is
// nothing to draw.
func resolve(table *Table, path string, values map[string]form.Value, cfg Config, log *slog.Logger) (s stamp, page int, ok bool) {
	v := values[path]

	if g, isGroup := table.Groups[path]; isGroup {
		answer := v.Text()
		if answer == "" {
			return s, 0, false
		}
		at, found := g.Options[answer]
		if !found {
			log.Warn("value matches no group option", "path", path, "value", answer)
			return s, 0, false
		}
		return stamp{path: path, mark: true, at: at, size: fontSize(g.FontSize, cfg)}, g.Page, true
	}

	fc := table.Fields[path]
	s = stamp{
		path:     path,
		at:       Point{X: fc.X, Y: fc.Y},
		size:     fontSize(fc.FontSize, cfg),
		color:    fc.FontColor,
		maxWidth: fc.MaxWidth,
	}
	if fc.Mark {
		if !v.Checked() {
			return s, 0, false
		}
		s.mark = true
		return s, fc.Page, true
	}
	s.text = v.Text()
	if s.text == "" {
		return s, 0, false
	}
	return s, fc.Page, true
}

func fontSize(size float64, cfg Config) float64 {
	if size > 0 {
		return size
	}
	return cfg.Font.Size
}

// modifyExistingPDF imports every page of source and overlays the stamps.
func modifyExistingPDF(
	source []byte,
	sizes []units.Size,
	byPage map[int][]stamp,
	cfg Config,
	log *slog.Logger,
) (out []byte, err error) {
	// gofpdi panics on malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to import source pages: %v", r)
		}
	}()

	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetAutoPageBreak(false, 0)
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(source))

	for i, size := range sizes {
		pageNum := i + 1

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.Width, Ht: size.Height})

		tpl := importer.ImportPageFromStream(pdf, &rs, pageNum, "/MediaBox")
		importer.UseImportedTemplate(pdf, tpl, 0, 0, size.Width, 0)

		if stamps := byPage[pageNum]; len(stamps) > 0 {
			drawStampLayer(pdf, stamps, size.Height, pageNum, cfg, log)
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNum, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
