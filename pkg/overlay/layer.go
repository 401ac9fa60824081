package overlay

import (
	"fmt"
	"log/slog"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gardar/formpdf/pkg/layout"
	"github.com/gardar/formpdf/pkg/units"
)

// markGlyph is stamped at Mark fields and group answers.
const markGlyph = "X"

// stamp is one value resolved against its calibrated position.
type stamp struct {
	path     string
	text     string
	mark     bool
	at       Point // Document space
	size     float64
	color    Color
	maxWidth float64
}

// drawStampLayer draws a page's stamps onto their own layer.
// The pageNum parameter is used to create unique layer names for each page.
func drawStampLayer(
	pdf *fpdf.Fpdf,
	stamps []stamp,
	pageHeight float64,
	pageNum int,
	cfg Config,
	log *slog.Logger,
) {
	layerName := fmt.Sprintf("%s (Page %d)", cfg.LayerName, pageNum)
	layer := pdf.AddLayer(layerName, true)
	pdf.BeginLayer(layer)

	encodingErrors := 0
	for _, s := range stamps {
		if !drawStamp(pdf, s, pageHeight, cfg) {
			encodingErrors++
		}
	}

	pdf.EndLayer()

	if encodingErrors > 0 {
		log.Warn("characters outside Windows-1252 replaced",
			"layer", layerName, "values", encodingErrors, "total", len(stamps))
	}
}

// drawStamp renders a single value at its baseline. It reports false when
// the text had to be re-encoded lossily.
func drawStamp(pdf *fpdf.Fpdf, s stamp, pageHeight float64, cfg Config) bool {
	style := cfg.Font.Style
	if s.mark {
		style = "B"
	}
	pdf.SetFont(cfg.Font.Name, style, s.size)

	switch {
	case cfg.Debug:
		pdf.SetTextColor(255, 0, 0)
	case s.color.Set:
		pdf.SetTextColor(s.color.R, s.color.G, s.color.B)
	default:
		pdf.SetTextColor(0, 0, 0)
	}

	text := s.text
	if s.mark {
		text = markGlyph
	}
	measure := func(t string) float64 {
		enc, _ := layout.EncodeCP1252(t)
		return pdf.GetStringWidth(enc)
	}
	if s.maxWidth > 0 {
		text = layout.Truncate(measure, text, s.maxWidth)
	}

	x := s.at.X
	y := units.ToVisualY(s.at.Y, pageHeight)
	encoded, ok := layout.EncodeCP1252(text)
	pdf.Text(x, y, encoded)

	if cfg.Debug {
		w := s.maxWidth
		if w == 0 {
			w = pdf.GetStringWidth(encoded)
		}
		pdf.SetDrawColor(255, 0, 0)
		pdf.SetLineWidth(0.3)
		pdf.Rect(x, y-s.size, w, s.size*1.25, "D")
	}
	return ok
}
