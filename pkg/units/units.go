// Package units converts between the two coordinate spaces used when building
// documents and provides the standard page sizes.
//
// Visual space has its origin at the top-left corner of the page with y growing
// downwards; this is what fpdf and any on-screen editor use. Document space is
// native PDF point space: origin at the bottom-left corner, y growing upwards.
// Form widgets and hand-calibrated overlay coordinates live in document space.
package units

import (
	"fmt"
	"strings"
)

const (
	PointsPerInch      = 72.0
	MillimetersPerInch = 25.4
)

// Size is a page size in points.
type Size struct {
	Width  float64
	Height float64
}

// Standard page sizes, portrait.
var (
	A4     = Size{Width: 595.28, Height: 841.89}
	Letter = Size{Width: 612, Height: 792}
	Legal  = Size{Width: 612, Height: 1008}
)

var sizes = map[string]Size{
	"a4":     A4,
	"letter": Letter,
	"legal":  Legal,
}

// Lookup returns the standard size registered under name (case-insensitive).
func Lookup(name string) (Size, error) {
	s, ok := sizes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Size{}, fmt.Errorf("unknown page size %q (expected A4, Letter or Legal)", name)
	}
	return s, nil
}

// Landscape returns the size with width and height swapped.
func (s Size) Landscape() Size {
	return Size{Width: s.Height, Height: s.Width}
}

// ToDocumentY converts a top-left origin y coordinate to PDF point space.
func ToDocumentY(visualY, pageHeight float64) float64 {
	return pageHeight - visualY
}

// ToVisualY converts a PDF point space y coordinate to a top-left origin one.
func ToVisualY(documentY, pageHeight float64) float64 {
	return pageHeight - documentY
}

// Rect is an axis-aligned box. In visual space (X, Y) is the top-left corner,
// in document space it is the lower-left corner.
type Rect struct {
	X, Y, W, H float64
}

// ToDocumentRect converts a visual-space box to document space.
func ToDocumentRect(r Rect, pageHeight float64) Rect {
	return Rect{X: r.X, Y: ToDocumentY(r.Y+r.H, pageHeight), W: r.W, H: r.H}
}

// ToVisualRect converts a document-space box to visual space.
func ToVisualRect(r Rect, pageHeight float64) Rect {
	return Rect{X: r.X, Y: ToVisualY(r.Y+r.H, pageHeight), W: r.W, H: r.H}
}

func PointsToInches(pt float64) float64      { return pt / PointsPerInch }
func InchesToPoints(in float64) float64      { return in * PointsPerInch }
func PointsToMillimeters(pt float64) float64 { return pt / PointsPerInch * MillimetersPerInch }
func MillimetersToPoints(mm float64) float64 { return mm / MillimetersPerInch * PointsPerInch }
