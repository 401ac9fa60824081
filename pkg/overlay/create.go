package overlay

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gardar/formpdf/pkg/units"
)

// ImagesToPDF builds a PDF with one page of the given size per scanned image,
// each image stretched over the whole page. Scans of official forms can then be
// stamped like the PDF originals.
func ImagesToPDF(imagesData [][]byte, page units.Size) ([]byte, error) {
	if len(imagesData) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}

	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, data := range imagesData {
		if len(data) == 0 {
			return nil, fmt.Errorf("image %d is empty", i+1)
		}
		imageType, err := DetectImageType(data)
		if err != nil {
			return nil, fmt.Errorf("image %d has invalid format: %w", i+1, err)
		}

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})

		imageName := fmt.Sprintf("scan%d", i)
		opts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
		pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(data))
		pdf.ImageOptions(imageName, 0, 0, page.Width, page.Height, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// DetectImageType tries to figure out whether the data is PNG or JPEG.
func DetectImageType(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image config: %w", err)
	}
	return strings.ToUpper(format), nil
}
