package overlay

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gardar/formpdf/pkg/inspect"
)

// LayerCheckResult contains the results of checking for stamp layers
type LayerCheckResult struct {
	Layers     []string // All detected layers
	HasStamp   bool     // True if a layer with the configured name exists
	StampLayer string   // Name of the detected stamp layer (if any)
	Warnings   []string // Layers that look like a previous fill but use another name
}

// CheckExistingLayers looks for a previous stamp layer in pdfData.
func CheckExistingLayers(pdfData []byte, layerName string) (LayerCheckResult, error) {
	result := LayerCheckResult{}

	layers, err := inspect.Layers(pdfData)
	if err != nil {
		return result, fmt.Errorf("cannot analyze layers: %w", err)
	}
	result.Layers = layers

	pageLayer := regexp.MustCompile(fmt.Sprintf(`^%s\s*\(Page\s*\d+\)$`, regexp.QuoteMeta(layerName)))

	for _, layer := range layers {
		if layer == layerName || pageLayer.MatchString(layer) {
			result.HasStamp = true
			result.StampLayer = layer
			break
		}
		lower := strings.ToLower(layer)
		if strings.Contains(lower, "remplissage") || strings.Contains(lower, "fill") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("existing layer might contain stamped values: %s", layer))
		}
	}
	return result, nil
}
