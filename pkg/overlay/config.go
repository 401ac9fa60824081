package overlay

import (
	"log/slog"
)

// Config holds user options for stamping values onto an existing PDF.
type Config struct {
	Debug     bool         // Outline every calibrated position and draw values in red
	Force     bool         // Stamp again even if the source already carries a stamp layer
	LayerName string       // Base name of the stamp layer (page number will be appended)
	Logger    *slog.Logger // nil means slog.Default()
	Font      FontConfig
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		LayerName: "Remplissage", // Formatted as "Remplissage (Page X)" in the final PDF
		Font:      DefaultFont,
	}
}

// FontConfig contains font settings for stamped values
type FontConfig struct {
	Name  string  // Font name (e.g., "Helvetica")
	Style string  // Font style ("", "B", "I", "BI")
	Size  float64 // Size used when a coordinate has no font size
}

// DefaultFont is Helvetica 10, matching the official forms' body text.
var DefaultFont = FontConfig{
	Name:  "Helvetica",
	Style: "",
	Size:  10,
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
