// Package assets locates the official PDFs used by the overlay path.
//
// Their file names carry accents and en-dashes, and the byte form of such a
// name depends on who stored it: macOS file systems keep NFD, most servers
// NFC, some uploads replace the dash. Load therefore tries every plausible
// spelling and keeps the first one that returns a PDF.
package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/gardar/formpdf/pkg/overlay"
)

var dashes = strings.NewReplacer("–", "-", "—", "-", "−", "-")

// StripAccents removes combining marks, so "Fiche médicale" becomes
// "Fiche medicale".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Variants returns the spellings of name to try, most faithful first: as
// given, NFC, NFD, dashes replaced by '-', then accents stripped as well.
// Duplicates are removed.
func Variants(name string) []string {
	ascii := dashes.Replace(name)
	candidates := []string{
		name,
		norm.NFC.String(name),
		norm.NFD.String(name),
		norm.NFC.String(ascii),
		StripAccents(ascii),
	}

	out := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Load fetches name from src, trying each variant in turn. A variant whose
// bytes are not a PDF counts as a failed attempt. When every variant fails the
// error joins all attempts; it matches ErrNotFound only if every attempt was
// a miss.
func Load(ctx context.Context, src Source, name string) ([]byte, string, error) {
	if src == nil {
		return nil, "", errors.New("no asset source configured")
	}

	var errs []error
	missing := true
	for _, v := range Variants(name) {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		data, err := src.Fetch(ctx, v)
		if err == nil {
			err = overlay.CheckSignature(data)
		}
		if err == nil {
			return data, v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			missing = false
		}
		errs = append(errs, fmt.Errorf("%q: %w", v, err))
	}

	joined := errors.Join(errs...)
	if missing {
		return nil, "", fmt.Errorf("%w: %s: %w", ErrNotFound, name, joined)
	}
	return nil, "", fmt.Errorf("failed to load %s: %w", name, joined)
}
