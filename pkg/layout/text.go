package layout

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Measurer returns the rendered width of a UTF-8 string in the current font.
type Measurer func(s string) float64

// EncodeCP1252 converts text for fpdf's core fonts. Runes outside
// Windows-1252 become '?' and ok is false.
func EncodeCP1252(s string) (enc string, ok bool) {
	var b strings.Builder
	b.Grow(len(s))
	ok = true
	for _, r := range s {
		if c, fits := charmap.Windows1252.EncodeRune(r); fits {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
		ok = false
	}
	return b.String(), ok
}

func encodeCP1252(s string) string {
	enc, _ := EncodeCP1252(s)
	return enc
}

// WrapText greedily breaks text into lines no wider than maxWidth,
// splitting at spaces and at explicit newlines. A single word wider than
// maxWidth is cut to fit; there is no hyphenation. The result always has at
// least one line.
func WrapText(measure Measurer, text string, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, w := range words {
			if measure(w) > maxWidth {
				w = Truncate(measure, w, maxWidth)
			}
			if line == "" {
				line = w
				continue
			}
			if candidate := line + " " + w; measure(candidate) <= maxWidth {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// Truncate drops trailing runes from s until it fits maxWidth.
func Truncate(measure Measurer, s string, maxWidth float64) string {
	for s != "" && measure(s) > maxWidth {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}
