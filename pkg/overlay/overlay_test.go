package overlay

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/formpdf/pkg/form"
	"github.com/gardar/formpdf/pkg/inspect"
	"github.com/gardar/formpdf/pkg/units"
)

// sourcePDF builds a plain A4 document standing in for an official form.
func sourcePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Text(50, 50, "Formulaire officiel")
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

func testTable() *Table {
	return &Table{
		Name: "test",
		File: "test.pdf",
		Fields: map[string]FieldCoordinate{
			"child.firstName":    {Page: 1, X: 100, Y: 700, FontSize: 10},
			"child.lastName":     {Page: 1, X: 300, Y: 700, FontSize: 10, MaxWidth: 30},
			"mother.email":       {Page: 2, X: 100, Y: 500},
			"activities.canteen": {Page: 1, X: 80, Y: 600, Mark: true},
			"medical.diet":       {Page: 3, X: 100, Y: 400},
		},
		Groups: map[string]Group{
			"child.gender": {Page: 1, FontSize: 11, Options: map[string]Point{
				"F": {X: 400, Y: 680},
				"M": {X: 450, Y: 680},
			}},
		},
	}
}

func TestCheckSignature(t *testing.T) {
	assert.NoError(t, CheckSignature([]byte("%PDF-1.7\n")))

	err := CheckSignature([]byte("<!DOCTYPE html><html>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadSignature))
	assert.Contains(t, err.Error(), "<!DOCTYPE")

	assert.ErrorIs(t, CheckSignature(nil), ErrBadSignature)
}

func TestStamp(t *testing.T) {
	values := map[string]form.Value{
		"child.firstName":    form.String("Emma"),
		"child.lastName":     form.String("Martin-Dupont-Lefebvre"),
		"mother.email":       form.String("s@x.fr"),
		"activities.canteen": form.Bool(true),
		"child.gender":       form.String("F"),
		"medical.diet":       form.String("sans porc"),
	}

	res, err := Stamp(sourcePDF(t, 2), testTable(), values, testConfig())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(res.PDF, []byte("%PDF-")))
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, []string{"activities.canteen", "child.firstName", "child.gender", "child.lastName", "mother.email"}, res.Stamped)
	assert.Equal(t, []string{"medical.diet"}, res.Skipped)

	n, err := inspect.PageCount(res.PDF)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pages, err := inspect.Text(res.PDF)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], "Emma")
	assert.NotContains(t, pages[0], "Martin-Dupont-Lefebvre")
	assert.Contains(t, pages[1], "s@x.fr")

	layers, err := inspect.Layers(res.PDF)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Remplissage (Page 1)", "Remplissage (Page 2)"}, layers)
}

func TestStampSkipsEmptyValues(t *testing.T) {
	values := map[string]form.Value{
		"child.firstName":    form.String(""),
		"activities.canteen": form.Bool(false),
		"child.gender":       form.String("X"),
	}
	res, err := Stamp(sourcePDF(t, 1), testTable(), values, testConfig())
	require.NoError(t, err)
	assert.Empty(t, res.Stamped)
	assert.Empty(t, res.Skipped)
}

func TestStampBadSource(t *testing.T) {
	_, err := Stamp([]byte("Not Found"), testTable(), nil, testConfig())
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = Stamp(sourcePDF(t, 1), nil, nil, testConfig())
	assert.Error(t, err)
}

func TestStampTwice(t *testing.T) {
	values := map[string]form.Value{"child.firstName": form.String("Emma")}
	first, err := Stamp(sourcePDF(t, 1), testTable(), values, testConfig())
	require.NoError(t, err)

	_, err = Stamp(first.PDF, testTable(), values, testConfig())
	assert.ErrorIs(t, err, ErrAlreadyStamped)

	cfg := testConfig()
	cfg.Force = true
	_, err = Stamp(first.PDF, testTable(), values, cfg)
	assert.NoError(t, err)
}

func TestBuiltinTables(t *testing.T) {
	names, err := Tables()
	require.NoError(t, err)
	assert.Equal(t, []string{"attestation_periscolaire", "fiche_sanitaire_cerfa"}, names)

	for _, name := range names {
		tbl, err := LookupTable(name)
		require.NoError(t, err)
		assert.NoError(t, tbl.Validate())
		assert.NotEmpty(t, tbl.Paths())
	}

	fs, err := LookupTable("fiche_sanitaire_cerfa")
	require.NoError(t, err)
	assert.True(t, strings.Contains(fs.File, "–"))
	assert.True(t, strings.Contains(fs.File, "é"))
	assert.Equal(t, Color{R: 0x1a, G: 0x1a, B: 0x6e, Set: true}, fs.Fields["signature.date"].FontColor)

	_, err = LookupTable("cerfa_inconnu")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"valid", "name: t\nfile: t.pdf\nfields:\n  a.b: {page: 1, x: 1, y: 2}\n", ""},
		{"no name", "file: t.pdf\n", "name is required"},
		{"no file", "name: t\n", "file is required"},
		{"page zero", "name: t\nfile: t.pdf\nfields:\n  a.b: {page: 0, x: 1, y: 2}\n", "page must be at least 1"},
		{"bad color", "name: t\nfile: t.pdf\nfields:\n  a.b: {page: 1, x: 1, y: 2, fontColor: blue}\n", "invalid color"},
		{"empty group", "name: t\nfile: t.pdf\ngroups:\n  a.b: {page: 1}\n", "has no options"},
		{"field and group", "name: t\nfile: t.pdf\nfields:\n  a.b: {page: 1}\ngroups:\n  a.b: {page: 1, options: {F: {x: 1, y: 1}}}\n", "both a field and a group"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tt.yaml))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#FF8000")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 255, G: 128, B: 0, Set: true}, c)
	assert.Equal(t, "#ff8000", c.String())

	c, err = ParseColor("")
	require.NoError(t, err)
	assert.False(t, c.Set)

	_, err = ParseColor("#12345")
	assert.Error(t, err)
}

func TestCheckExistingLayers(t *testing.T) {
	res, err := CheckExistingLayers(sourcePDF(t, 1), "Remplissage")
	require.NoError(t, err)
	assert.False(t, res.HasStamp)
	assert.Empty(t, res.Layers)
}

func pngScan(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 56))
	for x := 0; x < 40; x++ {
		img.Set(x, 10, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImagesToPDF(t *testing.T) {
	scan := pngScan(t)
	kind, err := DetectImageType(scan)
	require.NoError(t, err)
	assert.Equal(t, "PNG", kind)

	data, err := ImagesToPDF([][]byte{scan, scan}, units.A4)
	require.NoError(t, err)

	sizes, err := inspect.PageSizes(data)
	require.NoError(t, err)
	require.Len(t, sizes, 2)
	assert.InDelta(t, units.A4.Width, sizes[0].Width, 0.01)
	assert.InDelta(t, units.A4.Height, sizes[0].Height, 0.01)

	res, err := Stamp(data, testTable(), map[string]form.Value{"child.firstName": form.String("Emma")}, testConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"child.firstName"}, res.Stamped)

	_, err = ImagesToPDF(nil, units.A4)
	assert.Error(t, err)
	_, err = ImagesToPDF([][]byte{[]byte("scan")}, units.A4)
	assert.Error(t, err)
}
