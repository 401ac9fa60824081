package docgen

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/gardar/formpdf/pkg/assets"
	"github.com/gardar/formpdf/pkg/family"
	"github.com/gardar/formpdf/pkg/form"
	"github.com/gardar/formpdf/pkg/inspect"
	"github.com/gardar/formpdf/pkg/layout"
	"github.com/gardar/formpdf/pkg/overlay"
)

var fixedNow = time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func martin(t *testing.T) *family.Family {
	t.Helper()
	rec, err := family.Load("testdata/martin.json")
	require.NoError(t, err)
	return rec
}

func officialPDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Text(50, 50, "Fiche sanitaire de liaison")
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func newGenerator(t *testing.T, src assets.Source) *Generator {
	t.Helper()
	flowCfg := layout.DefaultConfig()
	flowCfg.Logger = quiet()
	overlayCfg := overlay.DefaultConfig()
	overlayCfg.Logger = quiet()

	g, err := New(
		FlowRenderer{Config: flowCfg},
		OverlayRenderer{Source: src, Config: overlayCfg},
	)
	require.NoError(t, err)
	g.Logger = quiet()
	g.Now = func() time.Time { return fixedNow }
	return g
}

func TestGenerateFlow(t *testing.T) {
	g := newGenerator(t, nil)
	doc, err := g.Generate(context.Background(), &form.Periscolaire, martin(t), Options{})
	require.NoError(t, err)

	assert.Equal(t, "periscolaire", doc.Name)
	assert.Equal(t, "periscolaire_2026-10-14.pdf", doc.Filename)
	assert.True(t, bytes.HasPrefix(doc.Bytes, []byte("%PDF-")))
	assert.Equal(t, form.String("Emma"), doc.Data["child_firstName"])
	assert.Equal(t, form.String("12/09/2016"), doc.Data["child_birthDate"])

	pages, err := inspect.Text(doc.Bytes)
	require.NoError(t, err)
	text := strings.Join(pages, "")
	assert.Contains(t, text, "Emma")
	assert.Contains(t, text, "12/09/2016")
}

func TestGenerateInteractive(t *testing.T) {
	g := newGenerator(t, nil)
	doc, err := g.Generate(context.Background(), &form.Periscolaire, martin(t), Options{
		Mode:     layout.ModeInteractive,
		Filename: "dossier.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "dossier.pdf", doc.Filename)

	names, err := inspect.FieldNames(doc.Bytes)
	require.NoError(t, err)
	assert.Len(t, names, len(form.Periscolaire.Fields()))
	assert.Contains(t, names, "child_firstName_2")
}

func TestGenerateOverlay(t *testing.T) {
	table, err := overlay.LookupTable("fiche_sanitaire_cerfa")
	require.NoError(t, err)

	// Stored decomposed, as a macOS upload would.
	src := assets.DirSource{FS: fstest.MapFS{
		norm.NFD.String(table.File): {Data: officialPDF(t, 2)},
	}}
	g := newGenerator(t, src)

	doc, err := g.Generate(context.Background(), table, martin(t), Options{})
	require.NoError(t, err)
	assert.Equal(t, "fiche_sanitaire_cerfa_2026-10-14.pdf", doc.Filename)
	assert.Equal(t, 2, doc.Pages)
	assert.Contains(t, doc.Stamped, "child.firstName")
	assert.Contains(t, doc.Stamped, "child.gender")
	assert.Contains(t, doc.Stamped, "medical.vaccinations")
	assert.NotContains(t, doc.Stamped, "father.fullName")
	assert.Equal(t, form.String("14/10/2026"), doc.Data["signature.date"])

	pages, err := inspect.Text(doc.Bytes)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], "Emma")
	assert.Contains(t, pages[1], "14/10/2026")
}

func TestGenerateOverlayMissingAsset(t *testing.T) {
	table, err := overlay.LookupTable("fiche_sanitaire_cerfa")
	require.NoError(t, err)

	g := newGenerator(t, assets.DirSource{FS: fstest.MapFS{}})
	_, err = g.Generate(context.Background(), table, martin(t), Options{})
	assert.ErrorIs(t, err, assets.ErrNotFound)
}

type unknownTemplate struct{}

func (unknownTemplate) TemplateName() string { return "unknown" }

func TestGenerateNoRenderer(t *testing.T) {
	g := newGenerator(t, nil)
	_, err := g.Generate(context.Background(), unknownTemplate{}, nil, Options{})
	assert.True(t, errors.Is(err, ErrNoRenderer))

	_, err = g.Generate(context.Background(), nil, nil, Options{})
	assert.Error(t, err)

	var zero Generator
	assert.NotPanics(t, func() {
		_, err = zero.Generate(context.Background(), &form.Periscolaire, nil, Options{})
	})
	assert.True(t, errors.Is(err, ErrNoRenderer))
}

func TestGenerateConcurrent(t *testing.T) {
	g := newGenerator(t, nil)
	rec := martin(t)

	const n = 6
	results := make([][]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := g.Generate(context.Background(), &form.FicheSanitaire, rec, Options{Mode: layout.ModeInteractive})
			if !assert.NoError(t, err) {
				return
			}
			for _, p := range doc.Placements {
				results[i] = append(results[i], p.Name)
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if diff := cmp.Diff(results[0], results[i]); diff != "" {
			t.Errorf("generation %d used different field names (-first +got):\n%s", i, diff)
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(FlowRenderer{}))
	require.NoError(t, reg.Register(OverlayRenderer{}))
	assert.Error(t, reg.Register(FlowRenderer{}))
	assert.Error(t, reg.Register(nil))

	assert.Equal(t, []string{"flow", "overlay"}, reg.List())

	r, err := reg.For(&form.Inscription)
	require.NoError(t, err)
	assert.Equal(t, "flow", r.Name())

	r, err = reg.For(&overlay.Table{Name: "t"})
	require.NoError(t, err)
	assert.Equal(t, "overlay", r.Name())

	_, err = reg.Get("docx")
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	tmpl, err := Lookup("periscolaire")
	require.NoError(t, err)
	assert.IsType(t, &form.Template{}, tmpl)

	tmpl, err = Lookup("attestation_periscolaire")
	require.NoError(t, err)
	assert.IsType(t, &overlay.Table{}, tmpl)

	_, err = Lookup("bulletin")
	assert.ErrorIs(t, err, form.ErrUnknownTemplate)

	names, err := Names()
	require.NoError(t, err)
	assert.True(t, sort.StringsAreSorted(names[:3]))
	assert.Len(t, names, 5)
}

func TestDefaultFilename(t *testing.T) {
	assert.Equal(t, "inscription_2026-10-14.pdf", DefaultFilename("inscription", fixedNow))
}
