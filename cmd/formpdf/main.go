// formpdf is a command-line tool for producing school enrollment paperwork
// from a family record.
//
// It either lays out one of the built-in form templates (or a YAML template)
// as a new PDF, flat or with editable fields, or stamps the record onto an
// official PDF at calibrated positions.
//
// Usage:
//
//	formpdf generate <template> [record] [options]
//	formpdf stamp <table> <official.pdf|scan.png> [record] [options]
//	formpdf inspect <file.pdf> [--text]
//	formpdf templates
//
// <template> is a built-in template or calibration table name, or a path to a
// YAML file. [record] is a JSON or YAML family record; without it the
// document is blank.
//
// Options:
//
//	-o, --output string          Output PDF path (default {template}_{date}.pdf)
//	--overwrite                  Overwrite the output PDF if it already exists
//	--interactive                Embed editable form fields instead of flat text
//	--paper string               Page size (A4, Letter, Legal)
//	--templates-dir string       Directory holding the official PDFs
//	--templates-url string       Base URL serving the official PDFs
//	--templates-path string      URL path of the official PDFs (default /templates/)
//	--force                      Stamp again over previously stamped values
//	--debug                      Outline calibrated positions
//	--log-level string           debug, info, warn or error
//	--config string              YAML file with any of the options above
//
// Every option can also be set with a FORMPDF_ environment variable, e.g.
// FORMPDF_TEMPLATES_URL.
//
// Examples:
//
//	formpdf generate periscolaire famille.json --interactive
//	formpdf generate fiche_sanitaire_cerfa famille.json --templates-dir ./officiels
//	formpdf stamp attestation_periscolaire attestation.pdf famille.yaml -o rempli.pdf
//	formpdf inspect periscolaire_2026-10-14.pdf
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/gardar/formpdf/internal/config"
	"github.com/gardar/formpdf/pkg/docgen"
	"github.com/gardar/formpdf/pkg/extract"
	"github.com/gardar/formpdf/pkg/family"
	"github.com/gardar/formpdf/pkg/form"
	"github.com/gardar/formpdf/pkg/inspect"
	"github.com/gardar/formpdf/pkg/overlay"
	"github.com/gardar/formpdf/pkg/units"
)

const usage = `Usage:
  formpdf generate <template> [record] [options]
  formpdf stamp <table> <official.pdf|scan.png> [record] [options]
  formpdf inspect <file.pdf> [--text]
  formpdf templates
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return errors.New("missing command")
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "generate":
		return generate(ctx, rest, stdout)
	case "stamp":
		return stamp(rest, stdout)
	case "inspect":
		return inspectFile(rest, stdout)
	case "templates":
		return listTemplates(stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func generate(ctx context.Context, args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	cfg, err := config.Load(fs, args)
	if err != nil {
		return err
	}
	pos := fs.Args()
	if len(pos) < 1 || len(pos) > 2 {
		return errors.New("generate needs a template and an optional record")
	}
	log := cfg.Logger()

	tmpl, err := resolveTemplate(pos[0])
	if err != nil {
		return err
	}
	rec, err := loadRecord(pos[1:])
	if err != nil {
		return err
	}

	gen, err := docgen.New(
		docgen.FlowRenderer{Config: cfg.Layout(log)},
		docgen.OverlayRenderer{Source: cfg.Source(), Config: cfg.Overlay(log)},
	)
	if err != nil {
		return err
	}
	gen.Logger = log

	doc, err := gen.Generate(ctx, tmpl, rec, docgen.Options{
		Mode:     cfg.Mode(),
		Filename: cfg.Output,
	})
	if err != nil {
		return err
	}
	for _, p := range fallbacks(doc) {
		fmt.Fprintf(stdout, "Warning: field %s was drawn as flat text\n", p)
	}
	if err := writeOutput(doc.Filename, doc.Bytes, cfg.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Created %s (%d pages)\n", doc.Filename, doc.Pages)
	return nil
}

func fallbacks(doc *docgen.Document) []string {
	var ids []string
	for _, p := range doc.Placements {
		if p.Fallback {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func stamp(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("stamp", pflag.ContinueOnError)
	cfg, err := config.Load(fs, args)
	if err != nil {
		return err
	}
	pos := fs.Args()
	if len(pos) < 2 || len(pos) > 3 {
		return errors.New("stamp needs a calibration table, the official PDF and an optional record")
	}
	log := cfg.Logger()

	table, err := resolveTable(pos[0])
	if err != nil {
		return err
	}
	source, err := readOfficial(pos[1], cfg.Paper)
	if err != nil {
		return err
	}
	rec, err := loadRecord(pos[2:])
	if err != nil {
		return err
	}

	values := extract.PathsAt(rec, time.Now())
	res, err := overlay.Stamp(source, table, values, cfg.Overlay(log))
	if err != nil {
		return err
	}
	for _, p := range res.Skipped {
		fmt.Fprintf(stdout, "Warning: %s points at a page the PDF does not have\n", p)
	}

	out := cfg.Output
	if out == "" {
		out = strings.TrimSuffix(filepath.Base(pos[1]), filepath.Ext(pos[1])) + "_rempli.pdf"
	}
	if err := writeOutput(out, res.PDF, cfg.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Stamped %d values onto %s\n", len(res.Stamped), out)
	return nil
}

func inspectFile(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	showText := fs.Bool("text", false, "Print the text of every page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("inspect needs exactly one PDF")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	sizes, err := inspect.PageSizes(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Pages: %d\n", len(sizes))
	for i, s := range sizes {
		fmt.Fprintf(stdout, "  %d. %.2f x %.2f pt\n", i+1, s.Width, s.Height)
	}

	layers, err := inspect.Layers(data)
	if err != nil {
		return err
	}
	if len(layers) > 0 {
		fmt.Fprintf(stdout, "Layers: %s\n", strings.Join(layers, ", "))
	}

	fields, err := inspect.FieldNames(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Fields: %d\n", len(fields))
	for _, f := range fields {
		fmt.Fprintf(stdout, "  %s\n", f)
	}

	if *showText {
		pages, err := inspect.Text(data)
		if err != nil {
			return err
		}
		for i, p := range pages {
			fmt.Fprintf(stdout, "--- page %d ---\n%s\n", i+1, p)
		}
	}
	return nil
}

func listTemplates(stdout io.Writer) error {
	names, err := docgen.Names()
	if err != nil {
		return err
	}
	for _, n := range names {
		tmpl, err := docgen.Lookup(n)
		if err != nil {
			return err
		}
		switch t := tmpl.(type) {
		case *form.Template:
			fmt.Fprintf(stdout, "%-28s form     %s\n", n, t.Title)
		case *overlay.Table:
			fmt.Fprintf(stdout, "%-28s overlay  %s (%s)\n", n, t.Title, t.File)
		}
	}
	return nil
}

func isYAML(arg string) bool {
	ext := strings.ToLower(filepath.Ext(arg))
	return ext == ".yaml" || ext == ".yml"
}

// resolveTemplate accepts a built-in name or a YAML form template or
// calibration table on disk.
func resolveTemplate(arg string) (docgen.Template, error) {
	if !isYAML(arg) {
		return docgen.Lookup(arg)
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, err
	}
	t, formErr := form.ParseTemplate(data)
	if formErr == nil {
		return t, nil
	}
	table, tableErr := overlay.ParseTable(data)
	if tableErr == nil {
		return table, nil
	}
	return nil, fmt.Errorf("%s is neither a form template nor a calibration table: %w",
		arg, errors.Join(formErr, tableErr))
}

func resolveTable(arg string) (*overlay.Table, error) {
	if !isYAML(arg) {
		return overlay.LookupTable(arg)
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, err
	}
	return overlay.ParseTable(data)
}

// readOfficial reads the official PDF, turning a PNG or JPEG scan into a
// one-page PDF of the configured paper size.
func readOfficial(path, paper string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read official PDF: %w", err)
	}
	if overlay.CheckSignature(data) == nil {
		return data, nil
	}
	if _, err := overlay.DetectImageType(data); err != nil {
		return nil, overlay.CheckSignature(data)
	}
	size, err := units.Lookup(paper)
	if err != nil {
		return nil, err
	}
	return overlay.ImagesToPDF([][]byte{data}, size)
}

func loadRecord(args []string) (*family.Family, error) {
	if len(args) == 0 {
		return nil, nil
	}
	rec, err := family.Load(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return rec, nil
}

// writeOutput refuses to replace an existing file unless overwrite is set.
func writeOutput(path string, data []byte, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("output file %s already exists, use --overwrite to overwrite", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output PDF: %w", err)
	}
	return nil
}
