package docgen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gardar/formpdf/pkg/assets"
	"github.com/gardar/formpdf/pkg/extract"
	"github.com/gardar/formpdf/pkg/form"
	"github.com/gardar/formpdf/pkg/layout"
	"github.com/gardar/formpdf/pkg/overlay"
)

// FlowRenderer lays out form templates from scratch.
type FlowRenderer struct {
	Config layout.Config
}

func (FlowRenderer) Name() string { return "flow" }

func (FlowRenderer) Supports(tmpl Template) bool {
	_, ok := tmpl.(*form.Template)
	return ok
}

func (r FlowRenderer) Render(ctx context.Context, req Request) (*Document, error) {
	tmpl, ok := req.Template.(*form.Template)
	if !ok {
		return nil, fmt.Errorf("unsupported template %T", req.Template)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := extract.ExtractAt(tmpl, req.Record, req.Now)

	cfg := r.Config
	now := req.Now
	cfg.Now = func() time.Time { return now }

	res, err := layout.Render(tmpl, data, cfg, req.Options.Mode)
	if err != nil {
		return nil, err
	}
	return &Document{
		Bytes:      res.PDF,
		Pages:      res.Pages,
		Placements: res.Placements,
		Data:       data,
	}, nil
}

// OverlayRenderer stamps calibration tables onto official PDFs fetched from
// Source.
type OverlayRenderer struct {
	Source assets.Source
	Config overlay.Config
}

func (OverlayRenderer) Name() string { return "overlay" }

func (OverlayRenderer) Supports(tmpl Template) bool {
	_, ok := tmpl.(*overlay.Table)
	return ok
}

func (r OverlayRenderer) Render(ctx context.Context, req Request) (*Document, error) {
	table, ok := req.Template.(*overlay.Table)
	if !ok {
		return nil, fmt.Errorf("unsupported template %T", req.Template)
	}

	source, used, err := assets.Load(ctx, r.Source, table.File)
	if err != nil {
		return nil, err
	}
	if used != table.File {
		log := r.Config.Logger
		if log == nil {
			log = slog.Default()
		}
		log.Debug("asset found under another spelling", "want", table.File, "got", used)
	}

	values := extract.PathsAt(req.Record, req.Now)

	res, err := overlay.Stamp(source, table, values, r.Config)
	if err != nil {
		return nil, err
	}
	return &Document{
		Bytes:   res.PDF,
		Pages:   res.Pages,
		Stamped: res.Stamped,
		Data:    values,
	}, nil
}
