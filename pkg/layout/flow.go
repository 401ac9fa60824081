package layout

import (
	"fmt"
	"log/slog"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gardar/formpdf/pkg/form"
	"github.com/gardar/formpdf/pkg/units"
)

type flowState int

const (
	stateRenderingTitle flowState = iota
	stateRenderingSection
	stateNeedsNewPage
	stateDone
)

func (s flowState) String() string {
	switch s {
	case stateRenderingTitle:
		return "RenderingTitle"
	case stateRenderingSection:
		return "RenderingSection"
	case stateNeedsNewPage:
		return "NeedsNewPage"
	}
	return "Done"
}

// renderer owns everything mutated during one generation pass.
type renderer struct {
	pdf    *fpdf.Fpdf
	cfg    Config
	mode   Mode
	size   units.Size
	log    *slog.Logger
	cursor RenderCursor
	fields *fieldRegistry

	tmpl *form.Template
	data form.Data

	section    int
	row        int
	titleDrawn bool
	pending    []*fieldPlan // measured fields of the current row
	placements []Placement
}

func newRenderer(tmpl *form.Template, data form.Data, cfg Config, mode Mode) (*renderer, error) {
	size, err := cfg.PageSize()
	if err != nil {
		return nil, err
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: size.Width, Ht: size.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(cfg.MarginLeft, cfg.MarginTop, cfg.MarginRight)
	pdf.SetTitle(tmpl.Title, true)
	pdf.SetCreator("formpdf", true)
	if cfg.PageNumbers {
		pdf.AliasNbPages("")
	}

	return &renderer{
		pdf:    pdf,
		cfg:    cfg,
		mode:   mode,
		size:   size,
		log:    cfg.logger(),
		fields: newFieldRegistry(),
		tmpl:   tmpl,
		data:   data,
	}, nil
}

// run drives the flow state machine until every section is drawn.
func (r *renderer) run() error {
	r.newPage()
	state := stateRenderingTitle
	for state != stateDone {
		switch state {
		case stateRenderingTitle:
			r.drawTitle()
			state = stateRenderingSection
		case stateRenderingSection:
			state = r.step()
		case stateNeedsNewPage:
			r.newPage()
			state = stateRenderingSection
		}
		if err := r.pdf.Error(); err != nil {
			return fmt.Errorf("drawing failed in state %s: %w", state, err)
		}
	}
	r.drawFooter()
	return r.pdf.Error()
}

func (r *renderer) bottom() float64 {
	return r.size.Height - r.cfg.MarginBottom
}

func (r *renderer) fits(h float64) bool {
	return r.cursor.Y+h <= r.bottom()
}

// fresh reports whether nothing has been drawn on the current page yet.
// Elements taller than a whole page are drawn anyway rather than looping.
func (r *renderer) fresh() bool {
	return r.cursor.Y <= r.cfg.MarginTop
}

func (r *renderer) newPage() {
	r.pdf.AddPage()
	r.cursor.Page = r.pdf.PageNo()
	r.cursor.Y = r.cfg.MarginTop
	if r.cfg.PageNumbers {
		r.setFont(r.cfg.Footer)
		r.pdf.SetTextColor(130, 130, 130)
		label := fmt.Sprintf("Page %d/{nb}", r.cursor.Page)
		w := r.pdf.GetStringWidth(label)
		r.pdf.Text(r.size.Width-r.cfg.MarginRight-w, r.bottom()+r.cfg.FooterOffset, label)
	}
}

func (r *renderer) drawTitle() {
	r.setFont(r.cfg.Title)
	r.pdf.SetTextColor(20, 20, 20)
	title := encodeCP1252(r.tmpl.Title)
	w := r.pdf.GetStringWidth(title)
	r.pdf.Text((r.size.Width-w)/2, r.cursor.Y+r.cfg.Title.Size, title)
	r.cursor.Y += r.cfg.TitleHeight
}

func (r *renderer) columns() (left, right, width float64) {
	width = r.cfg.ColumnWidth(r.size.Width)
	left = r.cfg.MarginLeft
	right = left + width + r.cfg.ColumnGap
	return left, right, width
}

// rowPlans measures the current row once; the plans survive a page break so
// interactive names are reserved exactly once.
func (r *renderer) rowPlans() []*fieldPlan {
	if r.pending != nil {
		return r.pending
	}
	fields := r.tmpl.Sections[r.section].Fields
	_, _, width := r.columns()
	start := r.row * 2
	for i := start; i < start+2 && i < len(fields); i++ {
		fd := fields[i]
		r.pending = append(r.pending, r.plan(fd, r.data.Get(fd.ID), width))
	}
	return r.pending
}

func (r *renderer) rowHeight(plans []*fieldPlan) float64 {
	h := 0.0
	for _, p := range plans {
		h = max(h, p.height(r.cfg))
	}
	return h
}

func (r *renderer) rowCount() int {
	n := len(r.tmpl.Sections[r.section].Fields)
	return (n + 1) / 2
}

// step advances the current section by one element.
func (r *renderer) step() flowState {
	if r.section >= len(r.tmpl.Sections) {
		return stateDone
	}
	sec := r.tmpl.Sections[r.section]

	if !r.titleDrawn {
		need := r.cfg.SectionHeight
		if r.rowCount() > 0 {
			need += r.rowHeight(r.rowPlans())
		}
		if !r.fits(need) && !r.fresh() {
			return stateNeedsNewPage
		}
		r.drawSectionTitle(sec.Title)
		r.titleDrawn = true
		return stateRenderingSection
	}

	if r.row >= r.rowCount() {
		r.section++
		r.row = 0
		r.titleDrawn = false
		r.pending = nil
		r.cursor.Y += r.cfg.SectionGap
		return stateRenderingSection
	}

	plans := r.rowPlans()
	h := r.rowHeight(plans)
	if !r.fits(h) && !r.fresh() {
		return stateNeedsNewPage
	}

	left, right, width := r.columns()
	for i, p := range plans {
		x := left
		if i == 1 {
			x = right
		}
		r.drawField(p, i, x, r.cursor.Y, width)
	}
	r.cursor.Y += h + r.cfg.FieldGap
	r.row++
	r.pending = nil
	return stateRenderingSection
}

func (r *renderer) drawSectionTitle(title string) {
	x := r.cfg.MarginLeft
	w := r.size.Width - r.cfg.MarginLeft - r.cfg.MarginRight
	h := r.cfg.SectionHeight - 4

	r.pdf.SetFillColor(232, 238, 247)
	r.pdf.Rect(x, r.cursor.Y, w, h, "F")
	r.setFont(r.cfg.Section)
	r.pdf.SetTextColor(25, 55, 110)
	r.pdf.Text(x+r.cfg.Padding, r.cursor.Y+(h+r.cfg.Section.Size*0.7)/2, encodeCP1252(title))

	r.cursor.Y += r.cfg.SectionHeight
}

func (r *renderer) drawFooter() {
	y := r.bottom() + r.cfg.FooterOffset
	r.setFont(r.cfg.Footer)
	r.pdf.SetTextColor(130, 130, 130)
	now := r.cfg.now()
	r.pdf.Text(r.cfg.MarginLeft, y, encodeCP1252(fmt.Sprintf("Document généré le %s à %s",
		now.Format("02/01/2006"), now.Format("15:04"))))

	if r.mode == ModeInteractive {
		r.pdf.SetTextColor(160, 60, 30)
		r.pdf.Text(r.cfg.MarginLeft, y-r.cfg.Footer.Size-3, encodeCP1252(
			"Document interactif : les champs peuvent être complétés ou corrigés avant impression."))
	}
}
