package statement

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"extracto/internal/canvas"
	"extracto/internal/core"
)

// Fixed header geometry shared by every layout.
const (
	headerBarHeight    = 8.0
	headerAccentHeight = 1.5
	holderLineTop      = 16.0
	holderLineStep     = 4.0
	bankNameBaseline   = 20.0
	taglineBaseline    = 25.0
	footerAccentHeight = 1.0
	ellipsis           = "..."
)

// pen forwards to the canvas until the first failure and then ignores
// everything. Callers check err at block boundaries.
type pen struct {
	c   canvas.Canvas
	err error
}

func (p *pen) fail(op string, err error) {
	if p.err == nil && err != nil {
		p.err = &CanvasError{Op: op, Err: err}
	}
}

func (p *pen) fill(x, y, w, h float64, col canvas.Color) {
	if p.err == nil {
		p.fail("fill rect", p.c.FillRect(x, y, w, h, col))
	}
}

// bar draws a square bar, or a rounded one when r > 0.
func (p *pen) bar(x, y, w, h, r float64, col canvas.Color) {
	if p.err != nil {
		return
	}
	if r > 0 {
		p.fail("rounded rect", p.c.RoundedRect(x, y, w, h, r, col))
		return
	}
	p.fail("fill rect", p.c.FillRect(x, y, w, h, col))
}

func (p *pen) line(x1, y1, x2, y2, width float64, col canvas.Color) {
	if p.err == nil {
		p.fail("line", p.c.Line(x1, y1, x2, y2, width, col))
	}
}

func (p *pen) text(x, y float64, s string, style canvas.TextStyle) {
	if p.err == nil && s != "" {
		p.fail("draw text", p.c.DrawText(x, y, s, style))
	}
}

func (p *pen) newPage() {
	if p.err == nil {
		p.fail("new page", p.c.NewPage())
	}
}

// frame is the drawable area of the current canvas.
type frame struct {
	w, h   float64
	tableX float64
	tableW float64
}

func (pg *Paginator) frameOf(c canvas.Canvas) frame {
	w, h := c.PageSize()
	m := pg.layout.Margin
	return frame{w: w, h: h, tableX: m, tableW: w - 2*m}
}

func (pg *Paginator) style(size float64, col canvas.Color, weight canvas.Weight, align canvas.Align) canvas.TextStyle {
	return canvas.TextStyle{Size: size, Color: col, Weight: weight, Align: align}
}

// header draws the page header repeated on every page.
func (pg *Paginator) header(p *pen, f frame) {
	th := pg.layout.Theme
	p.fill(0, 0, f.w, headerBarHeight, th.Primary)
	p.fill(0, headerBarHeight, f.w, headerAccentHeight, th.Accent)

	for i, line := range pg.brand.HolderLines {
		p.text(pg.layout.Margin, holderLineTop+float64(i)*holderLineStep, line, pg.style(7, th.Text, canvas.Normal, canvas.AlignLeft))
	}
	right := f.w - pg.layout.Margin
	p.text(right, bankNameBaseline, pg.brand.BankName, pg.style(18, th.Primary, canvas.Bold, canvas.AlignRight))
	p.text(right, taglineBaseline, pg.brand.Tagline, pg.style(6, th.Accent, canvas.Italic, canvas.AlignRight))
}

// footer draws the closing bar of a page. Page numbers come later.
func (pg *Paginator) footer(p *pen, f frame, generatedAt time.Time) {
	th := pg.layout.Theme
	top := f.h - pg.layout.FooterHeight
	p.fill(0, top, f.w, pg.layout.FooterHeight, th.Primary)
	p.fill(0, top, f.w, footerAccentHeight, th.Accent)

	st := pg.style(5.5, th.Inverse, canvas.Normal, canvas.AlignCenter)
	p.text(f.w/2, f.h-8, pg.brand.Legal, st)
	p.text(f.w/2, f.h-4, pg.generatedLine(generatedAt), st)
}

// generatedLine is the only text that depends on the clock.
func (pg *Paginator) generatedLine(at time.Time) string {
	return fmt.Sprintf("%s, S.A. - %s %s", pg.brand.BankName, pg.brand.Labels.GeneratedAt, at.Format("02/01/2006 15:04"))
}

func (pg *Paginator) sectionTitle(p *pen, f frame, title string, y float64) float64 {
	l := pg.layout
	p.bar(f.tableX, y, f.tableW, l.SectionBarHeight, l.CornerRadius, l.Theme.Primary)
	p.text(f.tableX+3, y+5.5, title, pg.style(9, l.Theme.Inverse, canvas.Bold, canvas.AlignLeft))
	return y + l.SectionBarHeight + l.SectionGap
}

func (pg *Paginator) infoRow(p *pen, x, y, labelWidth float64, label, value string) {
	th := pg.layout.Theme
	p.text(x, y, label, pg.style(pg.layout.TextSize, th.Muted, canvas.Normal, canvas.AlignLeft))
	p.text(x+labelWidth, y, value, pg.style(pg.layout.TextSize, th.Text, canvas.Bold, canvas.AlignLeft))
}

// section draws one first-page block and returns the next y.
func (pg *Paginator) section(p *pen, f frame, s Section, d Draft, y float64) float64 {
	l := pg.layout
	lb := pg.brand.Labels
	x := f.tableX + 3

	switch s {
	case SectionTitle:
		p.text(f.tableX, y, lb.Title, pg.style(14, l.Theme.Primary, canvas.Bold, canvas.AlignLeft))
		return y + 8

	case SectionOffice:
		y = pg.sectionTitle(p, f, lb.OfficeSection, y)
		pg.infoRow(p, x, y, 45, lb.Address, pg.brand.OfficeAddress)
		y += l.InfoLineHeight
		pg.infoRow(p, x, y, 45, lb.Phone, pg.brand.OfficePhone)
		return y + l.InfoLineHeight + l.SectionGap

	case SectionAccount:
		y = pg.sectionTitle(p, f, lb.AccountSection, y)
		half := f.tableW / 2
		pg.infoRow(p, x, y, 35, lb.AccountNumber, pg.brand.AccountNumber)
		pg.infoRow(p, x+half, y, 30, lb.CutOffDate, d.Period.End.Format("02-01-2006"))
		y += l.InfoLineHeight
		pg.infoRow(p, x, y, 35, lb.AvailableBalance, pg.amount(d.Totals.Closing))
		pg.infoRow(p, x+half, y, 30, lb.Period, d.Period.Start.Format("02/01/2006")+" - "+d.Period.End.Format("02/01/2006"))
		return y + l.InfoLineHeight + l.SectionGap

	case SectionMovements:
		return pg.movementSummary(p, f, d.Totals, y)

	case SectionCategories:
		return pg.categorySummary(p, f, d.Totals, y)
	}
	return y
}

func (pg *Paginator) amount(m core.Money) string {
	if pg.brand.Currency == "" {
		return m.String()
	}
	return m.String() + " " + pg.brand.Currency
}

// summaryX returns the left edge of summary column i.
func (pg *Paginator) summaryX(f frame, i int) float64 {
	x := f.tableX
	for _, frac := range pg.layout.SummaryColumns[:i] {
		x += f.tableW * frac
	}
	return x
}

func (pg *Paginator) summaryHeader(p *pen, f frame, y float64, cells [5]string) float64 {
	l := pg.layout
	p.fill(f.tableX, y, f.tableW, l.SummaryRowHeight, l.Theme.Band)
	p.line(f.tableX, y+l.SummaryRowHeight, f.tableX+f.tableW, y+l.SummaryRowHeight, 0.3, l.Theme.Border)
	st := pg.style(6.5, l.Theme.Primary, canvas.Bold, canvas.AlignLeft)
	for i, cell := range cells {
		p.text(pg.summaryX(f, i)+2, y+l.SummaryRowHeight-2, cell, st)
	}
	return y + l.SummaryRowHeight
}

func (pg *Paginator) summaryRow(p *pen, f frame, y float64, index int, cells [5]string, bold bool) float64 {
	l := pg.layout
	th := l.Theme
	if index%2 == 0 {
		p.fill(f.tableX, y, f.tableW, l.SummaryRowHeight, th.Stripe)
	}
	p.line(f.tableX, y+l.SummaryRowHeight, f.tableX+f.tableW, y+l.SummaryRowHeight, 0.3, th.Border)

	base := y + l.SummaryRowHeight - 2
	weight := canvas.Normal
	if bold {
		weight = canvas.Bold
	}
	p.text(pg.summaryX(f, 0)+2, base, cells[0], pg.style(6.5, th.Text, weight, canvas.AlignLeft))
	p.text(pg.summaryX(f, 1)+2, base, cells[1], pg.style(6.5, th.Text, canvas.Normal, canvas.AlignLeft))
	p.text(pg.summaryX(f, 2)+2, base, cells[2], pg.style(6.5, th.Text, canvas.Normal, canvas.AlignLeft))
	p.text(pg.summaryX(f, 3)+2, base, cells[3], pg.style(6.5, th.Primary, canvas.Bold, canvas.AlignLeft))
	p.text(pg.summaryX(f, 4)+2, base, cells[4], pg.style(7, th.Primary, canvas.Bold, canvas.AlignLeft))
	return y + l.SummaryRowHeight
}

func (pg *Paginator) movementSummary(p *pen, f frame, a Aggregates, y float64) float64 {
	lb := pg.brand.Labels
	y = pg.sectionTitle(p, f, lb.SummarySection, y)
	y = pg.summaryHeader(p, f, y, [5]string{"", lb.Count, lb.Value, "", lb.Value})

	rows := []struct {
		cells [5]string
		bold  bool
	}{
		{[5]string{lb.OpeningBalance, "", a.Opening.String(), "", ""}, true},
		{[5]string{lb.Credits, strconv.Itoa(a.CreditCount), a.CreditTotal.String(), "", ""}, false},
		{[5]string{lb.Debits, strconv.Itoa(a.DebitCount), a.DebitTotal.String(), "", ""}, false},
		{[5]string{"", "", "", lb.ClosingBalance, a.Closing.String()}, true},
	}
	for i, r := range rows {
		y = pg.summaryRow(p, f, y, i, r.cells, r.bold)
	}
	return y + pg.layout.TableGap
}

func (pg *Paginator) categorySummary(p *pen, f frame, a Aggregates, y float64) float64 {
	lb := pg.brand.Labels
	y = pg.sectionTitle(p, f, lb.CategorySection, y)
	y = pg.summaryHeader(p, f, y, [5]string{lb.Category, lb.Count, lb.Value, "", ""})
	for i, ct := range a.Categories {
		cells := [5]string{pg.brand.categoryName(ct.Category), strconv.Itoa(ct.Count), ct.Total.String(), "", ""}
		y = pg.summaryRow(p, f, y, i, cells, false)
	}
	return y + pg.layout.TableGap
}

// columnHeader draws the ledger column captions, repeated on every page.
func (pg *Paginator) columnHeader(p *pen, f frame, y float64) float64 {
	l := pg.layout
	lb := pg.brand.Labels
	cols := l.Columns
	h := l.TableHeaderHeight
	p.bar(f.tableX, y, f.tableW, h, l.CornerRadius, l.Theme.Primary)

	base := y + h - 2.5
	left := pg.style(6.5, l.Theme.Inverse, canvas.Bold, canvas.AlignLeft)
	right := pg.style(6.5, l.Theme.Inverse, canvas.Bold, canvas.AlignRight)
	end := f.tableX + f.tableW
	p.text(f.tableX+cols.Movement, base, lb.Movement, left)
	p.text(f.tableX+cols.Date, base, lb.Date, left)
	p.text(f.tableX+cols.Description, base, lb.Description, left)
	p.text(end-cols.ChargesRight, base, lb.Charges, right)
	p.text(end-cols.CreditsRight, base, lb.CreditsColumn, right)
	p.text(end-cols.BalanceRight, base, lb.Balance, right)
	return y + h
}

// row draws one ledger line showing the balance after tx.
func (pg *Paginator) row(p *pen, f frame, y float64, index int, tx core.Transaction, balance core.Money) float64 {
	l := pg.layout
	th := l.Theme
	cols := l.Columns
	if index%2 == 0 {
		p.fill(f.tableX, y, f.tableW, l.RowHeight, th.RowShade)
	}
	end := f.tableX + f.tableW
	p.line(f.tableX, y+l.RowHeight, end, y+l.RowHeight, 0.15, th.Border)

	base := y + l.RowHeight - 2
	plain := pg.style(l.RowTextSize, th.Text, canvas.Normal, canvas.AlignLeft)
	p.text(f.tableX+cols.Movement, base, strconv.Itoa(l.MovementBase+index), plain)
	p.text(f.tableX+cols.Date, base, tx.Date.Format("02-01-2006"), plain)
	p.text(f.tableX+cols.Description, base, pg.elide(p.c, tx.Description, plain), plain)

	if tx.IsDebit() {
		p.text(end-cols.ChargesRight, base, tx.Amount.Abs().String(), pg.style(l.RowTextSize, th.Debit, canvas.Bold, canvas.AlignRight))
	} else {
		p.text(end-cols.CreditsRight, base, tx.Amount.String(), pg.style(l.RowTextSize, th.Credit, canvas.Bold, canvas.AlignRight))
	}
	p.text(end-cols.BalanceRight, base, balance.String(), pg.style(l.RowTextSize, th.Primary, canvas.Normal, canvas.AlignRight))
	return y + l.RowHeight
}

// elide shortens s to the description budget, then keeps dropping runes
// while it is wider than the description column.
func (pg *Paginator) elide(c canvas.Canvas, s string, style canvas.TextStyle) string {
	limit := pg.layout.DescriptionLimit
	if limit > 0 && utf8.RuneCountInString(s) > limit {
		keep := max(limit-2, 0)
		s = string([]rune(s)[:keep]) + ellipsis
	}
	width := pg.layout.Columns.DescriptionWidth
	if width <= 0 || c.MeasureText(s, style) <= width {
		return s
	}
	r := []rune(s)
	if len(r) >= len(ellipsis) && string(r[len(r)-len(ellipsis):]) == ellipsis {
		r = r[:len(r)-len(ellipsis)]
	}
	for len(r) > 0 {
		r = r[:len(r)-1]
		s = string(r) + ellipsis
		if c.MeasureText(s, style) <= width {
			break
		}
	}
	return s
}
