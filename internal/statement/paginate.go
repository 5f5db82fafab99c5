package statement

import (
	"fmt"
	"time"

	"extracto/internal/canvas"
	"extracto/internal/core"
)

// Draft is everything the paginator lays out. Rows must already be in
// chronological order.
type Draft struct {
	Period      core.Period
	Rows        []core.Transaction
	Totals      Aggregates
	GeneratedAt time.Time
}

// Pagination describes where every row landed.
type Pagination struct {
	// Rows holds, per page, the indexes into Draft.Rows drawn on it.
	Rows [][]int
	// Balances is the running balance shown on each row.
	Balances []core.Money
	Final    core.Money
}

// Pages is the number of pages the ledger used.
func (p Pagination) Pages() int { return len(p.Rows) }

// Paginator fills pages top to bottom with the first-page sections and the
// ledger, opening a new page whenever the cursor reaches the footer reserve.
type Paginator struct {
	layout Layout
	brand  Branding
}

func NewPaginator(layout Layout, brand Branding) *Paginator {
	return &Paginator{layout: layout, brand: brand}
}

// cursor is the layout state threaded through the ledger loop.
type cursor struct {
	page    int
	y       float64
	balance core.Money
}

// Paginate draws d onto c, which must have no pages yet. It draws every
// page's footer but not the page numbers, which need the final page count.
func (pg *Paginator) Paginate(c canvas.Canvas, d Draft) (Pagination, error) {
	p := &pen{c: c}
	f := pg.frameOf(c)
	l := pg.layout

	p.newPage()
	pg.header(p, f)
	y := l.ContentTop
	for _, s := range l.Sections {
		y = pg.section(p, f, s, d, y)
	}
	y = pg.sectionTitle(p, f, pg.brand.Labels.LedgerSection, y)
	y = pg.columnHeader(p, f, y)
	if p.err != nil {
		return Pagination{}, p.err
	}

	cur := cursor{page: 1, y: y, balance: d.Totals.Opening}
	out := Pagination{
		Rows:     [][]int{{}},
		Balances: make([]core.Money, 0, len(d.Rows)),
	}
	limit := f.h - l.FooterReserve

	for i, tx := range d.Rows {
		if cur.y > limit {
			pg.footer(p, f, d.GeneratedAt)
			p.newPage()
			pg.header(p, f)
			cur.page++
			cur.y = pg.columnHeader(p, f, l.ContentTop)
			out.Rows = append(out.Rows, []int{})
		}
		cur.balance = cur.balance.Add(tx.Amount)
		cur.y = pg.row(p, f, cur.y, i, tx, cur.balance)
		if p.err != nil {
			return Pagination{}, p.err
		}
		out.Rows[cur.page-1] = append(out.Rows[cur.page-1], i)
		out.Balances = append(out.Balances, cur.balance)
	}

	pg.footer(p, f, d.GeneratedAt)
	if p.err != nil {
		return Pagination{}, p.err
	}
	if cur.balance != d.Totals.Closing {
		return Pagination{}, fmt.Errorf("%w: ended at %s, closing is %s", ErrNumericDrift, cur.balance, d.Totals.Closing)
	}
	out.Final = cur.balance
	return out, nil
}
