// Package pdf implements canvas.Canvas on top of github.com/go-pdf/fpdf.
package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"extracto/internal/canvas"
)

const fontFamily = "Helvetica"

// Options configures document metadata. CreatedAt is written into the PDF
// info dictionary; keep it fixed to get byte-identical output.
type Options struct {
	Title     string
	Author    string
	CreatedAt time.Time
}

type Canvas struct {
	doc     *fpdf.Fpdf
	tr      func(string) string
	fontSet bool
}

var _ canvas.Canvas = (*Canvas)(nil)

// New returns an A4 portrait document in millimetres without any page.
func New(opts Options) *Canvas {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)
	doc.SetCatalogSort(true)
	doc.SetCompression(true)
	if opts.Title != "" {
		doc.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		doc.SetAuthor(opts.Author, true)
	}
	doc.SetCreator("extracto", true)
	if !opts.CreatedAt.IsZero() {
		doc.SetCreationDate(opts.CreatedAt)
		doc.SetModificationDate(opts.CreatedAt)
	}
	return &Canvas{
		doc: doc,
		// Core fonts are cp1252; this covers accents and the euro sign.
		tr: doc.UnicodeTranslatorFromDescriptor(""),
	}
}

// Factory returns a canvas.Factory producing documents with opts. Each
// document is dated with the time it is requested for.
func Factory(opts Options) canvas.Factory {
	return func(createdAt time.Time) canvas.Canvas {
		o := opts
		o.CreatedAt = createdAt
		return New(o)
	}
}

func (c *Canvas) NewPage() error {
	c.doc.AddPage()
	return c.check("new page")
}

func (c *Canvas) SetPage(index int) error {
	if index < 1 || index > c.doc.PageCount() {
		return fmt.Errorf("set page %d: only %d pages", index, c.doc.PageCount())
	}
	c.doc.SetPage(index)
	// fpdf skips SetFont when nothing changed, which would leave a revisited
	// page without a font selection. Forcing a different size makes the next
	// DrawText emit one.
	if c.fontSet {
		c.doc.SetFontSize(1)
	}
	return c.check("set page")
}

func (c *Canvas) PageCount() int { return c.doc.PageCount() }

func (c *Canvas) PageSize() (float64, float64) { return c.doc.GetPageSize() }

func (c *Canvas) FillRect(x, y, w, h float64, col canvas.Color) error {
	c.doc.SetFillColor(int(col.R), int(col.G), int(col.B))
	c.doc.Rect(x, y, w, h, "F")
	return c.check("fill rect")
}

func (c *Canvas) RoundedRect(x, y, w, h, r float64, col canvas.Color) error {
	c.doc.SetFillColor(int(col.R), int(col.G), int(col.B))
	c.doc.RoundedRect(x, y, w, h, r, "1234", "F")
	return c.check("rounded rect")
}

func (c *Canvas) Line(x1, y1, x2, y2, width float64, col canvas.Color) error {
	c.doc.SetDrawColor(int(col.R), int(col.G), int(col.B))
	c.doc.SetLineWidth(width)
	c.doc.Line(x1, y1, x2, y2)
	return c.check("line")
}

func (c *Canvas) DrawText(x, y float64, text string, style canvas.TextStyle) error {
	c.applyStyle(style)
	text = c.tr(text)
	switch style.Align {
	case canvas.AlignRight:
		x -= c.doc.GetStringWidth(text)
	case canvas.AlignCenter:
		x -= c.doc.GetStringWidth(text) / 2
	}
	c.doc.Text(x, y, text)
	return c.check("draw text")
}

func (c *Canvas) MeasureText(text string, style canvas.TextStyle) float64 {
	c.applyStyle(style)
	return c.doc.GetStringWidth(c.tr(text))
}

func (c *Canvas) applyStyle(style canvas.TextStyle) {
	c.doc.SetFont(fontFamily, fontStyle(style.Weight), style.Size)
	c.fontSet = true
	c.doc.SetTextColor(int(style.Color.R), int(style.Color.G), int(style.Color.B))
}

func fontStyle(w canvas.Weight) string {
	switch w {
	case canvas.Bold:
		return "B"
	case canvas.Italic:
		return "I"
	}
	return ""
}

func (c *Canvas) Render(w io.Writer) error {
	if err := c.doc.Output(w); err != nil {
		return fmt.Errorf("output pdf: %w", err)
	}
	return nil
}

func (c *Canvas) ContentType() string { return "application/pdf" }

func (c *Canvas) Extension() string { return ".pdf" }

func (c *Canvas) check(op string) error {
	if c.doc.Err() {
		return fmt.Errorf("%s: %w", op, c.doc.Error())
	}
	return nil
}
