// Package record implements canvas.Canvas in memory. Every primitive is kept
// as an Op on its page so layouts can be inspected, diffed against golden
// files, or rendered as JSON.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"extracto/internal/canvas"
)

type OpKind string

const (
	OpFillRect    OpKind = "fill_rect"
	OpRoundedRect OpKind = "rounded_rect"
	OpLine        OpKind = "line"
	OpText        OpKind = "text"
)

// ptToMM converts a font size in points to millimetres.
const ptToMM = 25.4 / 72

var (
	ErrNoPage     = errors.New("no current page")
	ErrPageRange  = errors.New("page index out of range")
	ErrInjected   = errors.New("injected canvas failure")
	errNegativeWH = errors.New("negative width or height")
)

type Op struct {
	Kind   OpKind           `json:"kind"`
	X      float64          `json:"x"`
	Y      float64          `json:"y"`
	W      float64          `json:"w,omitempty"`
	H      float64          `json:"h,omitempty"`
	R      float64          `json:"r,omitempty"`
	X2     float64          `json:"x2,omitempty"`
	Y2     float64          `json:"y2,omitempty"`
	Text   string           `json:"text,omitempty"`
	Style  canvas.TextStyle `json:"style"`
	Color  canvas.Color     `json:"color"`
	Stroke float64          `json:"stroke,omitempty"`
}

type Page struct {
	Ops []Op `json:"ops"`
}

// Texts returns the strings drawn on the page in drawing order.
func (p Page) Texts() []string {
	var out []string
	for _, op := range p.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// HasText reports whether any text op on the page contains sub.
func (p Page) HasText(sub string) bool {
	for _, t := range p.Texts() {
		if strings.Contains(t, sub) {
			return true
		}
	}
	return false
}

type Canvas struct {
	width   float64
	height  float64
	pages   []*Page
	current int
	calls   int
	failAt  int
}

var _ canvas.Canvas = (*Canvas)(nil)

// New returns an empty A4 canvas.
func New() *Canvas {
	return NewSized(canvas.A4Width, canvas.A4Height)
}

func NewSized(width, height float64) *Canvas {
	return &Canvas{width: width, height: height}
}

// Factory adapts New to canvas.Factory.
func Factory(time.Time) canvas.Canvas { return New() }

// FailAfter makes the canvas fail every call after n successful ones.
func (c *Canvas) FailAfter(n int) *Canvas {
	c.failAt = n + 1
	return c
}

func (c *Canvas) step() error {
	c.calls++
	if c.failAt > 0 && c.calls >= c.failAt {
		return fmt.Errorf("call %d: %w", c.calls, ErrInjected)
	}
	return nil
}

func (c *Canvas) NewPage() error {
	if err := c.step(); err != nil {
		return err
	}
	c.pages = append(c.pages, &Page{})
	c.current = len(c.pages)
	return nil
}

func (c *Canvas) SetPage(index int) error {
	if err := c.step(); err != nil {
		return err
	}
	if index < 1 || index > len(c.pages) {
		return fmt.Errorf("%w: %d of %d", ErrPageRange, index, len(c.pages))
	}
	c.current = index
	return nil
}

func (c *Canvas) PageCount() int { return len(c.pages) }

func (c *Canvas) PageSize() (float64, float64) { return c.width, c.height }

// Current returns the one-based index of the current page, 0 before the first NewPage.
func (c *Canvas) Current() int { return c.current }

func (c *Canvas) FillRect(x, y, w, h float64, col canvas.Color) error {
	if w < 0 || h < 0 {
		return errNegativeWH
	}
	return c.add(Op{Kind: OpFillRect, X: x, Y: y, W: w, H: h, Color: col})
}

func (c *Canvas) RoundedRect(x, y, w, h, r float64, col canvas.Color) error {
	if w < 0 || h < 0 {
		return errNegativeWH
	}
	return c.add(Op{Kind: OpRoundedRect, X: x, Y: y, W: w, H: h, R: r, Color: col})
}

func (c *Canvas) Line(x1, y1, x2, y2, width float64, col canvas.Color) error {
	return c.add(Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, Stroke: width, Color: col})
}

func (c *Canvas) DrawText(x, y float64, text string, style canvas.TextStyle) error {
	return c.add(Op{Kind: OpText, X: x, Y: y, Text: text, Style: style, Color: style.Color})
}

// MeasureText approximates Helvetica with half an em per rune.
func (c *Canvas) MeasureText(text string, style canvas.TextStyle) float64 {
	return float64(utf8.RuneCountInString(text)) * style.Size * ptToMM * 0.5
}

func (c *Canvas) add(op Op) error {
	if err := c.step(); err != nil {
		return err
	}
	if c.current == 0 {
		return ErrNoPage
	}
	p := c.pages[c.current-1]
	p.Ops = append(p.Ops, op)
	return nil
}

// Pages returns a copy of the recorded pages.
func (c *Canvas) Pages() []Page {
	out := make([]Page, len(c.pages))
	for i, p := range c.pages {
		out[i] = Page{Ops: append([]Op(nil), p.Ops...)}
	}
	return out
}

// Page returns the one-based page index.
func (c *Canvas) Page(index int) (Page, bool) {
	if index < 1 || index > len(c.pages) {
		return Page{}, false
	}
	return Page{Ops: append([]Op(nil), c.pages[index-1].Ops...)}, true
}

type document struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Pages  []Page  `json:"pages"`
}

func (c *Canvas) Render(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document{Width: c.width, Height: c.height, Pages: c.Pages()})
}

func (c *Canvas) ContentType() string { return "application/json" }

func (c *Canvas) Extension() string { return ".json" }
