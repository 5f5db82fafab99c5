// Package canvas describes the drawing surface the statement engine drives.
//
// Coordinates are millimetres from the top-left corner of the current page.
// Pages form an append-only sequence addressed by a one-based index; any
// previously created page can be made current again without disturbing what
// was drawn on it.
package canvas

import (
	"io"
	"time"
)

// A4 portrait dimensions in millimetres.
const (
	A4Width  = 210.0
	A4Height = 297.0
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type Weight int

const (
	Normal Weight = iota
	Bold
	Italic
)

// Color is an RGB triple.
type Color struct {
	R, G, B uint8
}

func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// TextStyle controls how DrawText renders a string. Size is in points.
type TextStyle struct {
	Align  Align
	Color  Color
	Size   float64
	Weight Weight
}

// Canvas is the capability the layout engine consumes.
type Canvas interface {
	// NewPage appends a page and makes it current.
	NewPage() error
	// SetPage makes an existing page current. index is one-based.
	SetPage(index int) error
	PageCount() int
	// PageSize reports the fixed page dimensions.
	PageSize() (width, height float64)

	FillRect(x, y, w, h float64, c Color) error
	RoundedRect(x, y, w, h, r float64, c Color) error
	Line(x1, y1, x2, y2, width float64, c Color) error
	// DrawText places text with its baseline at y. x is the left edge, the
	// centre or the right edge depending on the alignment.
	DrawText(x, y float64, text string, style TextStyle) error
	MeasureText(text string, style TextStyle) float64

	// Render writes the finished document.
	Render(w io.Writer) error
	// ContentType and Extension describe what Render produces.
	ContentType() string
	Extension() string
}

// Factory returns a fresh canvas. Every generation owns the canvas it gets.
// createdAt is the generation time; surfaces that record a creation date use
// it instead of the wall clock.
type Factory func(createdAt time.Time) Canvas
