package statement

import (
	"fmt"

	"extracto/internal/canvas"
)

// StampPageNumbers revisits every page in order and draws its
// "page X of N" label in the footer area.
func StampPageNumbers(c canvas.Canvas, layout Layout, labels Labels) error {
	total := c.PageCount()
	w, h := c.PageSize()
	style := canvas.TextStyle{Align: canvas.AlignRight, Color: layout.Theme.Muted, Size: 6}
	for i := 1; i <= total; i++ {
		if err := c.SetPage(i); err != nil {
			return &CanvasError{Op: "set page", Err: err}
		}
		label := fmt.Sprintf(labels.Page, i, total)
		if err := c.DrawText(w-layout.Margin, h-layout.PageNumberOffset, label, style); err != nil {
			return &CanvasError{Op: "page number", Err: err}
		}
	}
	return nil
}
