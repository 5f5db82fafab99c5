package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extracto/internal/canvas"
)

func TestDrawingNeedsAPage(t *testing.T) {
	c := New()
	err := c.FillRect(0, 0, 10, 10, canvas.RGB(1, 2, 3))
	assert.ErrorIs(t, err, ErrNoPage)
}

func TestRevisitKeepsEarlierOps(t *testing.T) {
	c := New()
	require.NoError(t, c.NewPage())
	require.NoError(t, c.DrawText(10, 10, "first", canvas.TextStyle{Size: 8}))
	require.NoError(t, c.NewPage())
	require.NoError(t, c.DrawText(10, 10, "second", canvas.TextStyle{Size: 8}))

	require.NoError(t, c.SetPage(1))
	assert.Equal(t, 1, c.Current())
	require.NoError(t, c.DrawText(200, 280, "stamp", canvas.TextStyle{Align: canvas.AlignRight}))

	p1, ok := c.Page(1)
	require.True(t, ok)
	assert.Equal(t, []string{"first", "stamp"}, p1.Texts())
	p2, _ := c.Page(2)
	assert.Equal(t, []string{"second"}, p2.Texts())
	assert.Equal(t, 2, c.PageCount())
}

func TestSetPageOutOfRange(t *testing.T) {
	c := New()
	require.NoError(t, c.NewPage())
	assert.ErrorIs(t, c.SetPage(0), ErrPageRange)
	assert.ErrorIs(t, c.SetPage(2), ErrPageRange)
}

func TestFailAfter(t *testing.T) {
	c := New().FailAfter(2)
	require.NoError(t, c.NewPage())
	require.NoError(t, c.Line(0, 0, 1, 1, 0.1, canvas.Color{}))

	err := c.RoundedRect(0, 0, 5, 5, 1, canvas.Color{})
	assert.True(t, errors.Is(err, ErrInjected))
	assert.ErrorIs(t, c.NewPage(), ErrInjected, "stays failed")
	assert.Equal(t, 1, c.PageCount())
}

func TestMeasureTextScalesWithSize(t *testing.T) {
	c := New()
	small := c.MeasureText("ñandú", canvas.TextStyle{Size: 6})
	large := c.MeasureText("ñandú", canvas.TextStyle{Size: 12})
	assert.InDelta(t, 5*6*ptToMM*0.5, small, 1e-9)
	assert.InDelta(t, 2*small, large, 1e-9)
}

func TestRenderJSON(t *testing.T) {
	c := NewSized(100, 50)
	require.NoError(t, c.NewPage())
	require.NoError(t, c.FillRect(1, 2, 3, 4, canvas.RGB(9, 8, 7)))

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))

	var doc struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Pages  []struct {
			Ops []Op `json:"ops"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 100.0, doc.Width)
	require.Len(t, doc.Pages, 1)
	require.Len(t, doc.Pages[0].Ops, 1)
	assert.Equal(t, OpFillRect, doc.Pages[0].Ops[0].Kind)
	assert.Equal(t, canvas.RGB(9, 8, 7), doc.Pages[0].Ops[0].Color)
	assert.Equal(t, ".json", c.Extension())
}
