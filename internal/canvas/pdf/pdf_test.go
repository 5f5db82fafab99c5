package pdf

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extracto/internal/canvas"
	"extracto/internal/core"
	"extracto/internal/log"
	"extracto/internal/statement"
)

var created = time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

func draw(t *testing.T) []byte {
	t.Helper()
	c := New(Options{Title: "Extracto", Author: "BBVA", CreatedAt: created})
	style := canvas.TextStyle{Size: 9, Color: canvas.RGB(18, 32, 63), Weight: canvas.Bold}

	require.NoError(t, c.NewPage())
	require.NoError(t, c.FillRect(0, 0, canvas.A4Width, 8, canvas.RGB(18, 32, 63)))
	require.NoError(t, c.RoundedRect(15, 40, 180, 8, 1.5, canvas.RGB(0, 68, 129)))
	require.NoError(t, c.DrawText(15, 30, "Información de la cuenta 12.17 €", style))
	require.NoError(t, c.NewPage())
	require.NoError(t, c.Line(15, 50, 195, 50, 0.15, canvas.RGB(200, 200, 200)))
	require.NoError(t, c.DrawText(195, 60, "Saldo", canvas.TextStyle{Size: 6, Align: canvas.AlignRight}))

	for i := 1; i <= c.PageCount(); i++ {
		require.NoError(t, c.SetPage(i))
		require.NoError(t, c.DrawText(195, 280, "Página", canvas.TextStyle{Size: 6, Align: canvas.AlignRight}))
	}

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))
	return buf.Bytes()
}

func TestRenderProducesPDF(t *testing.T) {
	out := draw(t)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, bytes.Contains(out, []byte("%%EOF")))
}

func TestRenderIsReproducible(t *testing.T) {
	assert.Equal(t, draw(t), draw(t))
}

func TestPageSizeAndCount(t *testing.T) {
	c := New(Options{})
	w, h := c.PageSize()
	assert.InDelta(t, canvas.A4Width, w, 0.01)
	assert.InDelta(t, canvas.A4Height, h, 0.01)

	assert.Zero(t, c.PageCount())
	require.NoError(t, c.NewPage())
	assert.Equal(t, 1, c.PageCount())
	assert.Error(t, c.SetPage(2))
	assert.Error(t, c.SetPage(0))
}

func TestMeasureTextAlignsRight(t *testing.T) {
	c := New(Options{})
	require.NoError(t, c.NewPage())
	style := canvas.TextStyle{Size: 10}
	short := c.MeasureText("1.00", style)
	long := c.MeasureText("1000.00", style)
	assert.Greater(t, long, short)
	assert.Positive(t, short)
	assert.Equal(t, "application/pdf", c.ContentType())
}

func TestFactoryDatesDocumentsWithGenerationTime(t *testing.T) {
	at := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	var txs []core.Transaction
	for i := 0; i < 150; i++ {
		txs = append(txs, core.Transaction{
			ID:          fmt.Sprintf("tx-%03d", i),
			Description: "Mercadona",
			Amount:      core.Money{Cents: -int64(100 + i)},
			Date:        core.NewDate(2024, 1, 1+i%28),
			Category:    core.Food,
		})
	}
	req := statement.Request{
		Period:         core.Period{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31)},
		Transactions:   txs,
		ClosingBalance: core.Money{Cents: 1217},
	}
	render := func(now time.Time) statement.Document {
		gen := statement.NewGenerator(Factory(Options{Title: "Extracto", Author: "BBVA"}),
			statement.WithClock(func() time.Time { return now }),
			statement.WithLogger(log.NewNop()))
		doc, err := gen.Generate(context.Background(), req)
		require.NoError(t, err)
		return doc
	}

	a := render(at)
	time.Sleep(1100 * time.Millisecond)
	b := render(at)
	assert.Greater(t, a.Pages, 1)
	assert.Equal(t, a.Content, b.Content)
	assert.NotEqual(t, a.Content, render(at.Add(time.Hour)).Content)
}
