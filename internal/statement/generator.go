// Package statement lays out bank statements: it aggregates a transaction
// set, paginates the ledger with a running balance onto a canvas, stamps page
// numbers in a second pass and returns the rendered document.
package statement

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"extracto/internal/canvas"
	"extracto/internal/core"
	"extracto/internal/log"
)

// Request is the engine's only input. Transactions outside Period are laid
// out like any other; filtering is the caller's job.
type Request struct {
	Transactions   []core.Transaction
	ClosingBalance core.Money
	Period         core.Period
}

// Validate checks the period first, then every transaction.
func (r Request) Validate() error {
	if err := r.Period.Validate(); err != nil {
		return err
	}
	for i, t := range r.Transactions {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: #%d %q: %w", ErrInvalidTransaction, i, t.ID, err)
		}
	}
	return nil
}

// Document is a finished statement.
type Document struct {
	Name        string
	ContentType string
	Pages       int
	Content     []byte
	Layout      string
	Period      core.Period
	Totals      Aggregates
	GeneratedAt time.Time
}

// Generator turns requests into documents. It holds no per-request state and
// is safe for concurrent use as long as the factory returns a fresh canvas
// on every call.
type Generator struct {
	newCanvas canvas.Factory
	layout    Layout
	brand     Branding
	now       func() time.Time
	logger    *log.Logger
}

type Option func(*Generator)

func WithLayout(l Layout) Option {
	return func(g *Generator) { g.layout = l }
}

func WithBranding(b Branding) Option {
	return func(g *Generator) { g.brand = b }
}

// WithClock sets the source of the "generated at" footer field.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

func NewGenerator(factory canvas.Factory, opts ...Option) *Generator {
	g := &Generator{
		newCanvas: factory,
		layout:    ClassicLayout(),
		brand:     DefaultBranding(),
		now:       time.Now,
		logger:    log.New(log.DefaultConfig()).WithComponent(log.ComponentStatement),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Layout() Layout { return g.layout }

// ForLayout returns a generator sharing g's settings but drawing with the
// named preset. An empty name keeps g's own layout.
func (g *Generator) ForLayout(name string) (*Generator, error) {
	if strings.TrimSpace(name) == "" {
		return g, nil
	}
	l, err := LayoutByName(name)
	if err != nil {
		return nil, err
	}
	cp := *g
	cp.layout = l
	return &cp, nil
}

// Name returns the artifact name for a period, without extension.
func (g *Generator) Name(p core.Period) string {
	return fmt.Sprintf("%s_%s_%s", g.brand.ArtifactPrefix, p.Start.Compact(), p.End.Compact())
}

// Generate runs the whole pipeline. It never returns a partial document:
// any canvas failure aborts it.
func (g *Generator) Generate(ctx context.Context, req Request) (Document, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return Document{}, fmt.Errorf("generate statement: %w", err)
	}

	rows := Chronological(req.Transactions)
	totals := Aggregate(rows, req.ClosingBalance)
	generatedAt := g.now()

	c := g.newCanvas(generatedAt)
	pagination, err := NewPaginator(g.layout, g.brand).Paginate(c, Draft{
		Period:      req.Period,
		Rows:        rows,
		Totals:      totals,
		GeneratedAt: generatedAt,
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "Statement layout failed", log.FieldPeriod, req.Period.String(), log.FieldError, err)
		return Document{}, fmt.Errorf("paginate statement: %w", err)
	}
	if err := StampPageNumbers(c, g.layout, g.brand.Labels); err != nil {
		return Document{}, fmt.Errorf("number pages: %w", err)
	}

	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return Document{}, fmt.Errorf("render statement: %w", &CanvasError{Op: "render", Err: err})
	}

	doc := Document{
		Name:        g.Name(req.Period) + c.Extension(),
		ContentType: c.ContentType(),
		Pages:       pagination.Pages(),
		Content:     buf.Bytes(),
		Layout:      g.layout.Name,
		Period:      req.Period,
		Totals:      totals,
		GeneratedAt: generatedAt,
	}
	log.NewStructuredLogger(g.logger).LogStatementGenerated(ctx, req.Period.String(), g.layout.Name, doc.Name,
		len(rows), doc.Pages, time.Since(start).Milliseconds())
	return doc, nil
}
