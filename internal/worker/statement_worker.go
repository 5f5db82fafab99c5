package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"extracto/internal/amqp"
	"extracto/internal/artifact"
	"extracto/internal/core"
	"extracto/internal/log"
	"extracto/internal/source"
	"extracto/internal/statement"
)

// StatementWorker renders statements for requested periods and hands them to
// the artifact store.
type StatementWorker struct {
	source      source.Reader
	store       artifact.Store
	generator   *statement.Generator
	concurrency int
	logger      *log.Logger
}

func NewStatementWorker(src source.Reader, store artifact.Store, gen *statement.Generator, concurrency int, logger *log.Logger) *StatementWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &StatementWorker{
		source:      src,
		store:       store,
		generator:   gen,
		concurrency: concurrency,
		logger:      logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRequest processes a single statement request from AMQP.
func (w *StatementWorker) HandleRequest(ctx context.Context, msg *amqp.StatementRequestMessage) error {
	p, err := msg.Period()
	if err != nil {
		return amqp.Permanent(fmt.Errorf("job %s: %w", msg.JobID, err))
	}
	refs, err := w.Render(ctx, p, msg.Layout, msg.Monthly)
	if err != nil {
		err = fmt.Errorf("job %s: %w", msg.JobID, err)
		if permanent(err) {
			return amqp.Permanent(err)
		}
		return err
	}
	w.logger.InfoContext(ctx, "Statement job finished",
		log.FieldJobID, msg.JobID,
		log.FieldPeriod, p.String(),
		"documents", len(refs))
	return nil
}

// Render generates and stores the statement for p, or one per calendar month
// when monthly is set. Refs come back in period order.
func (w *StatementWorker) Render(ctx context.Context, p core.Period, layout string, monthly bool) ([]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	gen, err := w.generator.ForLayout(layout)
	if err != nil {
		return nil, err
	}

	periods := []core.Period{p}
	if monthly {
		periods = p.Months()
	}

	refs := make([]string, len(periods))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i, period := range periods {
		g.Go(func() error {
			ref, err := w.renderOne(ctx, gen, period)
			if err != nil {
				return fmt.Errorf("statement %s: %w", period, err)
			}
			refs[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

func (w *StatementWorker) renderOne(ctx context.Context, gen *statement.Generator, p core.Period) (string, error) {
	start := time.Now()
	req, err := source.BuildRequest(ctx, w.source, p)
	if err != nil {
		return "", err
	}
	doc, err := gen.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	ref, err := w.store.Save(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", doc.Name, err)
	}
	w.logger.InfoContext(ctx, "Statement stored",
		log.FieldPeriod, p.String(),
		log.FieldLayout, doc.Layout,
		log.FieldPages, doc.Pages,
		log.FieldArtifactRef, ref,
		log.FieldDuration, time.Since(start).Milliseconds())
	return ref, nil
}

// permanent reports failures caused by the request or the data itself,
// which fail the same way on every redelivery.
func permanent(err error) bool {
	for _, target := range []error{
		core.ErrInvalidPeriod,
		statement.ErrInvalidTransaction,
		statement.ErrUnknownLayout,
		statement.ErrNumericDrift,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
