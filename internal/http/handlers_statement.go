package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"extracto/internal/amqp"
	"extracto/internal/core"
	"extracto/internal/log"
	"extracto/internal/source"
	"extracto/internal/statement"
)

// handleStatement renders the statement for a period and streams it.
// Query: month=YYYY-MM or start/end, layout, download.
func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := ParsePeriodParams(q, time.Now())
	if err != nil {
		writeError(w, r, log.OpGenerate, err)
		return
	}
	gen, err := s.generator.ForLayout(q.Get("layout"))
	if err != nil {
		writeError(w, r, log.OpGenerate, err)
		return
	}

	doc, hit, err := s.statement(r.Context(), p, gen)
	if err != nil {
		writeError(w, r, log.OpGenerate, err)
		return
	}

	disposition := "inline"
	if truthy(q.Get("download")) {
		disposition = "attachment"
	}
	cacheStatus := "MISS"
	if hit {
		cacheStatus = "HIT"
	}
	NewResponse().
		Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.Name)).
		Header("Content-Length", strconv.Itoa(len(doc.Content))).
		Header("Cache-Control", "private, no-store").
		Header("X-Statement-Pages", strconv.Itoa(doc.Pages)).
		Header("X-Statement-Layout", doc.Layout).
		Header("X-Cache", cacheStatus).
		Body(doc.ContentType, doc.Content).
		Write(w)
}

// statement returns the cached document or renders it once for all
// concurrent callers asking for the same period and layout. The render is
// detached from the caller's cancellation so one client going away does not
// fail the others.
func (s *Server) statement(ctx context.Context, p core.Period, gen *statement.Generator) (statement.Document, bool, error) {
	key := p.String() + "|" + gen.Layout().Name
	if doc, ok := s.docCache.Get(key); ok {
		log.FromContext(ctx).DebugContext(ctx, "Statement cache hit", log.FieldPeriod, p.String(), log.FieldLayout, gen.Layout().Name)
		return doc, true, nil
	}

	// Callers arriving after a write must not join a render that read
	// the source before it.
	generation := s.cacheGeneration()
	flightKey := key + "#" + strconv.FormatUint(generation, 10)
	v, err, _ := s.inflight.Do(flightKey, func() (any, error) {
		gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generateTimeout)
		defer cancel()

		req, err := source.BuildRequest(gctx, s.source, p)
		if err != nil {
			return nil, err
		}
		doc, err := gen.Generate(gctx, req)
		if err != nil {
			return nil, err
		}
		atomic.AddInt64(&s.metrics.statements, 1)
		if !s.storeIfCurrent(generation, key, doc) {
			log.FromContext(ctx).DebugContext(ctx, "Statement outdated by a write, not cached", log.FieldPeriod, p.String())
		}
		return doc, nil
	})
	if err != nil {
		return statement.Document{}, false, err
	}
	return v.(statement.Document), false, nil
}

func (s *Server) cacheGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.cacheGen
}

// storeIfCurrent caches doc unless the source changed after generation.
func (s *Server) storeIfCurrent(generation uint64, key string, doc statement.Document) bool {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cacheGen != generation {
		return false
	}
	s.docCache.Set(key, doc)
	return true
}

// invalidate drops every cached document and outdates renders in flight.
func (s *Server) invalidate() int {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cacheGen++
	return s.docCache.Purge()
}

type jobResponse struct {
	JobID   string `json:"job_id"`
	Period  string `json:"period"`
	Layout  string `json:"layout"`
	Monthly bool   `json:"monthly"`
}

// handleStatementJob queues a statement for the worker. Body (JSON or form):
// month or start/end, layout, monthly.
func (s *Server) handleStatementJob(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		ServiceUnavailableError("statement jobs are disabled").Write(w)
		return
	}

	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		writeError(w, r, log.OpPublish, err)
		return
	}
	p, err := ParsePeriodParams(body.Values(), time.Now())
	if err != nil {
		writeError(w, r, log.OpPublish, err)
		return
	}
	gen, err := s.generator.ForLayout(body.Get("layout"))
	if err != nil {
		writeError(w, r, log.OpPublish, err)
		return
	}

	msg := amqp.NewStatementRequestMessage(p, gen.Layout().Name, body.GetBool("monthly"))
	if err := s.publisher.PublishStatementRequest(r.Context(), msg); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to queue statement job",
			log.FieldJobID, msg.JobID, log.FieldError, err)
		ServiceUnavailableError("statement queue unavailable").Write(w)
		return
	}
	atomic.AddInt64(&s.metrics.jobs, 1)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Statement job queued",
		log.FieldJobID, msg.JobID, log.FieldPeriod, p.String(), log.FieldLayout, msg.Layout)

	NewResponse().
		Status(http.StatusAccepted).
		JSON(jobResponse{JobID: msg.JobID, Period: p.String(), Layout: msg.Layout, Monthly: msg.Monthly}).
		Write(w)
}
