package http

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"extracto/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.uptime).Round(time.Second).String(),
	}).Write(w)
}

// handleReady runs every dependency check with its own timeout.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any, len(s.checks)+2)

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := s.checks[name](ctx)
		cancel()
		if err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", "check", name, log.FieldError, err)
			checks[name] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	if s.publisher == nil {
		checks["jobs"] = "disabled"
	}
	checks["cache"] = map[string]any{
		"entries": s.docCache.Size(),
		"bytes":   s.docCache.Weight(),
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()
	guardMetrics := s.guard.GetMetrics()
	hits, misses := s.docCache.Stats()

	w.WriteHeader(http.StatusOK)
	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_last_response_microseconds", "Duration of the most recent request", "gauge", traceMetrics.LastResponseTime)
	metric("statements_generated_total", "Statements rendered by this process", "counter", atomic.LoadInt64(&s.metrics.statements))
	metric("transactions_created_total", "Transactions appended through the API", "counter", atomic.LoadInt64(&s.metrics.transactions))
	metric("statement_jobs_published_total", "Statement jobs queued", "counter", atomic.LoadInt64(&s.metrics.jobs))
	metric("statement_cache_hits_total", "Statement cache hits", "counter", hits)
	metric("statement_cache_misses_total", "Statement cache misses", "counter", misses)
	metric("statement_cache_entries", "Cached statements", "gauge", s.docCache.Size())
	metric("statement_cache_bytes", "Bytes held by cached statements", "gauge", s.docCache.Weight())
	metric("rate_limit_hits_total", "Requests refused by the rate limiter", "counter", limitMetrics.TotalHits)
	metric("rate_limit_clients", "Clients tracked by the rate limiter", "gauge", limitMetrics.ClientCount)
	metric("suspicious_requests_total", "Requests rejected as probes", "counter", guardMetrics.SuspiciousRequests)
	metric("uptime_seconds", "Process uptime", "gauge", int64(time.Since(s.metrics.uptime).Seconds()))
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.guard.ClientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}
