package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"extracto/internal/amqp"
	"extracto/internal/cache"
	"extracto/internal/log"
	"extracto/internal/middleware/ratelimit"
	"extracto/internal/middleware/security"
	"extracto/internal/middleware/trace"
	"extracto/internal/source"
	"extracto/internal/statement"
)

const (
	defaultCacheSize     = 32
	defaultCacheMaxBytes = 64 << 20
	defaultCacheTTL      = 10 * time.Minute
	generateTimeout      = 30 * time.Second
	checkTimeout         = 5 * time.Second
)

// Publisher queues statement jobs for the worker.
type Publisher interface {
	PublishStatementRequest(ctx context.Context, msg *amqp.StatementRequestMessage) error
}

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Options tune the server. Zero values pick defaults; a nil Publisher
// disables the jobs endpoint.
type Options struct {
	Publisher          Publisher
	Checks             map[string]Check
	Logger             *log.Logger
	CacheSize          int
	CacheMaxBytes      int64
	CacheTTL           time.Duration
	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	source    source.Store
	generator *statement.Generator
	publisher Publisher
	checks    map[string]Check
	logger    *log.Logger

	// Rendered documents keyed by period and layout, bounded by entries and bytes.
	docCache *cache.LRUCache[statement.Document]
	cacheMgr *cache.Manager
	inflight singleflight.Group
	// cacheGen counts source writes. A render only stores its document when
	// no write happened since it started reading.
	cacheMu  sync.Mutex
	cacheGen uint64

	limiter *ratelimit.Limiter
	guard   *security.Guard
	tracer  *trace.Middleware
	metrics *appMetrics

	shutdownOnce sync.Once
}

// appMetrics tracks application-level counters
type appMetrics struct {
	uptime       time.Time
	statements   int64
	transactions int64
	jobs         int64
}

// NewServer wires routes and middleware, returning a ready-to-run server.
// Call Shutdown to stop the background cleanup goroutines.
func NewServer(addr string, src source.Store, gen *statement.Generator, opts Options) (*Server, error) {
	if src == nil || gen == nil {
		return nil, fmt.Errorf("source and generator are required")
	}
	guard, err := security.NewGuard(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.CacheMaxBytes <= 0 {
		opts.CacheMaxBytes = defaultCacheMaxBytes
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}

	limitCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		source:    src,
		generator: gen,
		publisher: opts.Publisher,
		checks:    opts.Checks,
		logger:    logger.WithComponent(log.ComponentHTTP),
		docCache: cache.NewLRUCache[statement.Document](opts.CacheSize, opts.CacheTTL).
			WithMaxWeight(opts.CacheMaxBytes, func(d statement.Document) int64 { return int64(len(d.Content)) }),
		cacheMgr: cache.NewManager(logger),
		limiter:  ratelimit.NewLimiter(limitCfg),
		guard:    guard,
		tracer:   trace.NewMiddleware(logger, guard.ClientIP),
		metrics:  &appMetrics{uptime: time.Now()},
	}
	s.cacheMgr.Register(s.docCache)
	s.cacheMgr.StartCleanup(opts.CacheTTL)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      generateTimeout + 10*time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.guard.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.guard.ClientIP, s.handleRateLimited))
		r.Get("/statements", s.handleStatement)
		r.Post("/statements/jobs", s.handleStatementJob)
		r.Post("/transactions", s.handleCreateTransaction)
	})
	return r
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
