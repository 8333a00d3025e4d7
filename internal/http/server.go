package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bookkeeping/internal/cache"
	applog "bookkeeping/internal/log"
	"bookkeeping/internal/middleware/ratelimit"
	"bookkeeping/internal/middleware/security"
	"bookkeeping/internal/middleware/trace"
	"bookkeeping/internal/services"
)

const (
	defaultSessionTTL       = 30 * time.Minute
	defaultSessionCacheSize = 1000
	sessionCleanupInterval  = 5 * time.Minute
	maxBodyBytes            = 1 << 20
)

// Server exposes the ledger service as a JSON API.
type Server struct {
	http.Server
	service  *services.LedgerService
	sessions *services.Sessions
	logger   *applog.Logger
	now      func() time.Time

	sessionTTL   time.Duration
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware

	shutdownOnce sync.Once
}

type serverOptions struct {
	logger           *applog.Logger
	now              func() time.Time
	rateLimit        int
	sessionTTL       time.Duration
	sessionCacheSize int
	trustedProxies   []string
}

// Option customizes a Server.
type Option func(*serverOptions)

func WithLogger(logger *applog.Logger) Option {
	return func(o *serverOptions) { o.logger = logger }
}

// WithClock replaces time.Now for session expiry and default record dates.
func WithClock(now func() time.Time) Option {
	return func(o *serverOptions) { o.now = now }
}

// WithRateLimit caps mutating requests per client per minute.
func WithRateLimit(perMinute int) Option {
	return func(o *serverOptions) { o.rateLimit = perMinute }
}

// WithSessions sizes the bill session cache.
func WithSessions(size int, ttl time.Duration) Option {
	return func(o *serverOptions) {
		o.sessionCacheSize = size
		o.sessionTTL = ttl
	}
}

// WithTrustedProxies adds CIDRs whose forwarding headers are believed.
func WithTrustedProxies(cidrs ...string) Option {
	return func(o *serverOptions) { o.trustedProxies = append(o.trustedProxies, cidrs...) }
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, service *services.LedgerService, opts ...Option) *Server {
	o := serverOptions{
		logger:           applog.Discard(),
		now:              time.Now,
		rateLimit:        ratelimit.DefaultConfig().RequestsPerMinute,
		sessionTTL:       defaultSessionTTL,
		sessionCacheSize: defaultSessionCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sessionTTL <= 0 {
		o.sessionTTL = defaultSessionTTL
	}
	if o.sessionCacheSize <= 0 {
		o.sessionCacheSize = defaultSessionCacheSize
	}

	logger := o.logger.WithComponent(applog.ComponentHTTP)

	sessionCache := cache.NewLRUCache[*services.BillSession](o.sessionCacheSize, o.sessionTTL, cache.WithClock(o.now))
	manager := cache.NewManager(o.logger)
	manager.Register(sessionCache)
	manager.StartCleanup(sessionCleanupInterval)

	detector := security.NewDetector()
	for _, cidr := range o.trustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err.Error())
		}
	}

	s := &Server{
		service:      service,
		sessions:     services.NewSessions(sessionCache, service, o.now),
		logger:       logger,
		now:          o.now,
		sessionTTL:   o.sessionTTL,
		cacheManager: manager,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: o.rateLimit,
			Methods:           ratelimit.MutatingMethods,
		}),
		detector: detector,
	}
	s.tracer = trace.NewMiddleware(o.logger, detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/records", s.handleListRecords)
	mux.HandleFunc("POST /api/records", s.handleCreateRecord)
	mux.HandleFunc("DELETE /api/records/{id}", s.handleDeleteRecord)
	mux.HandleFunc("DELETE /api/records", s.handleClearRecords)
	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("GET /api/bill", s.handleBill)
	mux.HandleFunc("POST /api/bill/month", s.handleBillMonth)
	mux.HandleFunc("POST /api/bill/more", s.handleBillMore)
	mux.HandleFunc("POST /api/bill/collapse/{date}", s.handleBillCollapse)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// middleware wraps h so the trace layer sees every response, including
// rate limited ones.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})(h)
	h = s.flagSuspicious(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	return s.tracer.Middleware(h)
}

func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				"user_agent", r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops background cleanup and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ready"))
}
