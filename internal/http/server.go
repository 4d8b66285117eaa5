package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"presupuesto/internal/cache"
	"presupuesto/internal/log"
	"presupuesto/internal/middleware/ratelimit"
	"presupuesto/internal/middleware/security"
	"presupuesto/internal/middleware/trace"
	"presupuesto/internal/services"
	appweb "presupuesto/web"
)

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	RateLimitPerMinute int
	// Ready probes the store for /readyz; nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *log.Logger
	// Now is the clock used for default year and month.
	Now func() time.Time
	// CacheSweepInterval is how often expired cache entries are dropped.
	CacheSweepInterval time.Duration
}

type Server struct {
	http.Server
	templates *template.Template
	ledger    *services.LedgerService
	reports   *services.ReportService
	ready     func(ctx context.Context) error
	now       func() time.Time
	started   time.Time

	logger          *log.Logger
	logs            *log.StructuredLogger
	rateLimiter     *ratelimit.Limiter
	detector        *security.Detector
	traceMiddleware *trace.Middleware
	janitor         *cache.Janitor

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, ledgerSvc *services.LedgerService, reports *services.ReportService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CacheSweepInterval <= 0 {
		opts.CacheSweepInterval = 10 * time.Minute
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:  ledgerSvc,
		reports: reports,
		ready:   opts.Ready,
		now:     opts.Now,
		started: time.Now(),
		logger:  logger,
		logs:    log.NewStructuredLogger(logger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}, opts.Logger),
		detector: security.NewDetector(opts.Logger),
		janitor:  cache.NewJanitor(),
	}
	s.traceMiddleware = trace.NewMiddleware(s.detector.ExtractClientIP, opts.Logger)

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", "error", err)
	}
	s.templates = t

	s.janitor.Register(reports.CardCache())
	s.janitor.Start(opts.CacheSweepInterval)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssets(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	// Pages
	mux.HandleFunc("GET /{$}", s.handleDashboardPage)
	mux.HandleFunc("GET /transactions", s.handleTransactionsPage)
	mux.HandleFunc("GET /cards", s.handleCardsPage)
	mux.HandleFunc("GET /comparison", s.handleComparisonPage)
	mux.HandleFunc("GET /report", s.handleReportPage)

	// API
	api := http.NewServeMux()
	api.HandleFunc("GET /api/dashboard", s.handleAPIDashboard)
	api.HandleFunc("GET /api/transactions", s.handleAPITransactions)
	api.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	api.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	// HTML forms cannot send DELETE.
	api.HandleFunc("POST /api/transactions/{id}/delete", s.handleDeleteTransaction)
	api.HandleFunc("GET /api/cards", s.handleAPICards)
	api.HandleFunc("GET /api/comparison", s.handleAPIComparison)
	api.HandleFunc("GET /api/report", s.handleAPIReport)
	api.HandleFunc("GET /api/vocabulary", s.handleAPIVocabulary)
	mux.Handle("/api/", security.NoStore(api))

	// Probes
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	onLimit := func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	}

	var h http.Handler = mux
	h = s.rateLimiter.Middleware(s.detector.ExtractClientIP, onLimit, http.MethodPost, http.MethodDelete)(h)
	h = security.NewHeaders(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = s.traceMiddleware.Middleware(h)
	h = log.Middleware(s.logger)(h)
	return h
}

// Shutdown stops background goroutines and drains the HTTP server. Safe
// to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
