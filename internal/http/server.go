package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"budgetmanage/internal/log"
	"budgetmanage/internal/services"
)

const requestIDHeader = "X-Request-ID"

// Options tune a Server. Zero values select defaults.
type Options struct {
	RateLimitPerMinute int
	Logger             *log.Logger
	// Ready is probed by /readyz; nil always reports ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	svc         *services.BudgetService
	ready       func(ctx context.Context) error
	logger      *log.Logger
	access      *log.StructuredLogger
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	startedAt   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.BudgetService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentHTTP, Handler: slog.Default().Handler()})
	}

	s := &Server{
		svc:         svc,
		ready:       opts.Ready,
		logger:      logger,
		access:      log.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),
		metrics:     &securityMetrics{},
		startedAt:   time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /themes", s.handleListThemes)

	mux.HandleFunc("GET /templates", s.handleListTemplates)
	mux.HandleFunc("POST /templates", s.handleCreateTemplate)
	mux.HandleFunc("DELETE /templates/{id}", s.handleDeleteTemplate)

	mux.HandleFunc("GET /budgets", s.handleListBudgets)
	mux.HandleFunc("POST /budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /budgets/active", s.handleActiveBudget)
	mux.HandleFunc("GET /budgets/{id}", s.handleGetBudget)
	mux.HandleFunc("PUT /budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /budgets/{id}", s.handleDeleteBudget)
	mux.HandleFunc("POST /budgets/{id}/activate", s.handleActivateBudget)
	mux.HandleFunc("GET /budgets/{id}/summary", s.handleSummary)
	mux.HandleFunc("GET /budgets/{id}/buckets/{categoryId}", s.handleBucket)
	mux.HandleFunc("GET /budgets/{id}/appendable-templates", s.handleAppendableTemplates)

	mux.HandleFunc("POST /budgets/{id}/categories", s.handleAddCategory)
	mux.HandleFunc("PUT /budgets/{id}/categories/{categoryId}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /budgets/{id}/categories/{categoryId}", s.handleRemoveCategory)

	mux.HandleFunc("POST /budgets/{id}/expenses", s.handleAddExpense)
	mux.HandleFunc("PUT /budgets/{id}/expenses/{expenseId}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /budgets/{id}/expenses/{expenseId}", s.handleDeleteExpense)

	var handler http.Handler = s.withSecurity(mux)
	handler = log.RequestIDMiddleware(func(r *http.Request) string { return r.Header.Get(requestIDHeader) })(handler)
	handler = log.Middleware(logger)(handler)
	handler = withRequestID(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestID keeps an incoming X-Request-ID or assigns a new one and
// echoes it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = generateRequestID()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// withSecurity adds security headers, rate limits mutating requests and
// writes the access log.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		clientIP := extractClientIP(r)
		logger := log.FromContext(ctx)

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(ctx, "Suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		setSecurityHeaders(w)
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			rw.Header().Set("Retry-After", "60")
			writeJSON(rw, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, please try again later"})
		} else {
			next.ServeHTTP(rw, r)
		}

		s.access.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady probes the store and reports limiter and security counters.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, httpStatus := "ready", http.StatusOK
	checks := map[string]any{}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			checks["store"] = "failed"
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	} else {
		checks["store"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients":  s.rateLimiter.activeClients(),
		"rate_limit_hits": atomic.LoadInt64(&s.metrics.rateLimitHits),
	}
	checks["suspicious_requests"] = atomic.LoadInt64(&s.metrics.suspiciousRequests)

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
