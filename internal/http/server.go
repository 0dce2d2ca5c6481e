// Package http exposes the snapshot service as a JSON API.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"despesas/internal/log"
	"despesas/internal/middleware/ratelimit"
	"despesas/internal/middleware/security"
	"despesas/internal/middleware/trace"
	"despesas/internal/services"
)

// DefaultMaxUploadBytes bounds multipart uploads when Options leaves it zero.
const DefaultMaxUploadBytes int64 = 32 << 20

// Options tunes the server.
type Options struct {
	MaxUploadBytes    int64
	RequestsPerMinute int      // mutating requests per client; 0 uses the limiter default
	TrustedProxies    []string // CIDRs added to the private ranges for X-Forwarded-For
	Logger            *log.Logger
}

type Server struct {
	http.Server
	svc       *services.SnapshotService
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	maxUpload int64
	logger    *log.Logger
}

func NewServer(addr string, svc *services.SnapshotService, opts Options) *Server {
	logger := log.OrDefault(opts.Logger, log.ComponentHTTP)
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	limiterCfg := ratelimit.DefaultConfig()
	if opts.RequestsPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RequestsPerMinute
	}

	s := &Server{
		svc:       svc,
		limiter:   ratelimit.NewLimiter(limiterCfg),
		detector:  security.NewDetector(),
		maxUpload: maxUpload,
		logger:    logger,
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/snapshots", s.handleListSnapshots)
	mux.HandleFunc("POST /api/snapshots", s.handleUploadSnapshot)
	mux.HandleFunc("POST /api/snapshots/import", s.handleImportSnapshot)
	mux.HandleFunc("GET /api/snapshots/{name}", s.handleGetSnapshot)
	mux.HandleFunc("DELETE /api/snapshots/{name}", s.handleDeleteSnapshot)
	mux.HandleFunc("GET /api/snapshots/{name}/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/snapshots/{name}/options", s.handleOptions)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	// Outermost first: trace, detection, headers, rate limit.
	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited,
		http.MethodPost, http.MethodDelete)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.detector.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Start serves until Shutdown; http.ErrServerClosed is not an error.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, stops the rate limiter and logs the
// request counters.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.limiter.Stop()
	err := s.Server.Shutdown(ctx)

	m := s.tracer.GetMetrics()
	s.logger.Op(ctx, log.OpShutdown, err,
		"total_requests", m.TotalRequests,
		"server_errors", m.ServerErrors,
		"suspicious_requests", s.detector.GetMetrics().SuspiciousRequests,
		"rate_limited", s.limiter.Hits(),
		"tracked_clients", s.limiter.ActiveClients())
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Send(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Ready() {
		NewJSONResponse().
			Status(http.StatusServiceUnavailable).
			Body(map[string]string{"status": "storage unavailable"}).
			Send(w)
		return
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Send(w)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().
		Status(http.StatusTooManyRequests).
		Body(errorBody{Error: "rate limit exceeded"}).
		Send(w)
}
