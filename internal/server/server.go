package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"word-counter/internal/service"
	"word-counter/internal/storage"
)

type Config struct {
	Addr string // e.g. ":8080"

	Service *service.Service
	Pinger  storage.Pinger          // optional; used by /health and /ready
	Breaker *storage.CircuitBreaker // optional; reported by /health
	Backend string                  // storage backend name, for /health

	MaxUploadBytes int64 // 0 means no limit
	RateLimit      int   // requests per minute per client IP; 0 disables
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that sets those headers.
	TrustProxy bool

	Version string
	Commit  string
	Logger  *Logger // defaults to DefaultLogger
}

type Server struct {
	httpServer *http.Server

	svc            *service.Service
	pinger         storage.Pinger
	breaker        *storage.CircuitBreaker
	backend        string
	maxUploadBytes int64
	trustProxy     bool
	version        string

	log     *Logger
	metrics *Metrics
	limiter *rateLimiter
}

func New(cfg Config) *Server {
	s := &Server{
		svc:            cfg.Service,
		pinger:         cfg.Pinger,
		breaker:        cfg.Breaker,
		backend:        cfg.Backend,
		maxUploadBytes: cfg.MaxUploadBytes,
		trustProxy:     cfg.TrustProxy,
		version:        cfg.Version,
		log:            cfg.Logger,
		metrics:        NewMetrics(cfg.Version, cfg.Commit),
	}
	if s.log == nil {
		s.log = DefaultLogger
	}

	mux := http.NewServeMux()

	// Word counter API
	mux.HandleFunc("POST /wordcounter/countwords", s.handleCountWords)
	mux.HandleFunc("GET "+storage.ResultPath+"{fileName}", s.handleGetCountResult)
	mux.HandleFunc("POST "+storage.ResultPath+"{fileName}", s.handleGetCountResult)
	mux.HandleFunc("GET "+storage.ResultPath+"{$}", s.handleGetCountResult)
	mux.HandleFunc("POST "+storage.ResultPath+"{$}", s.handleGetCountResult)

	// Operations
	mux.HandleFunc("GET /health", s.HandleHealth)
	mux.HandleFunc("GET /ready", s.HandleReady)
	mux.HandleFunc("GET /live", s.HandleLive)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Wrap middleware: requestID -> logging -> security -> rate limit -> gzip -> mux
	var handler http.Handler = mux
	handler = CompressionMiddleware(handler)
	if cfg.RateLimit > 0 {
		s.limiter = newRateLimiter(cfg.RateLimit, time.Minute)
		s.limiter.trustProxy = cfg.TrustProxy
		handler = s.limiter.middleware(handler)
	}
	handler = securityHeadersMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("http_listening", map[string]interface{}{
		"addr":    ln.Addr().String(),
		"version": s.version,
	})
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.close()
	}
	return s.httpServer.Shutdown(ctx)
}
