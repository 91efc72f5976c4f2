// Package httpapi serves the translator over HTTP and WebSocket.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/gotara"
	"github.com/ZaguanLabs/gotara/cache"
	"github.com/ZaguanLabs/gotara/internal/logger"
	"github.com/ZaguanLabs/gotara/processor"
)

// Config configures a Server.
type Config struct {
	Addr        string
	Translator  *gotara.Translator // needs an HTML processor for /v1/translate/html
	Logger      zerolog.Logger
	RateLimit   RateLimitConfig
	CORSOrigins []string
	// Workers bounds the goroutines used by batch requests. Zero means
	// GOMAXPROCS.
	Workers int
	// SlowRequest marks requests at least this slow as warnings.
	SlowRequest time.Duration
	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration
	// Purger, when set, has its expired entries dropped every
	// PurgeInterval (default 10m) while the server runs.
	Purger        cache.Purger
	PurgeInterval time.Duration
}

// Server is a chi router plus the stdlib http.Server running it.
type Server struct {
	cfg     Config
	log     zerolog.Logger
	tr      *gotara.Translator
	limiter *ClientLimiter
	mux     *chi.Mux
	srv     *http.Server
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.PurgeInterval <= 0 {
		cfg.PurgeInterval = 10 * time.Minute
	}
	tr := cfg.Translator
	if tr == nil {
		tr = gotara.NewTranslator(gotara.WithProcessor(processor.NewHTMLProcessor()))
	}

	s := &Server{
		cfg:     cfg,
		log:     logger.Named(cfg.Logger, "http"),
		tr:      tr,
		limiter: NewClientLimiter(cfg.RateLimit),
	}
	s.mux = s.routes()
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestID)
	r.Use(accessLog(s.log, s.cfg.SlowRequest))
	r.Use(recoverJSON(s.log))
	r.Use(corsHandler(s.cfg.CORSOrigins))
	r.Use(chimw.SetHeader("Server", gotara.UserAgent()))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limiter.Middleware)
		r.Post("/translate", s.handleTranslate)
		r.Post("/translate/batch", s.handleBatch)
		r.Post("/translate/html", s.handleHTML)
		r.Get("/rules", s.handleRules)
		r.Get("/detect", s.handleDetect)
		r.Get("/live", s.handleLive)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
	})
	return r
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.mux }

// Addr returns the listening address.
func (s *Server) Addr() string { return s.cfg.Addr }

// Run serves until ctx is cancelled, then shuts down gracefully. Idle rate
// limit buckets are swept once a minute while running, and the cache is
// purged if a Purger is configured.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("http listening")
		errCh <- s.srv.ListenAndServe()
	}()

	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()

	var purge <-chan time.Time
	if s.cfg.Purger != nil {
		t := time.NewTicker(s.cfg.PurgeInterval)
		defer t.Stop()
		purge = t.C
	}

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-sweep.C:
			if n := s.limiter.Sweep(); n > 0 {
				s.log.Debug().Int("dropped", n).Msg("rate limit buckets swept")
			}
		case <-purge:
			s.purgeCache()
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
			defer cancel()
			s.log.Info().Msg("http shutting down")
			return s.srv.Shutdown(shutdownCtx)
		}
	}
}

func (s *Server) purgeCache() {
	n, err := s.cfg.Purger.Purge()
	if err != nil {
		s.log.Warn().Err(err).Msg("cache purge failed")
		return
	}
	if n > 0 {
		s.log.Debug().Int64("purged", n).Msg("expired cache entries removed")
	}
}
