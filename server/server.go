// Package server serves token metadata and wallet portfolios over HTTP.
package server

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tranvictor/nftstake/observability"
	"github.com/tranvictor/nftstake/portfolio"
)

// Portfolio is satisfied by *portfolio.Service.
type Portfolio interface {
	Owned(ctx context.Context, owner string) ([]portfolio.Card, error)
	Staked(ctx context.Context, owner string) ([]portfolio.Card, error)
	Rewards(ctx context.Context, owner string) (portfolio.Rewards, error)
	Token(ctx context.Context, id *big.Int) (portfolio.Card, error)
}

type Config struct {
	// RateLimit is requests per second allowed per client, <= 0 disables
	// limiting.
	RateLimit      float64
	Burst          int
	RequestTimeout time.Duration
}

type Server struct {
	cfg     Config
	svc     Portfolio
	metrics *observability.Metrics
	logger  *zap.Logger
	limiter *RateLimiter

	router http.Handler
}

func New(cfg Config, svc Portfolio, metrics *observability.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = time.Minute
	}
	s := &Server{
		cfg:     cfg,
		svc:     svc,
		metrics: metrics,
		logger:  logger,
	}
	if cfg.RateLimit > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit, cfg.Burst)
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.observe)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/v1", func(api chi.Router) {
		if s.limiter != nil {
			api.Use(s.limiter.Middleware)
		}
		api.Use(chimw.Timeout(s.cfg.RequestTimeout))
		api.Get("/tokens/{id}", s.getToken)
		api.Route("/accounts/{address}", func(acc chi.Router) {
			acc.Get("/owned", s.getOwned)
			acc.Get("/staked", s.getStaked)
			acc.Get("/rewards", s.getRewards)
		})
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
