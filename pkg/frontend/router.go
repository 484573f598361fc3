package frontend

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/reliablemail/pkg/httpserver"
	"github.com/dmitrymomot/reliablemail/pkg/logger"
)

// Option configures the router.
type Option func(*options)

type options struct {
	log      *slog.Logger
	gatherer prometheus.Gatherer
	checks   []httpserver.Check
}

// WithLogger sets the request and error logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithGatherer serves the gatherer on /metrics. Without it /metrics is not mounted.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(o *options) {
		o.gatherer = g
	}
}

// WithReadinessCheck adds a dependency checked by /ready.
func WithReadinessCheck(c httpserver.Check) Option {
	return func(o *options) {
		o.checks = append(o.checks, c)
	}
}

// NewRouter returns the ingress routes:
//
//	POST /        submit an email
//	GET  /health  liveness
//	GET  /ready   readiness
//	GET  /metrics Prometheus metrics
func NewRouter(enqueuer Enqueuer, cfg Config, opts ...Option) (http.Handler, error) {
	if enqueuer == nil {
		return nil, ErrEnqueuerNil
	}

	o := &options{log: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	log := logger.WithExtractors(o.log, requestIDAttr).With(logger.Component("frontend"))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, &ErrorDetail{Code: CodeNotFound, Message: http.StatusText(http.StatusNotFound)})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, &ErrorDetail{Code: CodeMethodNotAllowed, Message: http.StatusText(http.StatusMethodNotAllowed)})
	})

	submit := http.Handler(&submitHandler{enqueuer: enqueuer, cfg: cfg, log: log})
	if limiter := newSubmitLimiter(cfg.RateLimit, cfg.RateBurst); limiter != nil {
		submit = limiter.middleware(submit)
	}
	r.Method(http.MethodPost, "/", submit)
	r.Get("/health", httpserver.LivenessHandler())
	r.Get("/ready", httpserver.ReadinessHandler(log, cfg.ReadyTimeout, o.checks...))
	if o.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	}

	return r, nil
}
