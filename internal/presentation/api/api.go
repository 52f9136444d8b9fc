package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/hilthontt/burnbox/docs"
	"github.com/hilthontt/burnbox/internal/infrastructure/configs"
	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
	"github.com/hilthontt/burnbox/internal/infrastructure/metrics"
	"github.com/hilthontt/burnbox/internal/infrastructure/ratelimiter"
	auditHandler "github.com/hilthontt/burnbox/internal/presentation/handler/audit"
	healthHandler "github.com/hilthontt/burnbox/internal/presentation/handler/health"
	sessionHandler "github.com/hilthontt/burnbox/internal/presentation/handler/session"
	statsHandler "github.com/hilthontt/burnbox/internal/presentation/handler/stats"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	serviceName    = "burnbox-http"
	requestTimeout = 30 * time.Second
)

type Application struct {
	config         configs.Config
	sessionHandler *sessionHandler.Handler
	healthHandler  *healthHandler.Handler
	statsHandler   *statsHandler.Handler
	// auditHandler is nil when the audit trail is disabled
	auditHandler *auditHandler.Handler
	logger       logging.Logger
	ratelimiter  ratelimiter.Limiter
	metrics      *metrics.Metrics
}

func NewApplication(
	config configs.Config,
	sessionHandler *sessionHandler.Handler,
	healthHandler *healthHandler.Handler,
	statsHandler *statsHandler.Handler,
	auditHandler *auditHandler.Handler,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
	metrics *metrics.Metrics,
) *Application {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Application{
		config:         config,
		sessionHandler: sessionHandler,
		healthHandler:  healthHandler,
		statsHandler:   statsHandler,
		auditHandler:   auditHandler,
		logger:         logger,
		ratelimiter:    ratelimiter,
		metrics:        metrics,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(app.metrics.InstrumentHandler)

	r.Use(app.enableCors)
	r.Use(app.rateLimiterMiddleware)

	r.Get("/ws", app.sessionHandler.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)

		r.Get("/stats", app.statsHandler.GetStats)

		if app.auditHandler != nil {
			r.Route("/audit", func(r chi.Router) {
				r.Get("/rooms/{roomId}", app.auditHandler.GetRoomLogs)
				r.Get("/events", app.auditHandler.GetEventLogs)
			})
		}
	})

	r.Handle("/metrics", app.metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return otelhttp.NewHandler(r, serviceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// Run serves mux until SIGINT, SIGTERM or ctx is done, then drains
// in-flight requests. Hijacked websocket connections are not waited for.
func (app *Application) Run(ctx context.Context, mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		reason := "context done"
		select {
		case s := <-quit:
			reason = s.String()
		case <-ctx.Done():
		}

		app.healthHandler.MarkUnhealthy()
		app.logger.Info(logging.General, logging.Shutdown, "shutting down server", map[logging.ExtraKey]any{
			"Reason": reason,
		})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.HTTP.ShutdownTimeout)
		defer cancel()

		shutdown <- srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"Addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"Addr": srv.Addr,
	})

	return nil
}
