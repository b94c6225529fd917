package server

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/gmolate/anonimizarpy/internal/observability/metrics"
)

// Router wires the HTTP routes, middleware and server lifecycle.
type Router struct {
	config    *Config
	handlers  *Handlers
	logger    *logrus.Logger
	collector *metrics.Collector
}

// NewRouter creates a router.
func NewRouter(config *Config, handlers *Handlers, collector *metrics.Collector, logger *logrus.Logger) *Router {
	if config == nil {
		config = NewDefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Router{config: config, handlers: handlers, logger: logger, collector: collector}
}

// SetupRoutes builds the mux router with all routes and middleware.
func (rt *Router) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.Use(RecoveryMiddleware(rt.logger))
	r.Use(LoggingMiddleware(rt.logger))
	r.Use(MetricsMiddleware(rt.collector))

	if rt.collector != nil {
		r.Handle("/metrics", promhttp.HandlerFor(rt.collector.Registry(),
			promhttp.HandlerOpts{})).Methods("GET")
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", rt.handlers.Health).Methods("GET")
	api.HandleFunc("/anonymize", rt.handlers.Anonymize).Methods("POST")
	api.HandleFunc("/inspect", rt.handlers.Inspect).Methods("POST")

	return r
}

// Start runs the HTTP server until the context is cancelled, then
// shuts down gracefully.
func (rt *Router) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:           rt.config.GetAddress(),
		Handler:        rt.SetupRoutes(),
		ReadTimeout:    rt.config.Server.ReadTimeout,
		WriteTimeout:   rt.config.Server.WriteTimeout,
		MaxHeaderBytes: rt.config.Server.MaxHeaderBytes,
	}

	go func() {
		rt.logger.WithFields(logrus.Fields{
			"addr": server.Addr,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rt.logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	<-ctx.Done()

	rt.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.config.Server.WriteTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
