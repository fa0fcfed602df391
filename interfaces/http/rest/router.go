package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	"cloudmap-backend/application/commands/bus"
	"cloudmap-backend/application/ports"
	querybus "cloudmap-backend/application/queries/bus"
	"cloudmap-backend/interfaces/http/rest/docs"
	"cloudmap-backend/interfaces/http/rest/handlers"
	"cloudmap-backend/interfaces/http/rest/middleware"
	pkgerrors "cloudmap-backend/pkg/errors"
	"cloudmap-backend/pkg/observability"
	"cloudmap-backend/pkg/ratelimit"
)

// Options tunes the router. Zero values disable the optional parts.
type Options struct {
	ServiceName    string
	AllowedOrigins []string
	Tracing        bool

	// Metrics, when set, instruments requests and serves /metrics
	Metrics *observability.Collector

	// Limiter, when set, guards the routes that invoke the model
	Limiter         ratelimit.RateLimiter
	RateLimitCount  int
	RateLimitWindow time.Duration

	// Health, when set, backs /ready
	Health ports.HealthChecker
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	logger       *zap.Logger
	errorHandler *pkgerrors.ErrorHandler
	options      Options
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
	errorHandler *pkgerrors.ErrorHandler,
	options Options,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		logger:       logger,
		errorHandler: errorHandler,
		options:      options,
	}
}

// Setup configures all routes and middleware
//
// @title Cloudmap Architecture API
// @version 1.0
// @description Generates cloud architecture graphs and CDK code from a request text
// @BasePath /
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.options.Tracing {
		router.Use(observability.TracingMiddleware(rt.options.ServiceName))
	}
	if rt.options.Metrics != nil {
		router.Use(rt.options.Metrics.HTTPMiddleware)
	}

	origins := rt.options.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.options.Metrics != nil {
		router.Handle("/metrics", rt.options.Metrics.Handler())
	}
	router.Get("/docs/openapi.json", rt.apiDocs)

	h := handlers.NewArchitectureHandler(rt.commandBus, rt.queryBus, rt.logger, rt.errorHandler)
	limited := rt.rateLimit()

	router.Route("/architectures", func(r chi.Router) {
		r.With(limited).Post("/", h.CreateArchitecture)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetArchitecture)
			r.With(limited).Post("/code", h.GenerateCode)
			r.Get("/code/download", h.DownloadCode)
			r.Get("/export", h.ExportArchitecture)
			r.Get("/check", h.CheckArchitecture)
		})
	})

	// Paths used by the web client
	router.Route("/api", func(r chi.Router) {
		r.With(limited).Post("/generate", h.LegacyGenerate)
		r.With(limited).Post("/generate-cdk", h.LegacyGenerateCode)
		r.Get("/architecture/{id}", h.GetArchitecture)
		r.Get("/export-architecture/{id}", h.ExportArchitecture)
		r.Get("/download-cdk/{id}", h.DownloadCode)
	})

	return router
}

func (rt *Router) rateLimit() func(http.Handler) http.Handler {
	if rt.options.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RateLimit(
		rt.options.Limiter,
		rt.errorHandler,
		rt.logger,
		rt.options.RateLimitCount,
		rt.options.RateLimitWindow.String(),
	)
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck pings the store when it supports it
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.options.Health != nil {
		if err := rt.options.Health.Ping(req.Context()); err != nil {
			rt.errorHandler.Handle(w, req, pkgerrors.NewUnavailableError("store").WithCause(err))
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// apiDocs serves the generated OpenAPI document
func (rt *Router) apiDocs(w http.ResponseWriter, req *http.Request) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		rt.errorHandler.Handle(w, req, pkgerrors.NewInternalError("failed to render API docs").WithCause(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}
