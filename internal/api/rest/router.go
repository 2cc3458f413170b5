package rest

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/internal/api/rest/handlers"
	customMiddleware "github.com/itarutakasaka-glitch/rental-crm-sub000/internal/api/rest/middleware"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router holds the HTTP router and dependencies
type Router struct {
	router         *chi.Mux
	logger         *logger.Logger
	handlers       *handlers.Handlers
	dispatchSecret string
	metrics        *metrics.Metrics
}

// NewRouter creates a new HTTP router
func NewRouter(log *logger.Logger, h *handlers.Handlers, dispatchSecret string, m *metrics.Metrics) *Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Metrics middleware
	r.Use(customMiddleware.Metrics(m))

	// Security middleware
	r.Use(customMiddleware.SecurityHeaders())
	r.Use(customMiddleware.RequestSizeLimit(customMiddleware.GetMaxRequestSize()))

	// CORS - Configure allowed origins from environment
	allowedOrigins := []string{"http://localhost:3000"} // Default for development
	if originsEnv := os.Getenv("ALLOWED_ORIGINS"); originsEnv != "" {
		allowedOrigins = strings.Split(originsEnv, ",")
		for i := range allowedOrigins {
			allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
		}
	}

	// Security: Never allow "*" with credentials enabled
	allowCredentials := true
	for _, origin := range allowedOrigins {
		if origin == "*" {
			log.Warn("CORS: Wildcard origin '*' detected with credentials enabled. Disabling credentials for security.")
			allowCredentials = false
			break
		}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", customMiddleware.OrganizationHeader, customMiddleware.DispatchSecretHeader},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	}))

	return &Router{
		router:         r,
		logger:         log,
		handlers:       h,
		dispatchSecret: dispatchSecret,
		metrics:        m,
	}
}

// SetupRoutes configures all API routes
func (r *Router) SetupRoutes() {
	// Prometheus metrics endpoint (no auth required)
	r.router.Handle("/metrics", promhttp.Handler())

	// Health endpoints (no auth required)
	r.router.Get("/health", r.handlers.Health.Health)
	r.router.Get("/ready", r.handlers.Health.Ready)

	// API v1 - organization-scoped CRM surface
	r.router.Route("/api/v1", func(router chi.Router) {
		router.Use(customMiddleware.RequireOrganization())
		router.Use(customMiddleware.RateLimitWithConfig(100, 200, r.logger))

		// Workflow definitions
		router.Route("/workflows", func(router chi.Router) {
			router.Get("/", r.handlers.Workflow.List)
			router.Post("/", r.handlers.Workflow.Create)
			router.Get("/{id}", r.handlers.Workflow.Get)
			router.Put("/{id}", r.handlers.Workflow.Update)
			router.Delete("/{id}", r.handlers.Workflow.Delete)
			router.Post("/{id}/activate", r.handlers.Workflow.Activate)
			router.Post("/{id}/deactivate", r.handlers.Workflow.Deactivate)
		})

		// Message templates
		router.Route("/templates", func(router chi.Router) {
			router.Get("/", r.handlers.Template.List)
			router.Post("/", r.handlers.Template.Create)
			router.Get("/{id}", r.handlers.Template.Get)
			router.Put("/{id}", r.handlers.Template.Update)
			router.Delete("/{id}", r.handlers.Template.Delete)
		})

		// Runs
		router.Post("/customers/{customerID}/runs", r.handlers.Run.Start)
		router.Route("/runs", func(router chi.Router) {
			router.Get("/", r.handlers.Run.List)
			router.Get("/{id}", r.handlers.Run.GetTrace)
			router.Post("/{id}/stop", r.handlers.Run.Stop)
		})

		// Customer events (reply webhooks, LINE follows, visit/call logs)
		router.Post("/events", r.handlers.Event.Trigger)
	})

	// Sweep triggers for the external cron caller
	r.router.Route("/internal", func(router chi.Router) {
		router.Use(customMiddleware.RequireDispatchSecret(r.dispatchSecret, r.logger))
		router.Post("/dispatch", r.handlers.Sweep.Dispatch)
		router.Post("/idle-sweep", r.handlers.Sweep.IdleSweep)
	})
}

// Handler returns the http.Handler
func (r *Router) Handler() http.Handler {
	return r.router
}
