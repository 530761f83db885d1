package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/telepsych-site/internal/appointments"
	"github.com/wolfman30/telepsych-site/internal/citypages"
	httpmiddleware "github.com/wolfman30/telepsych-site/internal/http/middleware"
	"github.com/wolfman30/telepsych-site/internal/identity"
	"github.com/wolfman30/telepsych-site/internal/leads"
	"github.com/wolfman30/telepsych-site/internal/livechat"
	"github.com/wolfman30/telepsych-site/internal/observability/metrics"
	"github.com/wolfman30/telepsych-site/internal/reviews"
	"github.com/wolfman30/telepsych-site/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	Authorizer          *identity.Authorizer
	LeadsHandler        *leads.Handler
	ReviewsHandler      *reviews.Handler
	CityPagesHandler    *citypages.Handler
	AppointmentsHandler *appointments.Handler
	ChatHandler         *livechat.Handler
	Metrics             *metrics.SiteMetrics
	MetricsHandler      http.Handler
	HealthChecks        map[string]HealthCheck
	CORSAllowedOrigins  []string

	// SubmitLimiter throttles public form submissions (leads, reviews, chat).
	SubmitLimiter *httpmiddleware.RateLimiter

	// StaticDir serves the built site and admin SPA when set.
	StaticDir string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(cfg.Metrics.Middleware)

	authz := cfg.Authorizer
	if authz == nil {
		authz = identity.NewAuthorizer("", 0)
	}
	r.Use(identity.Authenticate(authz))
	throttle := func(next http.Handler) http.Handler { return next }
	if cfg.SubmitLimiter != nil {
		throttle = cfg.SubmitLimiter.Middleware
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthHandler(cfg.HealthChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Get("/__user_info__", identity.UserInfoHandler(authz))

		public.Route("/api", func(api chi.Router) {
			api.Use(middleware.NoCache)

			if cfg.LeadsHandler != nil {
				api.With(throttle).Post("/leads", cfg.LeadsHandler.CreateLead)
			}
			if cfg.ReviewsHandler != nil {
				api.Get("/reviews", cfg.ReviewsHandler.List)
				api.With(throttle).Post("/reviews", cfg.ReviewsHandler.Submit)
			}
			if cfg.CityPagesHandler != nil {
				api.Get("/city-pages/{cityName}", cfg.CityPagesHandler.Get)
			}
			if cfg.AppointmentsHandler != nil {
				api.Route("/appointments", cfg.AppointmentsHandler.Routes)
			}
			if cfg.ChatHandler != nil {
				api.Route("/chat", func(chat chi.Router) {
					chat.Get("/ws", cfg.ChatHandler.HandleWebSocket)
					chat.With(throttle).Post("/messages", cfg.ChatHandler.HandleMessage)
					chat.Get("/sessions/{sessionID}/history", cfg.ChatHandler.HandleHistory)
				})
			}

			// Admin dashboard lead management
			if cfg.LeadsHandler != nil {
				api.Route("/contact/leads", func(admin chi.Router) {
					admin.Use(identity.RequireRole(authz, identity.RoleAdmin, cfg.Logger))
					admin.Get("/", cfg.LeadsHandler.ListLeads)
					admin.Get("/metrics", cfg.LeadsHandler.LeadMetrics)
					admin.Put("/{leadID}", cfg.LeadsHandler.UpdateLead)
				})
			}
		})
	})

	// Admin routes (explicit admin role required)
	r.Route("/admin/api", func(admin chi.Router) {
		admin.Use(middleware.NoCache)
		admin.Use(identity.RequireRole(authz, identity.RoleAdmin, cfg.Logger))
		if cfg.AppointmentsHandler != nil {
			admin.Get("/appointments", cfg.AppointmentsHandler.ListAppointments)
		}
		if cfg.ReviewsHandler != nil {
			admin.Post("/reviews/{reviewID}/approve", cfg.ReviewsHandler.Approve)
		}
		if cfg.CityPagesHandler != nil {
			admin.Put("/city-pages/{cityName}", cfg.CityPagesHandler.Put)
		}
	})

	if cfg.StaticDir != "" {
		r.NotFound(spaHandler(cfg.StaticDir))
	}

	return r
}
