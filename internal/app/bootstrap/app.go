package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/telepsych-site/internal/analytics"
	"github.com/wolfman30/telepsych-site/internal/api/router"
	"github.com/wolfman30/telepsych-site/internal/appointments"
	"github.com/wolfman30/telepsych-site/internal/citypages"
	appconfig "github.com/wolfman30/telepsych-site/internal/config"
	httpmiddleware "github.com/wolfman30/telepsych-site/internal/http/middleware"
	"github.com/wolfman30/telepsych-site/internal/identity"
	"github.com/wolfman30/telepsych-site/internal/leads"
	"github.com/wolfman30/telepsych-site/internal/livechat"
	"github.com/wolfman30/telepsych-site/internal/notify"
	"github.com/wolfman30/telepsych-site/internal/observability/metrics"
	"github.com/wolfman30/telepsych-site/internal/reviews"
	"github.com/wolfman30/telepsych-site/internal/scheduling"
	"github.com/wolfman30/telepsych-site/pkg/logging"
)

const sweepInterval = time.Minute

// App is the wired HTTP application plus the resources it owns.
type App struct {
	Handler  http.Handler
	Sessions *appointments.SessionStore
	Limiter  *httpmiddleware.RateLimiter

	pool  *pgxpool.Pool
	redis *redis.Client
}

// Deps are optional pre-built resources. Nil fields are built from config.
type Deps struct {
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Email    notify.EmailSender
	Registry *prometheus.Registry
}

// BuildApp wires repositories, stores, handlers and the router. Without
// DATABASE_URL the repositories are in-memory; without REDIS_ADDR the city
// pages and chat transcripts are too.
func BuildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, deps Deps) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	if deps.Pool == nil {
		deps.Pool = BuildPostgresPool(ctx, cfg.DatabaseURL, logger)
	}
	if deps.Redis == nil {
		deps.Redis = BuildRedisClient(ctx, cfg, logger, true)
	}
	if deps.Email == nil {
		email, err := BuildEmailSender(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		deps.Email = email
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
		deps.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	site := metrics.NewSiteMetrics(deps.Registry)
	tracker := analytics.Multi{analytics.NewLogClient(logger), analytics.NewPrometheusClient(site)}
	notifier := notify.NewService(deps.Email, cfg.PracticeNotifyEmail, logger)
	if !notifier.Enabled() {
		logger.Warn("practice notifications disabled: PRACTICE_NOTIFY_EMAIL not set")
	}

	var (
		leadRepo   leads.Repository
		reviewRepo reviews.Repository
		apptRepo   appointments.Repository
	)
	if deps.Pool != nil {
		leadRepo = leads.NewPostgresRepository(deps.Pool)
		reviewRepo = reviews.NewPostgresRepository(deps.Pool)
		apptRepo = appointments.NewPostgresRepository(deps.Pool)
		logger.Info("using postgres repositories")
	} else {
		leadRepo = leads.NewInMemoryRepository()
		reviewRepo = reviews.NewInMemoryRepository()
		apptRepo = appointments.NewInMemoryRepository()
		logger.Warn("DATABASE_URL not set or unreachable; using in-memory repositories")
	}

	var (
		cityStore  citypages.Store
		transcript livechat.TranscriptStore
	)
	if deps.Redis != nil {
		cityStore = citypages.NewRedisStore(deps.Redis)
		transcript = livechat.NewRedisTranscriptStore(deps.Redis, cfg.ChatHistoryTTL)
	} else {
		cityStore = citypages.NewMemoryStore()
		transcript = livechat.NewMemoryTranscriptStore()
	}

	loc := cfg.PracticeLocation()
	now := func() time.Time { return time.Now().In(loc) }
	provider, submitter := buildBooking(cfg, apptRepo, notifier, now, logger)
	newWizard := func() *scheduling.Wizard {
		return scheduling.NewWizard(provider, submitter,
			scheduling.WithAnalytics(tracker),
			scheduling.WithObserver(site),
			scheduling.WithClock(now),
		)
	}
	sessions := appointments.NewSessionStore(cfg.SessionTTL)
	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	handler := router.New(&router.Config{
		Logger:     logger,
		Authorizer: identity.NewAuthorizer(cfg.AdminJWTSecret, cfg.AdminTokenTTL),
		LeadsHandler: leads.NewHandler(leadRepo, logger,
			leads.WithNotifier(notifier),
			leads.WithAnalytics(tracker),
			leads.WithObserver(site),
		),
		ReviewsHandler:      reviews.NewHandler(reviewRepo, logger),
		CityPagesHandler:    citypages.NewHandler(cityStore, cfg.PracticePhone, logger),
		AppointmentsHandler: appointments.NewHandler(sessions, newWizard, provider, apptRepo, loc, logger),
		ChatHandler: livechat.NewHandler(livechat.NewResponder(cfg.PracticePhone), transcript, logger,
			livechat.WithAnalytics(tracker),
			livechat.WithObserver(site),
			livechat.WithReplyDelay(cfg.ChatReplyDelay),
		),
		Metrics:            site,
		MetricsHandler:     promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}),
		HealthChecks:       healthChecks(deps.Pool, deps.Redis),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SubmitLimiter:      limiter,
		StaticDir:          cfg.StaticDir,
	})

	return &App{
		Handler:  handler,
		Sessions: sessions,
		Limiter:  limiter,
		pool:     deps.Pool,
		redis:    deps.Redis,
	}, nil
}

// buildBooking returns the demo pair (random slots, always-succeeding
// submitter) when BOOKING_SIMULATE is set, else calendar availability backed
// by stored appointments.
func buildBooking(cfg *appconfig.Config, repo appointments.Repository, notifier appointments.Notifier, now func() time.Time, logger *logging.Logger) (scheduling.AvailabilityProvider, scheduling.Submitter) {
	if cfg.BookingSimulate {
		logger.Info("booking runs in simulated mode", "submit_delay", cfg.BookingSubmitDelay.String())
		return scheduling.NewRandomAvailability(cfg.AvailabilitySeed),
			scheduling.SimulatedSubmitter{Delay: cfg.BookingSubmitDelay, Now: now}
	}
	return scheduling.NewCalendarAvailability(repo, now),
		appointments.NewRepositorySubmitter(repo, notifier, logger)
}

func healthChecks(pool *pgxpool.Pool, client *redis.Client) map[string]router.HealthCheck {
	checks := map[string]router.HealthCheck{}
	if pool != nil {
		checks["postgres"] = pool.Ping
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	return checks
}

// RunBackground sweeps idle booking sessions and rate-limit buckets until ctx ends.
func (a *App) RunBackground(ctx context.Context) {
	go a.Sessions.Run(ctx, sweepInterval)
	go a.Limiter.Run(ctx, 5*sweepInterval)
}

// Close releases the database pool and Redis client.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
