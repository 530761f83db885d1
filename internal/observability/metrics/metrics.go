package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "telepsych"

// SiteMetrics exposes counters/histograms for the site's HTTP API and funnels.
type SiteMetrics struct {
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	leadsTotal     *prometheus.CounterVec
	bookingsTotal  *prometheus.CounterVec
	analyticsTotal *prometheus.CounterVec
	chatMessages   *prometheus.CounterVec
}

func NewSiteMetrics(reg prometheus.Registerer) *SiteMetrics {
	m := &SiteMetrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status",
		}, []string{"route", "method", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "submitted_total",
			Help:      "Lead submissions by outcome and service type",
		}, []string{"outcome", "service_type"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Appointment wizard transitions by target state",
		}, []string{"state"}),
		analyticsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "events_total",
			Help:      "Tracked funnel events by name and category",
		}, []string{"event", "category"}),
		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Live chat messages by sender and matched topic",
		}, []string{"sender", "topic"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.httpRequests, m.httpLatency, m.leadsTotal, m.bookingsTotal, m.analyticsTotal, m.chatMessages)
	return m
}

func (m *SiteMetrics) ObserveLead(outcome, serviceType string) {
	if m == nil {
		return
	}
	if serviceType == "" {
		serviceType = "unspecified"
	}
	m.leadsTotal.WithLabelValues(outcome, serviceType).Inc()
}

func (m *SiteMetrics) ObserveBookingTransition(state string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(state).Inc()
}

func (m *SiteMetrics) ObserveEvent(event, category string) {
	if m == nil {
		return
	}
	m.analyticsTotal.WithLabelValues(event, category).Inc()
}

func (m *SiteMetrics) ObserveChatMessage(sender, topic string) {
	if m == nil {
		return
	}
	if topic == "" {
		topic = "none"
	}
	m.chatMessages.WithLabelValues(sender, topic).Inc()
}

// Middleware records request counts and latency keyed by the chi route
// pattern so path parameters don't explode label cardinality.
func (m *SiteMetrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpLatency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
