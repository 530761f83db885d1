// Package analytics carries funnel events (CTA clicks, booking steps, lead
// conversions) to whatever tracking backend is configured.
package analytics

import (
	"context"

	"github.com/wolfman30/telepsych-site/pkg/logging"
)

// Event categories used across the site.
const (
	CategoryBooking        = "Appointment Booking"
	CategoryConversion     = "Conversion"
	CategoryLeadGeneration = "Lead Generation"
)

// Event is a single tracked interaction.
type Event struct {
	Name     string
	Category string
	Label    string
	Value    int
}

// Client receives events at well-defined points. Implementations must not
// block the caller on a slow backend.
type Client interface {
	Track(ctx context.Context, evt Event)
}

// Noop discards every event.
type Noop struct{}

func (Noop) Track(context.Context, Event) {}

// LogClient writes events to the structured log.
type LogClient struct {
	logger *logging.Logger
}

func NewLogClient(logger *logging.Logger) *LogClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogClient{logger: logger}
}

func (c *LogClient) Track(ctx context.Context, evt Event) {
	c.logger.InfoContext(ctx, "analytics event",
		"event", evt.Name,
		"category", evt.Category,
		"label", evt.Label,
		"value", evt.Value,
	)
}

// EventObserver is the slice of the metrics registry the Prometheus client needs.
type EventObserver interface {
	ObserveEvent(event, category string)
}

// PrometheusClient counts events per name and category.
type PrometheusClient struct {
	observer EventObserver
}

func NewPrometheusClient(observer EventObserver) *PrometheusClient {
	return &PrometheusClient{observer: observer}
}

func (c *PrometheusClient) Track(_ context.Context, evt Event) {
	if c == nil || c.observer == nil {
		return
	}
	c.observer.ObserveEvent(evt.Name, evt.Category)
}

// Multi fans an event out to several clients.
type Multi []Client

func (m Multi) Track(ctx context.Context, evt Event) {
	for _, c := range m {
		if c != nil {
			c.Track(ctx, evt)
		}
	}
}

// OrNoop returns c, or Noop when c is nil.
func OrNoop(c Client) Client {
	if c == nil {
		return Noop{}
	}
	return c
}
