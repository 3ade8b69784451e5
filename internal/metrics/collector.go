package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventRefreshStarted   EventType = "refresh_started"
	EventRefreshSucceeded EventType = "refresh_succeeded"
	EventRefreshFailed    EventType = "refresh_failed"
	EventRefreshDiscarded EventType = "refresh_discarded"
	EventServiceStatus    EventType = "service_status"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Trigger    string
	Service    string
	Accessible bool
	Duration   time.Duration
}

type Collector struct {
	eventCh    chan MetricEvent
	metrics    *Metrics
	prometheus *Prometheus
	logger     *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh:    make(chan MetricEvent, bufferSize),
		metrics:    NewMetrics(),
		prometheus: NewPrometheus(),
		logger:     logger,
	}
}

// Emit queues an event without blocking. Events are dropped when the
// buffer is full.
func (c *Collector) Emit(event MetricEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case c.eventCh <- event:
	default:
		c.logger.Debug("Metrics buffer full, dropping event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventRefreshStarted:
		c.metrics.RecordStart(event.Trigger)
		c.prometheus.refreshes.WithLabelValues(event.Trigger).Inc()

	case EventRefreshSucceeded:
		c.metrics.RecordSuccess(event.Duration, event.Timestamp)
		c.prometheus.outcomes.WithLabelValues("success").Inc()
		c.prometheus.duration.Observe(event.Duration.Seconds())
		c.prometheus.lastSuccess.Set(float64(event.Timestamp.Unix()))

	case EventRefreshFailed:
		c.metrics.RecordFailure(event.Duration)
		c.prometheus.outcomes.WithLabelValues("failure").Inc()
		c.prometheus.duration.Observe(event.Duration.Seconds())

	case EventRefreshDiscarded:
		c.metrics.RecordDiscarded()
		c.prometheus.outcomes.WithLabelValues("discarded").Inc()

	case EventServiceStatus:
		c.metrics.RecordServiceStatus(event.Service, event.Accessible)
		c.prometheus.setService(event.Service, event.Accessible)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
