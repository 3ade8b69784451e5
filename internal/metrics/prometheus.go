package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus mirrors the collector's counters in a private registry.
type Prometheus struct {
	refreshes   *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
	serviceUp   *prometheus.GaugeVec

	registry *prometheus.Registry
	handler  http.Handler
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statusboard_refreshes_total",
				Help: "Refresh cycles started, by trigger",
			},
			[]string{"trigger"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statusboard_refresh_outcomes_total",
				Help: "Refresh cycles finished, by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "statusboard_refresh_duration_seconds",
				Help:    "Time from request dispatch to response handling",
				Buckets: prometheus.DefBuckets,
			},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "statusboard_last_success_timestamp_seconds",
				Help: "Unix time of the last successful refresh",
			},
		),
		serviceUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "statusboard_service_up",
				Help: "Last reported reachability per service (1 = online, 0 = offline)",
			},
			[]string{"service"},
		),
		registry: prometheus.NewRegistry(),
	}

	p.registry.MustRegister(p.refreshes, p.outcomes, p.duration, p.lastSuccess, p.serviceUp)
	p.handler = promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})

	return p
}

func (p *Prometheus) setService(service string, accessible bool) {
	if accessible {
		p.serviceUp.WithLabelValues(service).Set(1)
	} else {
		p.serviceUp.WithLabelValues(service).Set(0)
	}
}

func (p *Prometheus) Handler() http.Handler {
	return p.handler
}
