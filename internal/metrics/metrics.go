// Package metrics holds the Prometheus instrumentation surface for HTTP
// requests, lifecycle transitions, and scheduler ticks.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AssetTransitionsTotal *prometheus.CounterVec

	SchedulerTickDuration *prometheus.HistogramVec
	SchedulerTickAffected *prometheus.CounterVec
	SchedulerTickFailures *prometheus.CounterVec

	SensorAlertsTotal  *prometheus.CounterVec
	WebsocketSessions  prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_http_requests_total",
				Help: "Total HTTP requests by route, method, and status code.",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assetledger_http_request_duration_seconds",
				Help:    "HTTP request latency by route and method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		AssetTransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_asset_transitions_total",
				Help: "Total asset lifecycle transitions by from/to state.",
			},
			[]string{"from", "to"},
		),
		SchedulerTickDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assetledger_scheduler_tick_duration_seconds",
				Help:    "Duration of each scheduler job run.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
			},
			[]string{"job"},
		),
		SchedulerTickAffected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_scheduler_tick_affected_total",
				Help: "Records affected per scheduler job run.",
			},
			[]string{"job"},
		),
		SchedulerTickFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_scheduler_tick_failures_total",
				Help: "Total scheduler job runs that returned an error.",
			},
			[]string{"job"},
		),
		SensorAlertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetledger_sensor_alerts_total",
				Help: "Total sensor alerts raised by severity.",
			},
			[]string{"severity"},
		),
		WebsocketSessions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "assetledger_websocket_sessions",
				Help: "Current number of connected notification websocket sessions.",
			},
		),
	}
}

func (m *Metrics) ObserveHTTPRequest(route, method, status string, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(durationSeconds)
}

func (m *Metrics) ObserveAssetTransition(from, to string) {
	m.AssetTransitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveSchedulerTick(job string, durationSeconds float64, affected int, err error) {
	m.SchedulerTickDuration.WithLabelValues(job).Observe(durationSeconds)
	m.SchedulerTickAffected.WithLabelValues(job).Add(float64(affected))
	if err != nil {
		m.SchedulerTickFailures.WithLabelValues(job).Inc()
	}
}

func (m *Metrics) ObserveSensorAlert(severity string) {
	m.SensorAlertsTotal.WithLabelValues(severity).Inc()
}
