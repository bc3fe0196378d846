// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pharmacare",
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pharmacare",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled.",
	}, []string{"method", "path", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pharmacare",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
	}, []string{"method", "path"})

	BillsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pharmacare",
		Subsystem: "billing",
		Name:      "bills_created_total",
		Help:      "Bills committed successfully.",
	})

	StockConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pharmacare",
		Subsystem: "billing",
		Name:      "stock_conflicts_total",
		Help:      "Bill attempts rejected for insufficient stock.",
	})

	JobsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pharmacare",
		Subsystem: "worker",
		Name:      "jobs_processed_total",
		Help:      "Async jobs handled, by type and outcome.",
	}, []string{"type", "outcome"})

	DLQSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pharmacare",
		Subsystem: "worker",
		Name:      "dlq_size",
		Help:      "Entries waiting in each dead letter queue.",
	}, []string{"queue"})

	RemindersNotified = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pharmacare",
		Subsystem: "reminders",
		Name:      "notified_total",
		Help:      "Reminder notifications enqueued.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPInFlight, HTTPRequests, HTTPDuration,
		BillsCreated, StockConflicts,
		JobsProcessed, DLQSize, RemindersNotified,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
