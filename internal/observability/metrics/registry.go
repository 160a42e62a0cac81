package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sweep metrics track whole monitor runs
var (
	// RunDuration measures how long a sweep over all sources takes
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rss_monitor_run_duration_seconds",
			Help:    "Duration of a full sweep over all sources in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	// RunsTotal counts sweeps by outcome
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rss_monitor_runs_total",
			Help: "Total number of sweeps by status",
		},
		[]string{"status"},
	)

	// LastSuccessTimestamp records when the last sweep completed without a fatal error
	LastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rss_monitor_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful sweep",
		},
	)

	// NewEntriesTotal counts entries recorded as seen
	NewEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rss_monitor_new_entries_total",
			Help: "Total number of entries delivered and recorded as seen",
		},
	)
)

// Feed metrics track per-source fetch behaviour
var (
	// SourceFetchTotal counts fetch outcomes per source
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rss_monitor_source_fetch_total",
			Help: "Total number of source fetches by result",
		},
		[]string{"source", "result"},
	)

	// ArticlesFetchedTotal counts articles returned by the fetcher per source
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rss_monitor_articles_fetched_total",
			Help: "Total number of articles fetched from each source",
		},
		[]string{"source"},
	)
)

// Delivery metrics track outbound webhook calls
var (
	// DeliveriesTotal counts webhook deliveries by channel, message kind and status
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rss_monitor_deliveries_total",
			Help: "Total number of webhook deliveries",
		},
		[]string{"channel", "kind", "status"},
	)

	// DeliveryDuration measures webhook request latency
	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rss_monitor_delivery_duration_seconds",
			Help:    "Webhook delivery duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"channel"},
	)
)
