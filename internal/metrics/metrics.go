package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "predictor_provider_request_duration_seconds",
		Help:    "Latency of stats and injury provider requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "endpoint"})

	ProviderRequestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predictor_provider_request_errors_total",
		Help: "Failed stats and injury provider requests",
	}, []string{"provider", "endpoint"})

	DefenseCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predictor_defense_cache_lookups_total",
		Help: "Defense profile cache lookups by result",
	}, []string{"result"})

	Predictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predictor_predictions_total",
		Help: "Completed player analyses by confidence tier",
	}, []string{"tier"})

	SkippedAnalyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predictor_skipped_analyses_total",
		Help: "Player analyses skipped, by reason",
	}, []string{"reason"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "predictor_scan_duration_seconds",
		Help:    "Wall time of a full slate scan",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 900},
	})
)

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "predictor_http_request_duration_seconds",
	Help:    "Latency of HTTP API requests",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route", "status"})
