package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Searches        *prometheus.CounterVec
	APIErrors       *prometheus.CounterVec
	RequestSeconds  *prometheus.HistogramVec
	PlacesProcessed *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Searches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "vicinity_searches_total",
			Help: "Total number of nearby search cycles by outcome.",
		}, []string{"outcome"}),
		APIErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "vicinity_provider_api_errors_total",
			Help: "Total number of errors received from the places provider API.",
		}, []string{"operation"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vicinity_provider_request_duration_seconds",
			Help:    "Duration of requests to the places provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		PlacesProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "vicinity_places_processed_total",
			Help: "Places returned by the provider, labeled by what the filter did with them.",
		}, []string{"result"}),
		ActiveSessions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "vicinity_active_sessions",
			Help: "Current number of live search sessions.",
		}),
	}
}
