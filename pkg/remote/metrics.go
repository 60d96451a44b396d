package remote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cheatsheets",
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Catalog API calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cheatsheets",
			Subsystem: "remote",
			Name:      "request_duration_seconds",
			Help:      "Catalog API call latency including retries.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cheatsheets",
			Subsystem: "remote",
			Name:      "retries_total",
			Help:      "Catalog API attempts retried after a recoverable failure.",
		},
		[]string{"operation"},
	)
)

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsRecoverable(err):
		return "recoverable_error"
	default:
		return "error"
	}
}
