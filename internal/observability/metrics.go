package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	signupCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_directory",
		Subsystem: "roster",
		Name:      "signups_total",
		Help:      "Number of accepted signups per activity.",
	}, []string{"activity"})

	unregisterCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_directory",
		Subsystem: "roster",
		Name:      "unregistrations_total",
		Help:      "Number of accepted unregistrations per activity.",
	}, []string{"activity"})

	rejectedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_directory",
		Subsystem: "roster",
		Name:      "rejected_total",
		Help:      "Number of roster operations rejected, labeled by operation and reason.",
	}, []string{"operation", "reason"})

	rosterSizeGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "activity_directory",
		Subsystem: "roster",
		Name:      "participants",
		Help:      "Current number of participants per activity.",
	}, []string{"activity"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activity_directory",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"code", "method"})
)

func init() {
	prometheus.MustRegister(signupCounter, unregisterCounter, rejectedCounter, rosterSizeGauge, requestDuration)
}

// RecordSignup counts an accepted signup.
func RecordSignup(activity string) {
	signupCounter.WithLabelValues(activity).Inc()
}

// RecordUnregister counts an accepted unregistration.
func RecordUnregister(activity string) {
	unregisterCounter.WithLabelValues(activity).Inc()
}

// RecordRejected counts a roster operation that failed its precondition.
func RecordRejected(operation, reason string) {
	rejectedCounter.WithLabelValues(operation, reason).Inc()
}

// RecordRosterSize updates the roster gauge for an activity.
func RecordRosterSize(activity string, size int) {
	rosterSizeGauge.WithLabelValues(activity).Set(float64(size))
}

// InstrumentHandler observes request latency by status code and method.
func InstrumentHandler(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(requestDuration, next)
}

// Handler exposes the default registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
