package events

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_directory",
		Subsystem: "events",
		Name:      "delivered_total",
		Help:      "Number of roster events successfully published to Kafka.",
	}, []string{"topic", "event_type"})

	failedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_directory",
		Subsystem: "events",
		Name:      "failed_total",
		Help:      "Number of roster events that could not be published.",
	}, []string{"topic", "event_type"})
)

func init() {
	prometheus.MustRegister(deliveredCounter, failedCounter)
}
