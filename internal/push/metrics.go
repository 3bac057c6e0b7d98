package push

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	deliveriesTotal *prometheus.CounterVec
	burstsTotal     prometheus.Counter
)

// InitMetrics registers the delivery counters with the default
// registry. Called once from main; when skipped (tests) the engine
// simply does not record metrics.
func InitMetrics() {
	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pushpress",
			Name:      "deliveries_total",
			Help:      "Push delivery attempts by outcome (success, failed, gone).",
		},
		[]string{"outcome"},
	)
	burstsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pushpress",
			Name:      "bursts_total",
			Help:      "Total number of fan-out bursts executed.",
		},
	)
	prometheus.MustRegister(deliveriesTotal, burstsTotal)
}

func observeDelivery(outcome string) {
	if deliveriesTotal != nil {
		deliveriesTotal.WithLabelValues(outcome).Inc()
	}
}

func observeBurst() {
	if burstsTotal != nil {
		burstsTotal.Inc()
	}
}
