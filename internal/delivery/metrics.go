package delivery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var deliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "teams_notifier_delivery_duration_seconds",
		Help:    "Duration of Teams webhook HTTP requests.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	},
	[]string{"status"},
)
