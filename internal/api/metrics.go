package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderbot_decisions_total",
		Help: "Order decisions made, by echelon position.",
	}, []string{"position"})

	orderQuantity = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orderbot_order_quantity",
		Help:    "Emitted order quantities, by echelon position.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"position"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderbot_sessions_active",
		Help: "Sessions currently held in memory.",
	})
)
