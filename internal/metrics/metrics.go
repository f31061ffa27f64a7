// Package metrics exposes the production line's Prometheus metrics,
// grounded on the teacher project's internal/metrics/metrics.go.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueueDepth is the current number of orders waiting in the FIFO.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "burger_queue_depth",
		Help: "The number of orders currently waiting in the shared FIFO",
	})

	// OrdersGeneratedTotal counts every order the generator has emitted.
	OrdersGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "burger_orders_generated_total",
		Help: "The total number of orders generated",
	})

	// OrdersProcessedTotal counts completed orders, by station id.
	OrdersProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "burger_orders_processed_total",
		Help: "The total number of orders completed, by station",
	}, []string{"station_id"})

	// OrdersTimeoutTotal counts orders dropped after exceeding the
	// dispatcher's retry bound. These are intentionally excluded from
	// total_processed and total_generated (see DESIGN.md) but are
	// still worth observing.
	OrdersTimeoutTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "burger_orders_timeout_total",
		Help: "The total number of orders dropped after exceeding the assignment retry bound",
	})

	// AlertsTotal counts refill alerts raised by the monitor, by
	// severity.
	AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "burger_alerts_total",
		Help: "The total number of refill alerts raised, by severity",
	}, []string{"severity"})

	// DispenserLevel is the current quantity of one dispenser.
	DispenserLevel = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "burger_dispenser_level",
		Help: "The current quantity remaining in one station's dispenser",
	}, []string{"station_id", "ingredient"})

	// StationProcessingDuration is the time a station spends
	// assembling one order, from assignment to completion.
	StationProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "burger_station_processing_duration_seconds",
		Help:    "Time spent assembling one order at a station",
		Buckets: prometheus.DefBuckets,
	}, []string{"station_id"})
)
