package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "emptio_orders_created_total",
		Help: "Total number of orders successfully placed.",
	})

	StatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emptio_order_status_transitions_total",
		Help: "Total number of order status transitions, by target status.",
	},
		[]string{"status"},
	)

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "emptio_orders_cancelled_total",
		Help: "Total number of orders cancelled by customers.",
	})

	ReturnsRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "emptio_returns_requested_total",
		Help: "Total number of return requests accepted.",
	})

	EmailFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emptio_email_failures_total",
		Help: "Total number of transactional emails that failed to send.",
	},
		[]string{"kind"},
	)
)
