package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_added_total",
		Help: "Total number of items added to carts",
	})

	CartsConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carts_confirmed_total",
		Help: "Total number of carts committed successfully",
	})

	CartsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carts_failed_total",
		Help: "Total number of cart commits that failed",
	}, []string{"reason"})

	ReservationsConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_confirmed_total",
		Help: "Total number of reservations confirmed",
	})

	ReservationsCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_cancelled_total",
		Help: "Total number of reservations cancelled",
	})

	CapacityReserveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "capacity_reserve_latency_seconds",
		Help:    "Latency of the reserve phase of a cart commit",
		Buckets: prometheus.DefBuckets,
	})

	CapacityReservationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capacity_reservations_failed_total",
		Help: "Total number of failed seat reservations",
	}, []string{"reason"})

	PaymentsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_completed_total",
		Help: "Total number of completed payment transactions",
	})

	BalanceCreditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "balance_credits_total",
		Help: "Total number of balance top-ups",
	})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of notifications sent by the events worker",
	}, []string{"event_type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
