package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "acharam_orders_placed_total",
		Help: "Total number of orders placed",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acharam_orders_failed_total",
		Help: "Total number of rejected checkouts",
	}, []string{"reason"})

	OrderRevenuePaise = promauto.NewCounter(prometheus.CounterOpts{
		Name: "acharam_order_revenue_paise_total",
		Help: "Sum of order totals in paise",
	})

	OrderStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acharam_order_status_transitions_total",
		Help: "Order status changes applied by admins",
	}, []string{"from", "to"})

	CouponEvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acharam_coupon_evaluations_total",
		Help: "Coupon evaluations by result",
	}, []string{"result"})

	CartsResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acharam_carts_resolved_total",
		Help: "Cart resolutions by owner kind",
	}, []string{"owner"})

	PaymentIntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acharam_payment_intents_total",
		Help: "Payment intents requested from the gateway",
	}, []string{"result"})

	PaymentGatewayLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "acharam_payment_gateway_latency_seconds",
		Help:    "Latency of payment gateway calls",
		Buckets: prometheus.DefBuckets,
	})

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
