package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for storefront observability,
// centered on the checkout funnel.
type Metrics struct {
	// Checkout funnel
	CheckoutStarted   prometheus.Counter
	CheckoutStep      *prometheus.CounterVec
	CheckoutCompleted prometheus.Counter
	CheckoutFailed    *prometheus.CounterVec

	// Payments
	PaymentAttempts  prometheus.Counter
	PaymentSucceeded prometheus.Counter
	PaymentFailed    *prometheus.CounterVec

	// Degraded collaborators
	CollaboratorFallback *prometheus.CounterVec

	// Orders
	OrdersCreated prometheus.Counter
	OrderValue    prometheus.Histogram

	// Email delivery
	EmailSent   prometheus.Counter
	EmailFailed prometheus.Counter
}

// NewMetrics creates and registers all metrics. A nil registerer uses
// the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	namespace := "nook"
	subsystem := "checkout"

	return &Metrics{
		CheckoutStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "started_total",
			Help:      "Total checkout attempts entering the state machine",
		}),
		CheckoutStep: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "step_total",
				Help:      "Total entries into each checkout state",
			},
			[]string{"state"},
		),
		CheckoutCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "completed_total",
			Help:      "Total checkouts reaching the completed state",
		}),
		CheckoutFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "failed_total",
				Help:      "Total checkouts reaching the failed state",
			},
			[]string{"state"}, // state the failure happened in
		),
		PaymentAttempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "attempts_total",
			Help:      "Total payment intent creations attempted",
		}),
		PaymentSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "succeeded_total",
			Help:      "Total payments confirmed successfully",
		}),
		PaymentFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "failed_total",
				Help:      "Total failed payments",
			},
			[]string{"reason"},
		),
		CollaboratorFallback: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "collaborator_fallback_total",
				Help:      "Total degraded collaborator calls that continued via fallback",
			},
			[]string{"collaborator"}, // fiscal, order, email
		),
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Total orders persisted",
		}),
		OrderValue: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "value_rsd",
			Help:      "Order totals in RSD",
			Buckets:   prometheus.ExponentialBuckets(500, 2, 10),
		}),
		EmailSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "sent_total",
			Help:      "Total order confirmation emails sent",
		}),
		EmailFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "failed_total",
			Help:      "Total order confirmation emails that failed to send",
		}),
	}
}
