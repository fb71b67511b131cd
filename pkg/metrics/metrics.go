package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsCreated the total number of committed bookings (counter)
	BookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookings",
			Name:      "created_total",
			Help:      "The total number of committed bookings",
		},
		[]string{"course"},
	)

	// BookingsFailed the total number of booking transactions that were rolled back (counter)
	BookingsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookings",
			Name:      "failed_total",
			Help:      "The total number of booking transactions that were rolled back",
		},
		[]string{"course", "reason"},
	)

	// DepositSessions the total number of checkout sessions created for deposits (counter)
	DepositSessions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "payments",
			Name:      "deposit_sessions_total",
			Help:      "The total number of checkout sessions created for deposits",
		},
	)

	// PaymentVerifications verification outcomes by processor status (counter)
	PaymentVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payments",
			Name:      "verifications_total",
			Help:      "Payment verifications by processor status",
		},
		[]string{"status"},
	)

	// DocumentUploads the total number of uploaded booking documents (counter)
	DocumentUploads = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "documents",
			Name:      "uploaded_total",
			Help:      "The total number of uploaded booking documents",
		},
	)
)
