package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		},
		[]string{"membership"},
	)

	SubscriptionsRenewedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymdesk_subscriptions_renewed_total",
			Help: "Total number of subscription renewals",
		},
	)

	SubscriptionsCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymdesk_subscriptions_cancelled_total",
			Help: "Total number of subscription cancellations",
		},
	)

	CheckInsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymdesk_checkins_total",
			Help: "Total number of member check-ins",
		},
	)

	PaymentsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymdesk_payments_recorded_total",
			Help: "Total number of payments recorded",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymdesk_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordSubscriptionCreated(membershipName string) {
	SubscriptionsCreatedTotal.WithLabelValues(membershipName).Inc()
}

func RecordSubscriptionRenewed() {
	SubscriptionsRenewedTotal.Inc()
}

func RecordSubscriptionCancelled() {
	SubscriptionsCancelledTotal.Inc()
}

func RecordCheckIn() {
	CheckInsTotal.Inc()
}

func RecordPayment() {
	PaymentsRecordedTotal.Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
