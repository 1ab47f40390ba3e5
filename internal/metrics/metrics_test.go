package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/subscriptions", "200", 0.05)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/subscriptions", "200"))
	assert.Equal(t, float64(1), count)
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/auth/login", "200", 0.1)
	RecordHTTPRequest("POST", "/auth/login", "200", 0.2)
	RecordHTTPRequest("POST", "/auth/login", "401", 0.05)

	successCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/auth/login", "200"))
	failCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/auth/login", "401"))

	assert.Equal(t, float64(2), successCount)
	assert.Equal(t, float64(1), failCount)
}

func TestRecordSubscriptionCreated(t *testing.T) {
	SubscriptionsCreatedTotal.Reset()

	RecordSubscriptionCreated("Gold")
	RecordSubscriptionCreated("Gold")
	RecordSubscriptionCreated("Silver")

	goldCount := testutil.ToFloat64(SubscriptionsCreatedTotal.WithLabelValues("Gold"))
	silverCount := testutil.ToFloat64(SubscriptionsCreatedTotal.WithLabelValues("Silver"))

	assert.Equal(t, float64(2), goldCount)
	assert.Equal(t, float64(1), silverCount)
}

func TestRecordSubscriptionLifecycleCounters(t *testing.T) {
	renewedBefore := testutil.ToFloat64(SubscriptionsRenewedTotal)
	cancelledBefore := testutil.ToFloat64(SubscriptionsCancelledTotal)

	RecordSubscriptionRenewed()
	RecordSubscriptionCancelled()

	assert.Equal(t, renewedBefore+1, testutil.ToFloat64(SubscriptionsRenewedTotal))
	assert.Equal(t, cancelledBefore+1, testutil.ToFloat64(SubscriptionsCancelledTotal))
}

func TestRecordCheckInAndPayment(t *testing.T) {
	checkInsBefore := testutil.ToFloat64(CheckInsTotal)
	paymentsBefore := testutil.ToFloat64(PaymentsRecordedTotal)

	RecordCheckIn()
	RecordPayment()

	assert.Equal(t, checkInsBefore+1, testutil.ToFloat64(CheckInsTotal))
	assert.Equal(t, paymentsBefore+1, testutil.ToFloat64(PaymentsRecordedTotal))
}

func TestRecordEmail(t *testing.T) {
	EmailsSentTotal.Reset()

	RecordEmail("renewal_reminder", "sent")
	RecordEmail("renewal_reminder", "failed")

	sent := testutil.ToFloat64(EmailsSentTotal.WithLabelValues("renewal_reminder", "sent"))
	failed := testutil.ToFloat64(EmailsSentTotal.WithLabelValues("renewal_reminder", "failed"))

	assert.Equal(t, float64(1), sent)
	assert.Equal(t, float64(1), failed)
}
