package webhooks

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paystackwebhook "github.com/tiimbooktu/artmarket-backend/internal/webhooks/paystack"
	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/logger"
	"github.com/tiimbooktu/artmarket-backend/pkg/metrics"
	"github.com/tiimbooktu/artmarket-backend/pkg/paystack"
)

const testWebhookSecret = "sk_test_webhook_secret"

type stubQueue struct {
	events []paystackwebhook.Event
	err    error
}

func (q *stubQueue) Enqueue(event paystackwebhook.Event) error {
	if q.err != nil {
		return q.err
	}
	q.events = append(q.events, event)
	return nil
}

func newWebhookRequest(t *testing.T, body []byte, sign bool) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paystack", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sign {
		req.Header.Set("x-paystack-signature", paystack.Signature(testWebhookSecret, body))
	}
	return req
}

func chargeSuccessBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"event": "charge.success",
		"data": map[string]any{
			"reference": "Tiimbooktu_abc123def456",
			"amount":    40000,
			"status":    "success",
		},
	})
	require.NoError(t, err)
	return body
}

func TestPaystackWebhookQueuesSignedEvent(t *testing.T) {
	queue := &stubQueue{}
	handler := PaystackWebhook(queue, testWebhookSecret, metrics.NewWebhookMetrics(nil), logger.New(logger.Options{ServiceName: "test"}))

	rec := httptest.NewRecorder()
	handler(rec, newWebhookRequest(t, chargeSuccessBody(t), true))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, queue.events, 1)
	assert.Equal(t, "charge.success", queue.events[0].Event)
}

func TestPaystackWebhookRejectsMissingSignature(t *testing.T) {
	queue := &stubQueue{}
	handler := PaystackWebhook(queue, testWebhookSecret, metrics.NewWebhookMetrics(nil), logger.New(logger.Options{ServiceName: "test"}))

	rec := httptest.NewRecorder()
	handler(rec, newWebhookRequest(t, chargeSuccessBody(t), false))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, queue.events)
}

func TestPaystackWebhookRejectionAuditsClaimedEmail(t *testing.T) {
	queue := &stubQueue{}
	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &logs})
	handler := PaystackWebhook(queue, testWebhookSecret, metrics.NewWebhookMetrics(nil), logg)

	body, err := json.Marshal(map[string]any{
		"event": "charge.success",
		"data": map[string]any{
			"reference": "Tiimbooktu_forged",
			"customer":  map[string]any{"email": "payer@example.com"},
		},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler(rec, newWebhookRequest(t, body, false))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, queue.events)
	assert.Contains(t, logs.String(), `"claimed_email":"payer@example.com"`)
	assert.Contains(t, logs.String(), "webhook signature rejected")
}

func TestPaystackWebhookRejectsTamperedBody(t *testing.T) {
	queue := &stubQueue{}
	handler := PaystackWebhook(queue, testWebhookSecret, metrics.NewWebhookMetrics(nil), logger.New(logger.Options{ServiceName: "test"}))

	body := chargeSuccessBody(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paystack", bytes.NewReader(append(body, ' ')))
	req.Header.Set("x-paystack-signature", paystack.Signature(testWebhookSecret, body))

	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, queue.events)
}

func TestPaystackWebhookRejectsMalformedJSON(t *testing.T) {
	queue := &stubQueue{}
	handler := PaystackWebhook(queue, testWebhookSecret, metrics.NewWebhookMetrics(nil), logger.New(logger.Options{ServiceName: "test"}))

	body := []byte("{not json")
	rec := httptest.NewRecorder()
	handler(rec, newWebhookRequest(t, body, true))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, queue.events)
}

func TestPaystackWebhookSurfacesQueueBackpressure(t *testing.T) {
	queue := &stubQueue{err: pkgerrors.New(pkgerrors.CodeDependency, "webhook queue is full")}
	handler := PaystackWebhook(queue, testWebhookSecret, metrics.NewWebhookMetrics(nil), logger.New(logger.Options{ServiceName: "test"}))

	rec := httptest.NewRecorder()
	handler(rec, newWebhookRequest(t, chargeSuccessBody(t), true))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
