package webhooks

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/tiimbooktu/artmarket-backend/api/responses"
	paystackwebhook "github.com/tiimbooktu/artmarket-backend/internal/webhooks/paystack"
	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/logger"
	"github.com/tiimbooktu/artmarket-backend/pkg/metrics"
	"github.com/tiimbooktu/artmarket-backend/pkg/paystack"
)

const signatureHeader = "x-paystack-signature"

type eventQueue interface {
	Enqueue(event paystackwebhook.Event) error
}

// PaystackWebhook verifies the gateway signature and queues the event for
// finalization. The 200 ack goes out as soon as the event is queued so the
// gateway never waits on database work.
func PaystackWebhook(queue eventQueue, secretKey string, wm *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if queue == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook queue unavailable"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		signature := strings.TrimSpace(r.Header.Get(signatureHeader))
		if !paystack.ValidSignature(secretKey, body, signature) {
			wm.IncRejected("invalid_signature")
			if logg != nil {
				fields := map[string]any{
					"remote_addr": r.RemoteAddr,
					"body_bytes":  len(body),
				}
				if email := claimedCustomerEmail(body); email != "" {
					fields["claimed_email"] = email
				}
				logg.Warn(logg.WithFields(ctx, fields), "webhook signature rejected")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid signature"))
			return
		}

		var event paystackwebhook.Event
		if err := json.Unmarshal(body, &event); err != nil {
			wm.IncRejected("malformed_payload")
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}

		if err := queue.Enqueue(event); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, "webhook event queued")
		}
		responses.WriteSuccess(w, map[string]bool{"status": true})
	}
}

// claimedCustomerEmail pulls the customer email out of an unverified payload
// for the rejection audit trail. The payload failed signature checks, so the
// value is whatever the sender claimed, not an authenticated identity.
func claimedCustomerEmail(body []byte) string {
	var event paystackwebhook.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return ""
	}
	var data paystackwebhook.ChargeData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return ""
	}
	if data.Customer == nil {
		return ""
	}
	return strings.TrimSpace(data.Customer.Email)
}
