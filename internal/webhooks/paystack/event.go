package paystackwebhook

import "encoding/json"

// EventChargeSuccess is the only event type the reconciler acts on.
const EventChargeSuccess = "charge.success"

// Event is the outer envelope Paystack posts to the webhook endpoint.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ChargeData is the charge.success payload subset the reconciler needs.
// Amount is in the currency's minor unit.
type ChargeData struct {
	Reference     string         `json:"reference"`
	Amount        int64          `json:"amount"`
	Status        string         `json:"status"`
	Channel       string         `json:"channel"`
	PaidAt        string         `json:"paid_at"`
	Authorization *Authorization `json:"authorization"`
	Customer      *Customer      `json:"customer"`
}

// Authorization carries the reusable card token Paystack returns on success.
type Authorization struct {
	AuthorizationCode string `json:"authorization_code"`
	Bin               string `json:"bin"`
	Last4             string `json:"last4"`
	ExpMonth          string `json:"exp_month"`
	ExpYear           string `json:"exp_year"`
	CardType          string `json:"card_type"`
	Bank              string `json:"bank"`
	Channel           string `json:"channel"`
	Reusable          bool   `json:"reusable"`
	Signature         string `json:"signature"`
}

// Customer identifies the payer on the gateway side.
type Customer struct {
	Email string `json:"email"`
}
