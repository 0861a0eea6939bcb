package types

import (
	"database/sql/driver"
	"encoding/json"
)

// ShippingDetails is the free-form address block captured at order creation.
type ShippingDetails struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Value serializes the shipping details to JSON.
func (s ShippingDetails) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan decodes JSONB into the shipping details struct.
func (s *ShippingDetails) Scan(value interface{}) error {
	if value == nil {
		*s = ShippingDetails{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, s)
}
