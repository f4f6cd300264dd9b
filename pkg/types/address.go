package types

import "strings"

// Address is the shipping/billing snapshot stored on orders. Persisted as
// jsonb; orders keep their own copy so later edits to a user's address never
// rewrite history.
type Address struct {
	Name       string  `json:"name,omitempty"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state,omitempty"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

// Validate reports whether the address carries the minimum fields needed for
// fulfillment.
func (a Address) Validate() bool {
	if strings.TrimSpace(a.Line1) == "" {
		return false
	}
	if strings.TrimSpace(a.City) == "" {
		return false
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		return false
	}
	return strings.TrimSpace(a.Country) != ""
}
