package checkout

import (
	"github.com/google/uuid"

	"github.com/flowmazonhq/flowmazon-backend/internal/orders"
	"github.com/flowmazonhq/flowmazon-backend/pkg/types"
)

// SessionResult points the client at Stripe's hosted checkout page.
type SessionResult struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// IntentResult hands the client a payment intent secret for on-site payment
// collection.
type IntentResult struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	AmountCents     int64  `json:"amount_cents"`
}

// ChargeInput carries the fields for a synchronous direct charge. The cart
// is resolved from the user, never trusted from the client.
type ChargeInput struct {
	UserID          uuid.UUID
	PaymentMethodID string
	ShippingAddress *types.Address
	BillingAddress  *types.Address
}

// ChargeResult reports the outcome of a direct charge. Exactly one of Order
// or the requires-action pair is populated.
type ChargeResult struct {
	Order           *orders.View `json:"order,omitempty"`
	RequiresAction  bool         `json:"requires_action,omitempty"`
	PaymentIntentID string       `json:"payment_intent_id,omitempty"`
	ClientSecret    string       `json:"client_secret,omitempty"`
}
