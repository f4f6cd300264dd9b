package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/flowmazonhq/flowmazon-backend/internal/cart"
	"github.com/flowmazonhq/flowmazon-backend/internal/orders"
	"github.com/flowmazonhq/flowmazon-backend/pkg/config"
	"github.com/flowmazonhq/flowmazon-backend/pkg/enums"
	pkgerrors "github.com/flowmazonhq/flowmazon-backend/pkg/errors"
)

// Metadata keys stamped on every Stripe object so the webhook can route the
// payment back to its cart.
const (
	MetadataCartID = "cart_id"
	MetadataUserID = "user_id"
)

// Service drives the payment boundary: hosted sessions, payment intents, and
// synchronous direct charges.
type Service interface {
	StartSession(ctx context.Context, userID uuid.UUID) (*SessionResult, error)
	CreateIntent(ctx context.Context, userID uuid.UUID) (*IntentResult, error)
	DirectCharge(ctx context.Context, input ChargeInput) (*ChargeResult, error)
}

type service struct {
	carts   cart.Service
	orders  orders.Service
	gateway StripeCheckoutClient
	cfg     config.CheckoutConfig
	baseURL string
}

// NewService builds the checkout service.
func NewService(carts cart.Service, ordersSvc orders.Service, gateway StripeCheckoutClient, cfg config.CheckoutConfig, baseURL string) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if ordersSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("stripe gateway required")
	}
	return &service{
		carts:   carts,
		orders:  ordersSvc,
		gateway: gateway,
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// StartSession opens a Stripe-hosted checkout page for the user's cart.
func (s *service) StartSession(ctx context.Context, userID uuid.UUID) (*SessionResult, error) {
	view, err := s.loadChargeableCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(view.Items))
	for _, item := range view.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.cfg.Currency),
				UnitAmount: stripe.Int64(toCents(item.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(s.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.baseURL + "/cart"),
	}
	params.AddMetadata(MetadataCartID, view.ID.String())
	params.AddMetadata(MetadataUserID, userID.String())

	session, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating stripe checkout session")
	}
	return &SessionResult{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	}, nil
}

// CreateIntent mints a payment intent for on-site card collection. The order
// itself is created later by the webhook once the intent succeeds.
func (s *service) CreateIntent(ctx context.Context, userID uuid.UUID) (*IntentResult, error) {
	view, err := s.loadChargeableCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	amount := toCents(view.Subtotal)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(s.cfg.Currency),
	}
	params.AddMetadata(MetadataCartID, view.ID.String())
	params.AddMetadata(MetadataUserID, userID.String())

	intent, err := s.gateway.CreatePaymentIntent(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating stripe payment intent")
	}
	return &IntentResult{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		AmountCents:     amount,
	}, nil
}

// DirectCharge confirms a payment intent inline and, on success, runs order
// creation synchronously. A charge that captured but failed to produce an
// order is surfaced as a reconciliation error rather than retried, since the
// money has already moved.
func (s *service) DirectCharge(ctx context.Context, input ChargeInput) (*ChargeResult, error) {
	if strings.TrimSpace(input.PaymentMethodID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}

	view, err := s.loadChargeableCart(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	amount := toCents(view.Subtotal)

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(s.cfg.Currency),
		PaymentMethod: stripe.String(input.PaymentMethodID),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String(string(stripe.PaymentIntentAutomaticPaymentMethodsAllowRedirectsNever)),
		},
	}
	params.AddMetadata(MetadataCartID, view.ID.String())
	params.AddMetadata(MetadataUserID, input.UserID.String())

	intent, err := s.gateway.CreatePaymentIntent(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirming stripe payment intent")
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		order, err := s.orders.CreateFromCart(ctx, orders.PaymentConfirmedInput{
			UserID:          input.UserID,
			CartID:          view.ID,
			PaymentRef:      intent.ID,
			Currency:        enums.Currency(strings.ToUpper(s.cfg.Currency)),
			ShippingAddress: input.ShippingAddress,
			BillingAddress:  input.BillingAddress,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeReconciliation, err, "payment captured but order creation failed")
		}
		if order == nil {
			return nil, pkgerrors.New(pkgerrors.CodeReconciliation, "payment captured but the cart was already empty")
		}
		return &ChargeResult{Order: order}, nil

	case stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresConfirmation:
		return &ChargeResult{
			RequiresAction:  true,
			PaymentIntentID: intent.ID,
			ClientSecret:    intent.ClientSecret,
		}, nil

	default:
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("payment intent ended in state %s", intent.Status))
	}
}

func (s *service) loadChargeableCart(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	view, err := s.carts.GetCart(ctx, cart.ForUser(userID))
	if err != nil {
		return nil, err
	}
	if view == nil || len(view.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if toCents(view.Subtotal) < s.cfg.MinChargeCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("order total must be at least %d cents", s.cfg.MinChargeCents))
	}
	return view, nil
}

// toCents converts a decimal price to integer cents, rounding half away from
// zero the way the storefront prices are displayed.
func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
