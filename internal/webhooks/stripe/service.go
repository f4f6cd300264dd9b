package stripewebhook

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v84"

	"github.com/flowmazonhq/flowmazon-backend/internal/checkout"
	"github.com/flowmazonhq/flowmazon-backend/internal/orders"
	"github.com/flowmazonhq/flowmazon-backend/pkg/enums"
	pkgerrors "github.com/flowmazonhq/flowmazon-backend/pkg/errors"
)

type orderCreator interface {
	CreateFromCart(ctx context.Context, input orders.PaymentConfirmedInput) (*orders.View, error)
}

// ServiceParams bundles the dependencies for the Stripe webhook handler.
type ServiceParams struct {
	Orders orderCreator
	Logger zerolog.Logger
}

// Service converts Stripe payment events into fulfilled orders.
type Service struct {
	orders orderCreator
	logger zerolog.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service required")
	}
	return &Service{
		orders: params.Orders,
		logger: params.Logger,
	}, nil
}

// HandleEvent routes a verified Stripe event. Events that carry no payment
// confirmation, or that were already fulfilled, resolve to nil so Stripe
// stops redelivering them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		return s.fulfillCheckoutSession(ctx, &session)
	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
		}
		return s.fulfillPaymentIntent(ctx, &intent)
	default:
		return nil
	}
}

func (s *Service) fulfillCheckoutSession(ctx context.Context, session *stripe.CheckoutSession) error {
	if session == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session is required")
	}
	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		// Completed sessions with deferred payment methods settle later via
		// async_payment_succeeded.
		return nil
	}

	paymentRef := session.ID
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		paymentRef = session.PaymentIntent.ID
	}
	return s.fulfill(ctx, session.Metadata, paymentRef, string(session.Currency))
}

func (s *Service) fulfillPaymentIntent(ctx context.Context, intent *stripe.PaymentIntent) error {
	if intent == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent is required")
	}
	return s.fulfill(ctx, intent.Metadata, intent.ID, string(intent.Currency))
}

func (s *Service) fulfill(ctx context.Context, metadata map[string]string, paymentRef, currency string) error {
	userID, cartID, err := identityFromMetadata(metadata)
	if err != nil {
		return err
	}

	order, err := s.orders.CreateFromCart(ctx, orders.PaymentConfirmedInput{
		UserID:     userID,
		CartID:     cartID,
		PaymentRef: paymentRef,
		Currency:   normalizeCurrency(currency),
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStateConflict {
			// The payment reference is already fulfilled; a redelivered
			// event changes nothing.
			s.logger.Info().Str("payment_ref", paymentRef).Msg("skipping already fulfilled payment event")
			return nil
		}
		return err
	}
	if order == nil {
		// The cart was empty or already cleared. Acknowledge so Stripe
		// stops retrying.
		s.logger.Info().Str("payment_ref", paymentRef).Msg("payment event matched no cart contents")
		return nil
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_ref", paymentRef).
		Msg("order fulfilled from stripe event")
	return nil
}

func identityFromMetadata(metadata map[string]string) (uuid.UUID, uuid.UUID, error) {
	userID, err := uuid.Parse(metadata[checkout.MetadataUserID])
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "user id missing from event metadata")
	}
	cartID, err := uuid.Parse(metadata[checkout.MetadataCartID])
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id missing from event metadata")
	}
	return userID, cartID, nil
}

func normalizeCurrency(raw string) enums.Currency {
	candidate := enums.Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if candidate.IsValid() {
		return candidate
	}
	return enums.CurrencyUSD
}
