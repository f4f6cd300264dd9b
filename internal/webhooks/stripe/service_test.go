package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v84"

	"github.com/flowmazonhq/flowmazon-backend/internal/checkout"
	"github.com/flowmazonhq/flowmazon-backend/internal/orders"
	"github.com/flowmazonhq/flowmazon-backend/pkg/enums"
	pkgerrors "github.com/flowmazonhq/flowmazon-backend/pkg/errors"
)

func newTestService(t *testing.T, creator *stubOrderCreator) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Orders: creator,
		Logger: zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc
}

func checkoutSessionEvent(t *testing.T, session *stripe.CheckoutSession) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	return &stripe.Event{
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestService_HandleCheckoutSessionCompleted(t *testing.T) {
	userID := uuid.New()
	cartID := uuid.New()
	creator := &stubOrderCreator{order: &orders.View{ID: uuid.New()}}
	svc := newTestService(t, creator)

	event := checkoutSessionEvent(t, &stripe.CheckoutSession{
		ID:            "cs_test_123",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_test_456"},
		Currency:      stripe.CurrencyUSD,
		Metadata: map[string]string{
			checkout.MetadataUserID: userID.String(),
			checkout.MetadataCartID: cartID.String(),
		},
	})

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(creator.inputs) != 1 {
		t.Fatalf("expected one order creation, got %d", len(creator.inputs))
	}
	got := creator.inputs[0]
	if got.UserID != userID || got.CartID != cartID {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if got.PaymentRef != "pi_test_456" {
		t.Fatalf("expected payment intent id as ref, got %s", got.PaymentRef)
	}
	if got.Currency != enums.CurrencyUSD {
		t.Fatalf("expected USD currency, got %s", got.Currency)
	}
}

func TestService_HandleUnpaidCheckoutSessionIsNoOp(t *testing.T) {
	creator := &stubOrderCreator{}
	svc := newTestService(t, creator)

	event := checkoutSessionEvent(t, &stripe.CheckoutSession{
		ID:            "cs_test_unpaid",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
	})

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(creator.inputs) != 0 {
		t.Fatalf("expected no order creation for unpaid session")
	}
}

func TestService_HandlePaymentIntentSucceeded(t *testing.T) {
	userID := uuid.New()
	cartID := uuid.New()
	creator := &stubOrderCreator{order: &orders.View{ID: uuid.New()}}
	svc := newTestService(t, creator)

	raw, _ := json.Marshal(&stripe.PaymentIntent{
		ID:       "pi_test_789",
		Currency: stripe.CurrencyEUR,
		Metadata: map[string]string{
			checkout.MetadataUserID: userID.String(),
			checkout.MetadataCartID: cartID.String(),
		},
	})
	event := &stripe.Event{
		Type: stripe.EventTypePaymentIntentSucceeded,
		Data: &stripe.EventData{Raw: raw},
	}

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(creator.inputs) != 1 {
		t.Fatalf("expected one order creation, got %d", len(creator.inputs))
	}
	if creator.inputs[0].PaymentRef != "pi_test_789" {
		t.Fatalf("expected intent id as ref, got %s", creator.inputs[0].PaymentRef)
	}
	if creator.inputs[0].Currency != enums.CurrencyEUR {
		t.Fatalf("expected EUR currency, got %s", creator.inputs[0].Currency)
	}
}

func TestService_AlreadyFulfilledPaymentResolves(t *testing.T) {
	creator := &stubOrderCreator{
		err: pkgerrors.New(pkgerrors.CodeStateConflict, "payment reference already fulfilled"),
	}
	svc := newTestService(t, creator)

	event := checkoutSessionEvent(t, &stripe.CheckoutSession{
		ID:            "cs_test_dup",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: map[string]string{
			checkout.MetadataUserID: uuid.NewString(),
			checkout.MetadataCartID: uuid.NewString(),
		},
	})

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected duplicate fulfillment to resolve, got %v", err)
	}
}

func TestService_EmptyCartResolves(t *testing.T) {
	creator := &stubOrderCreator{order: nil}
	svc := newTestService(t, creator)

	event := checkoutSessionEvent(t, &stripe.CheckoutSession{
		ID:            "cs_test_empty",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: map[string]string{
			checkout.MetadataUserID: uuid.NewString(),
			checkout.MetadataCartID: uuid.NewString(),
		},
	})

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected empty cart to resolve, got %v", err)
	}
	if len(creator.inputs) != 1 {
		t.Fatalf("expected creation to be attempted once")
	}
}

func TestService_MissingMetadataRejected(t *testing.T) {
	creator := &stubOrderCreator{}
	svc := newTestService(t, creator)

	event := checkoutSessionEvent(t, &stripe.CheckoutSession{
		ID:            "cs_test_orphan",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
	})

	err := svc.HandleEvent(context.Background(), event)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(creator.inputs) != 0 {
		t.Fatalf("expected no order creation without metadata")
	}
}

func TestService_UnhandledEventTypeIgnored(t *testing.T) {
	creator := &stubOrderCreator{}
	svc := newTestService(t, creator)

	event := &stripe.Event{
		Type: stripe.EventTypeChargeRefunded,
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected unhandled event to resolve, got %v", err)
	}
	if len(creator.inputs) != 0 {
		t.Fatalf("expected no order creation")
	}
}

func TestIdempotencyGuardMarksAndReleases(t *testing.T) {
	store := &stubIdempotencyStore{values: map[string]string{}}
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}

	seen, err := guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if seen {
		t.Fatalf("expected first delivery to be fresh")
	}

	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if !seen {
		t.Fatalf("expected redelivery to be flagged")
	}

	if err := guard.Release(context.Background(), "evt_1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("mark after release: %v", err)
	}
	if seen {
		t.Fatalf("expected released event to be claimable again")
	}
}

type stubOrderCreator struct {
	order  *orders.View
	err    error
	inputs []orders.PaymentConfirmedInput
}

func (s *stubOrderCreator) CreateFromCart(ctx context.Context, input orders.PaymentConfirmedInput) (*orders.View, error) {
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

type stubIdempotencyStore struct {
	values map[string]string
}

func (s *stubIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *stubIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = "1"
	return true, nil
}

func (s *stubIdempotencyStore) WebhookEventKey(provider, eventID string) string {
	return "fm:webhook:" + provider + ":" + eventID
}

func (s *stubIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}
