package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/flowmazonhq/flowmazon-backend/internal/cart"
	"github.com/flowmazonhq/flowmazon-backend/internal/orders"
	"github.com/flowmazonhq/flowmazon-backend/pkg/config"
	"github.com/flowmazonhq/flowmazon-backend/pkg/enums"
	pkgerrors "github.com/flowmazonhq/flowmazon-backend/pkg/errors"
	"github.com/flowmazonhq/flowmazon-backend/pkg/pagination"
)

type stubCartService struct {
	view *cart.View
	err  error
}

func (s *stubCartService) GetCart(ctx context.Context, id cart.Identity) (*cart.View, error) {
	return s.view, s.err
}

func (s *stubCartService) SetItemQuantity(ctx context.Context, id cart.Identity, productID uuid.UUID, quantity int) (*cart.View, error) {
	return nil, errors.New("not implemented")
}

func (s *stubCartService) IncrementItem(ctx context.Context, id cart.Identity, productID uuid.UUID) (*cart.View, error) {
	return nil, errors.New("not implemented")
}

func (s *stubCartService) MergeOnLogin(ctx context.Context, userID uuid.UUID, sessionToken string) error {
	return errors.New("not implemented")
}

type stubOrdersService struct {
	created *orders.View
	err     error
	got     *orders.PaymentConfirmedInput
}

func (s *stubOrdersService) CreateFromCart(ctx context.Context, input orders.PaymentConfirmedInput) (*orders.View, error) {
	s.got = &input
	return s.created, s.err
}

func (s *stubOrdersService) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.Page, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrdersService) FindByID(ctx context.Context, requester uuid.UUID, isAdmin bool, orderID uuid.UUID) (*orders.View, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrdersService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*orders.View, error) {
	return nil, errors.New("not implemented")
}

type stubGateway struct {
	session       *stripe.CheckoutSession
	sessionErr    error
	sessionParams *stripe.CheckoutSessionParams
	intent        *stripe.PaymentIntent
	intentErr     error
	intentParams  *stripe.PaymentIntentParams
}

func (g *stubGateway) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	g.sessionParams = params
	return g.session, g.sessionErr
}

func (g *stubGateway) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	g.intentParams = params
	return g.intent, g.intentErr
}

func testCartView(cartID uuid.UUID) *cart.View {
	return &cart.View{
		ID: cartID,
		Items: []cart.ItemView{
			{
				ProductID: uuid.New(),
				Name:      "Desk Lamp",
				UnitPrice: decimal.RequireFromString("20.00"),
				Quantity:  1,
				LineTotal: decimal.RequireFromString("20.00"),
			},
			{
				ProductID: uuid.New(),
				Name:      "Mug",
				UnitPrice: decimal.RequireFromString("2.50"),
				Quantity:  2,
				LineTotal: decimal.RequireFromString("5.00"),
			},
		},
		Size:     3,
		Subtotal: decimal.RequireFromString("25.00"),
	}
}

func testConfig() config.CheckoutConfig {
	return config.CheckoutConfig{Currency: "usd", MinChargeCents: 50}
}

func newCheckoutService(t *testing.T, carts cart.Service, ordersSvc orders.Service, gateway StripeCheckoutClient) Service {
	t.Helper()
	svc, err := NewService(carts, ordersSvc, gateway, testConfig(), "https://shop.example.com/")
	require.NoError(t, err)
	return svc
}

func TestStartSessionBuildsLineItems(t *testing.T) {
	cartID := uuid.New()
	gateway := &stubGateway{session: &stripe.CheckoutSession{ID: "cs_1", URL: "https://stripe.test/cs_1"}}
	svc := newCheckoutService(t, &stubCartService{view: testCartView(cartID)}, &stubOrdersService{}, gateway)

	userID := uuid.New()
	result, err := svc.StartSession(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "cs_1", result.SessionID)
	assert.Equal(t, "https://stripe.test/cs_1", result.CheckoutURL)

	require.NotNil(t, gateway.sessionParams)
	require.Len(t, gateway.sessionParams.LineItems, 2)
	assert.EqualValues(t, 2000, *gateway.sessionParams.LineItems[0].PriceData.UnitAmount)
	assert.EqualValues(t, 250, *gateway.sessionParams.LineItems[1].PriceData.UnitAmount)
	assert.EqualValues(t, 2, *gateway.sessionParams.LineItems[1].Quantity)
	assert.Equal(t, cartID.String(), gateway.sessionParams.Metadata[MetadataCartID])
	assert.Equal(t, userID.String(), gateway.sessionParams.Metadata[MetadataUserID])
	assert.Contains(t, *gateway.sessionParams.SuccessURL, "https://shop.example.com/checkout/success")
}

func TestCreateIntentChargesSubtotal(t *testing.T) {
	cartID := uuid.New()
	gateway := &stubGateway{intent: &stripe.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}}
	svc := newCheckoutService(t, &stubCartService{view: testCartView(cartID)}, &stubOrdersService{}, gateway)

	result, err := svc.CreateIntent(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "pi_1", result.PaymentIntentID)
	assert.EqualValues(t, 2500, result.AmountCents)
	assert.EqualValues(t, 2500, *gateway.intentParams.Amount)
	assert.Equal(t, cartID.String(), gateway.intentParams.Metadata[MetadataCartID])
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	svc := newCheckoutService(t, &stubCartService{view: cart.EmptyView()}, &stubOrdersService{}, &stubGateway{})

	_, err := svc.StartSession(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCheckoutRejectsBelowMinimumCharge(t *testing.T) {
	view := &cart.View{
		ID: uuid.New(),
		Items: []cart.ItemView{
			{ProductID: uuid.New(), Name: "Sticker", UnitPrice: decimal.RequireFromString("0.49"), Quantity: 1},
		},
		Subtotal: decimal.RequireFromString("0.49"),
	}
	svc := newCheckoutService(t, &stubCartService{view: view}, &stubOrdersService{}, &stubGateway{})

	_, err := svc.CreateIntent(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDirectChargeCreatesOrderOnSuccess(t *testing.T) {
	cartID := uuid.New()
	userID := uuid.New()
	created := &orders.View{ID: uuid.New(), Status: enums.OrderStatusPaid}
	ordersSvc := &stubOrdersService{created: created}
	gateway := &stubGateway{intent: &stripe.PaymentIntent{ID: "pi_ok", Status: stripe.PaymentIntentStatusSucceeded}}
	svc := newCheckoutService(t, &stubCartService{view: testCartView(cartID)}, ordersSvc, gateway)

	result, err := svc.DirectCharge(context.Background(), ChargeInput{
		UserID:          userID,
		PaymentMethodID: "pm_card",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.Equal(t, created.ID, result.Order.ID)
	assert.False(t, result.RequiresAction)

	require.NotNil(t, ordersSvc.got)
	assert.Equal(t, userID, ordersSvc.got.UserID)
	assert.Equal(t, cartID, ordersSvc.got.CartID)
	assert.Equal(t, "pi_ok", ordersSvc.got.PaymentRef)
	assert.Equal(t, enums.CurrencyUSD, ordersSvc.got.Currency)
}

func TestDirectChargePassesThroughRequiresAction(t *testing.T) {
	pending := []stripe.PaymentIntentStatus{
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresConfirmation,
	}
	for _, status := range pending {
		t.Run(string(status), func(t *testing.T) {
			gateway := &stubGateway{intent: &stripe.PaymentIntent{
				ID:           "pi_3ds",
				Status:       status,
				ClientSecret: "pi_3ds_secret",
			}}
			ordersSvc := &stubOrdersService{}
			svc := newCheckoutService(t, &stubCartService{view: testCartView(uuid.New())}, ordersSvc, gateway)

			result, err := svc.DirectCharge(context.Background(), ChargeInput{
				UserID:          uuid.New(),
				PaymentMethodID: "pm_card",
			})
			require.NoError(t, err)
			assert.Nil(t, result.Order)
			assert.True(t, result.RequiresAction)
			assert.Equal(t, "pi_3ds", result.PaymentIntentID)
			assert.Equal(t, "pi_3ds_secret", result.ClientSecret)
			assert.Nil(t, ordersSvc.got, "no order attempt before the client finishes authentication")
		})
	}
}

func TestDirectChargeSurfacesReconciliationFailure(t *testing.T) {
	gateway := &stubGateway{intent: &stripe.PaymentIntent{ID: "pi_bad", Status: stripe.PaymentIntentStatusSucceeded}}
	ordersSvc := &stubOrdersService{err: errors.New("db down")}
	svc := newCheckoutService(t, &stubCartService{view: testCartView(uuid.New())}, ordersSvc, gateway)

	_, err := svc.DirectCharge(context.Background(), ChargeInput{
		UserID:          uuid.New(),
		PaymentMethodID: "pm_card",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeReconciliation, pkgerrors.As(err).Code())
}

func TestDirectChargeRequiresPaymentMethod(t *testing.T) {
	svc := newCheckoutService(t, &stubCartService{view: testCartView(uuid.New())}, &stubOrdersService{}, &stubGateway{})

	_, err := svc.DirectCharge(context.Background(), ChargeInput{UserID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
