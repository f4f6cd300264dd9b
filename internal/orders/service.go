package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/flowmazonhq/flowmazon-backend/internal/cart"
	"github.com/flowmazonhq/flowmazon-backend/pkg/db"
	"github.com/flowmazonhq/flowmazon-backend/pkg/db/models"
	"github.com/flowmazonhq/flowmazon-backend/pkg/enums"
	pkgerrors "github.com/flowmazonhq/flowmazon-backend/pkg/errors"
	"github.com/flowmazonhq/flowmazon-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order operations.
type Service interface {
	CreateFromCart(ctx context.Context, input PaymentConfirmedInput) (*View, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error)
	FindByID(ctx context.Context, requester uuid.UUID, isAdmin bool, orderID uuid.UUID) (*View, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*View, error)
}

type service struct {
	repo  Repository
	carts cart.Repository
	tx    txRunner
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, carts cart.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:  repo,
		carts: carts,
		tx:    tx,
	}, nil
}

// CreateFromCart turns a paid cart into an immutable order. The whole body
// runs in one transaction: recompute the total from current product prices,
// snapshot every line with its unit price, write the order as PAID (PENDING
// when no payment reference accompanies it), and empty the cart. A missing or already-emptied cart returns (nil, nil) so
// webhook redeliveries settle quietly. A reused payment reference is
// rejected, which keeps double invocations from minting two orders.
func (s *service) CreateFromCart(ctx context.Context, input PaymentConfirmedInput) (*View, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.CartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		carts := s.carts.WithTx(tx)

		// Webhook redeliveries can arrive after the cart is already gone,
		// so the payment reference is checked first; the unique index on
		// payment_ref backstops concurrent inserts.
		if ref := strings.TrimSpace(input.PaymentRef); ref != "" {
			if _, err := repo.FindByPaymentRef(ctx, ref); err == nil {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "payment reference already fulfilled")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking payment reference")
			}
		}

		cart, err := carts.FindByID(ctx, input.CartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
		if len(cart.Items) == 0 {
			return nil
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart.Items))
		for i := range cart.Items {
			line := &cart.Items[i]
			if line.Product == nil {
				return pkgerrors.New(pkgerrors.CodeInternal, "cart item missing product row")
			}
			total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.OrderItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.Product.Price,
			})
		}

		// No payment reference means the charge has not settled yet, so
		// the order starts out PENDING instead of PAID.
		status := enums.OrderStatusPaid
		var paymentRef *string
		if ref := strings.TrimSpace(input.PaymentRef); ref != "" {
			paymentRef = &ref
		} else {
			status = enums.OrderStatusPending
		}
		order := &models.Order{
			UserID:          input.UserID,
			Status:          status,
			Total:           total,
			Currency:        currency,
			PaymentRef:      paymentRef,
			ShippingAddress: input.ShippingAddress,
			BillingAddress:  input.BillingAddress,
			Items:           items,
		}
		if _, err := repo.Create(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "payment_ref") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "payment reference already fulfilled")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}
		if err := carts.ClearItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, nil
	}
	return s.loadView(ctx, created.ID)
}

// List returns the user's order history, newest first.
func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting orders")
	}

	window := pagination.PlainWindow(params)
	rows, err := s.repo.ListByUser(ctx, userID, window.Offset, window.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}

	page := &Page{
		Orders: make([]View, 0, len(rows)),
		Page:   window.Page,
		Total:  total,
	}
	for i := range rows {
		page.Orders = append(page.Orders, *viewFromModel(&rows[i]))
	}
	return page, nil
}

// FindByID returns the order when the requester owns it or is an admin.
func (s *service) FindByID(ctx context.Context, requester uuid.UUID, isAdmin bool, orderID uuid.UUID) (*View, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if !isAdmin && order.UserID != requester {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return viewFromModel(order), nil
}

// UpdateStatus transitions the order along the legal status graph. Legal
// transitions only touch the status column; totals and line items stay
// frozen at what was paid.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*View, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
	}
	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}
	return s.loadView(ctx, orderID)
}

func (s *service) loadView(ctx context.Context, orderID uuid.UUID) (*View, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading order")
	}
	return viewFromModel(order), nil
}
