package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flowmazonhq/flowmazon-backend/pkg/db/models"
	pkgerrors "github.com/flowmazonhq/flowmazon-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service defines cart operations for anonymous and logged-in shoppers.
type Service interface {
	GetCart(ctx context.Context, id Identity) (*View, error)
	SetItemQuantity(ctx context.Context, id Identity, productID uuid.UUID, quantity int) (*View, error)
	IncrementItem(ctx context.Context, id Identity, productID uuid.UUID) (*View, error)
	MergeOnLogin(ctx context.Context, userID uuid.UUID, sessionToken string) error
}

type service struct {
	repo     Repository
	products productFinder
	tx       txRunner
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, products productFinder, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		products: products,
		tx:       tx,
	}, nil
}

// GetCart returns the shopper's cart, or an empty view when none exists yet.
// Reading never creates a cart.
func (s *service) GetCart(ctx context.Context, id Identity) (*View, error) {
	cart, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return EmptyView(), nil
	}
	return viewFromModel(cart), nil
}

// SetItemQuantity overwrites the quantity for a product. Zero or negative
// removes the line; the cart is created on first write. Concurrent writers
// race on the unique cart/product row, so the last write wins.
func (s *service) SetItemQuantity(ctx context.Context, id Identity, productID uuid.UUID, quantity int) (*View, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	cart, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		// Removing from a cart that never existed is a no-op.
		if cart == nil {
			return EmptyView(), nil
		}
		if err := s.repo.DeleteItem(ctx, cart.ID, productID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart item")
		}
		return s.reload(ctx, cart.ID)
	}

	if cart == nil {
		cart, err = s.createFor(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpsertItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "setting cart item quantity")
	}
	return s.reload(ctx, cart.ID)
}

// IncrementItem adds one unit of the product, creating the cart and the line
// as needed.
func (s *service) IncrementItem(ctx context.Context, id Identity, productID uuid.UUID) (*View, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	cart, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart, err = s.createFor(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	quantity := 1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			quantity = cart.Items[i].Quantity + 1
			break
		}
	}
	if err := s.repo.UpsertItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "incrementing cart item")
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) resolve(ctx context.Context, id Identity) (*models.Cart, error) {
	if id.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart identity required")
	}

	var (
		cart *models.Cart
		err  error
	)
	if id.IsUser() {
		cart, err = s.repo.FindByUser(ctx, *id.UserID)
	} else {
		cart, err = s.repo.FindBySessionToken(ctx, *id.SessionToken)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	return cart, nil
}

func (s *service) createFor(ctx context.Context, id Identity) (*models.Cart, error) {
	cart := &models.Cart{}
	if id.IsUser() {
		cart.UserID = id.UserID
	} else {
		cart.SessionToken = id.SessionToken
	}
	created, err := s.repo.Create(ctx, cart)
	if err != nil {
		// Another request may have created the cart first; pick theirs up.
		if existing, resolveErr := s.resolve(ctx, id); resolveErr == nil && existing != nil {
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart")
	}
	return created, nil
}

func (s *service) reload(ctx context.Context, cartID uuid.UUID) (*View, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading cart")
	}
	return viewFromModel(cart), nil
}

func (s *service) ensureProduct(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return nil
}
