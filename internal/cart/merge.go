package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flowmazonhq/flowmazon-backend/pkg/db/models"
	pkgerrors "github.com/flowmazonhq/flowmazon-backend/pkg/errors"
)

// MergeOnLogin folds the anonymous cart into the user's cart after a
// successful login. Quantities for the same product are summed, the user
// cart's contents are rewritten in one pass, and the anonymous cart is
// deleted. When the user has no cart yet the anonymous cart is simply
// re-pointed at them. Runs in a single transaction; a login with no
// anonymous cart is a no-op, so retries are safe.
func (s *service) MergeOnLogin(ctx context.Context, userID uuid.UUID, sessionToken string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if strings.TrimSpace(sessionToken) == "" {
		return nil
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		anon, err := repo.FindBySessionToken(ctx, sessionToken)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading anonymous cart")
		}

		userCart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user cart")
			}
			userCart = nil
		}

		if userCart == nil {
			if err := repo.AssignUser(ctx, anon.ID, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claiming anonymous cart")
			}
			return nil
		}

		merged := mergeItems(userCart.Items, anon.Items)
		if err := repo.ReplaceItems(ctx, userCart.ID, merged); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rewriting merged cart")
		}
		if err := repo.Delete(ctx, anon.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting anonymous cart")
		}
		return nil
	})
}

// mergeItems sums quantities per product, keeping the user cart's line order
// and appending products only the anonymous cart had.
func mergeItems(userItems, anonItems []models.CartItem) []models.CartItem {
	merged := make([]models.CartItem, 0, len(userItems)+len(anonItems))
	index := make(map[uuid.UUID]int, len(userItems))

	for _, item := range userItems {
		index[item.ProductID] = len(merged)
		merged = append(merged, models.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	for _, item := range anonItems {
		if pos, ok := index[item.ProductID]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, models.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return merged
}
