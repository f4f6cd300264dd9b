package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flowmazonhq/flowmazon-backend/pkg/db"
	"github.com/flowmazonhq/flowmazon-backend/pkg/db/models"
	pkgerrors "github.com/flowmazonhq/flowmazon-backend/pkg/errors"
)

type testProductFinder struct {
	conn *gorm.DB
}

func (f testProductFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := f.conn.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func newCartService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), testProductFinder{conn: conn}, db.NewFromConn(conn))
	require.NoError(t, err)
	return svc
}

func TestGetCartNeverCreates(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	view, err := svc.GetCart(ctx, ForSession("nobody"))
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.Size)

	var count int64
	require.NoError(t, conn.Table("carts").Count(&count).Error)
	assert.Zero(t, count)
}

func TestSetItemQuantityCreatesCartOnFirstWrite(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	product := mustCreateTestProduct(t, conn, "Desk Lamp", "24.99")

	view, err := svc.SetItemQuantity(ctx, ForSession("tok-1"), product.ID, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, 2, view.Size)
	assert.Equal(t, "49.98", view.Subtotal.StringFixed(2))
}

func TestSetItemQuantityOverwrites(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	product := mustCreateTestProduct(t, conn, "Desk Lamp", "24.99")
	id := ForSession("tok-1")

	_, err := svc.SetItemQuantity(ctx, id, product.ID, 2)
	require.NoError(t, err)
	view, err := svc.SetItemQuantity(ctx, id, product.ID, 7)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 7, view.Items[0].Quantity)
}

func TestSetItemQuantityZeroRemovesLine(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	product := mustCreateTestProduct(t, conn, "Desk Lamp", "24.99")
	id := ForSession("tok-1")

	_, err := svc.SetItemQuantity(ctx, id, product.ID, 2)
	require.NoError(t, err)
	view, err := svc.SetItemQuantity(ctx, id, product.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestSetItemQuantityZeroWithoutCartIsNoop(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	product := mustCreateTestProduct(t, conn, "Desk Lamp", "24.99")

	view, err := svc.SetItemQuantity(ctx, ForSession("tok-1"), product.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	var count int64
	require.NoError(t, conn.Table("carts").Count(&count).Error)
	assert.Zero(t, count)
}

func TestSetItemQuantityNegativeRemovesLine(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	product := mustCreateTestProduct(t, conn, "Desk Lamp", "24.99")
	id := ForSession("tok-1")

	_, err := svc.SetItemQuantity(ctx, id, product.ID, 2)
	require.NoError(t, err)
	view, err := svc.SetItemQuantity(ctx, id, product.ID, -1)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.Size)
}

func TestSetItemQuantityUnknownProduct(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)

	_, err := svc.SetItemQuantity(context.Background(), ForSession("tok-1"), uuid.New(), 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestIncrementItemStartsAtOneAndAdds(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	product := mustCreateTestProduct(t, conn, "Mug", "9.50")
	id := ForSession("tok-1")

	view, err := svc.IncrementItem(ctx, id, product.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)

	view, err = svc.IncrementItem(ctx, id, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Items[0].Quantity)
}

func TestMergeOnLoginMovesCartWhenUserHasNone(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	product := mustCreateTestProduct(t, conn, "Mug", "9.50")
	_, err := svc.SetItemQuantity(ctx, ForSession("tok-1"), product.ID, 3)
	require.NoError(t, err)

	userID := uuid.New()
	require.NoError(t, svc.MergeOnLogin(ctx, userID, "tok-1"))

	view, err := svc.GetCart(ctx, ForUser(userID))
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)

	anon, err := svc.GetCart(ctx, ForSession("tok-1"))
	require.NoError(t, err)
	assert.Empty(t, anon.Items)
}

func TestMergeOnLoginSumsQuantities(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	shared := mustCreateTestProduct(t, conn, "Mug", "9.50")
	anonOnly := mustCreateTestProduct(t, conn, "Pen", "2.00")
	userID := uuid.New()

	_, err := svc.SetItemQuantity(ctx, ForUser(userID), shared.ID, 2)
	require.NoError(t, err)
	_, err = svc.SetItemQuantity(ctx, ForSession("tok-1"), shared.ID, 3)
	require.NoError(t, err)
	_, err = svc.SetItemQuantity(ctx, ForSession("tok-1"), anonOnly.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.MergeOnLogin(ctx, userID, "tok-1"))

	view, err := svc.GetCart(ctx, ForUser(userID))
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	byProduct := map[uuid.UUID]int{}
	for _, item := range view.Items {
		byProduct[item.ProductID] = item.Quantity
	}
	assert.Equal(t, 5, byProduct[shared.ID])
	assert.Equal(t, 1, byProduct[anonOnly.ID])

	var cartCount int64
	require.NoError(t, conn.Table("carts").Where("session_token IS NOT NULL").Count(&cartCount).Error)
	assert.Zero(t, cartCount, "anonymous cart should be deleted")
}

func TestMergeOnLoginIdempotentWhenAnonymousCartGone(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	product := mustCreateTestProduct(t, conn, "Mug", "9.50")
	userID := uuid.New()
	_, err := svc.SetItemQuantity(ctx, ForSession("tok-1"), product.ID, 3)
	require.NoError(t, err)

	require.NoError(t, svc.MergeOnLogin(ctx, userID, "tok-1"))
	require.NoError(t, svc.MergeOnLogin(ctx, userID, "tok-1"))

	view, err := svc.GetCart(ctx, ForUser(userID))
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
}

func TestMergeOnLoginNoTokenIsNoop(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)

	require.NoError(t, svc.MergeOnLogin(context.Background(), uuid.New(), ""))
}
