package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flowmazonhq/flowmazon-backend/pkg/db/models"
)

func TestRepositoryUpsertItemOverwritesQuantity(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := mustCreateTestProduct(t, conn, "Desk Lamp", "24.99")
	token := "anon-token"
	cart, err := repo.Create(ctx, &models.Cart{SessionToken: &token})
	require.NoError(t, err)

	require.NoError(t, repo.UpsertItem(ctx, cart.ID, product.ID, 2))
	require.NoError(t, repo.UpsertItem(ctx, cart.ID, product.ID, 5))

	loaded, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 5, loaded.Items[0].Quantity)
	require.NotNil(t, loaded.Items[0].Product)
	assert.Equal(t, "Desk Lamp", loaded.Items[0].Product.Name)
}

func TestRepositoryDeleteItem(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := mustCreateTestProduct(t, conn, "Mug", "9.50")
	token := "anon-token"
	cart, err := repo.Create(ctx, &models.Cart{SessionToken: &token})
	require.NoError(t, err)

	require.NoError(t, repo.UpsertItem(ctx, cart.ID, product.ID, 1))
	require.NoError(t, repo.DeleteItem(ctx, cart.ID, product.ID))

	loaded, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Items)

	// Deleting an absent line is a no-op.
	require.NoError(t, repo.DeleteItem(ctx, cart.ID, product.ID))
}

func TestRepositoryAssignUserClearsToken(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	token := "anon-token"
	cart, err := repo.Create(ctx, &models.Cart{SessionToken: &token})
	require.NoError(t, err)

	userID := uuid.New()
	require.NoError(t, repo.AssignUser(ctx, cart.ID, userID))

	_, err = repo.FindBySessionToken(ctx, token)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	claimed, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, claimed.ID)
	assert.Nil(t, claimed.SessionToken)
}

func TestRepositoryReplaceItems(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	first := mustCreateTestProduct(t, conn, "Notebook", "4.00")
	second := mustCreateTestProduct(t, conn, "Pen", "2.00")
	userID := uuid.New()
	cart, err := repo.Create(ctx, &models.Cart{UserID: &userID})
	require.NoError(t, err)
	require.NoError(t, repo.UpsertItem(ctx, cart.ID, first.ID, 9))

	err = repo.ReplaceItems(ctx, cart.ID, []models.CartItem{
		{ProductID: first.ID, Quantity: 3},
		{ProductID: second.ID, Quantity: 1},
	})
	require.NoError(t, err)

	loaded, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)

	byProduct := map[uuid.UUID]int{}
	for _, item := range loaded.Items {
		byProduct[item.ProductID] = item.Quantity
	}
	assert.Equal(t, 3, byProduct[first.ID])
	assert.Equal(t, 1, byProduct[second.ID])
}
