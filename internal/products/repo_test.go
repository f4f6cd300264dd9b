package products

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/flowmazonhq/flowmazon-backend/pkg/db/models"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  tags TEXT NOT NULL DEFAULT '{}',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(ddl).Error)
	return conn
}

func TestCreateWithoutTagsStoresEmptyArray(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Product{
		Name:  "Desk Lamp",
		Price: decimal.RequireFromString("24.99"),
	})
	require.NoError(t, err, "tags column is NOT NULL; a nil slice must not insert NULL")

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.Tags)
	assert.Empty(t, found.Tags)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.Product{
		Name:        "Desk Lamp",
		Description: "Warm reading light",
		Price:       decimal.RequireFromString("24.99"),
	})
	require.NoError(t, err)

	byName, err := repo.Search(ctx, "LAMP", 0, 10)
	require.NoError(t, err)
	require.Len(t, byName, 1)

	byDescription, err := repo.Search(ctx, "Reading", 0, 10)
	require.NoError(t, err)
	require.Len(t, byDescription, 1)

	none, err := repo.Search(ctx, "sofa", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchMatchesTags(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.Product{
		Name:  "Desk Lamp",
		Price: decimal.RequireFromString("24.99"),
		Tags:  pq.StringArray{"Lighting", "office"},
	})
	require.NoError(t, err)

	matches, err := repo.Search(ctx, "lighting", 0, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Desk Lamp", matches[0].Name)
}
