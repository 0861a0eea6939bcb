package wishlist

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
)

func setupWishlistTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS artworks (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  artist TEXT NOT NULL,
  description TEXT,
  base_price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS wishlist_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  artwork_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE(user_id, artwork_id)
);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedWishlistArtwork(t *testing.T, db *gorm.DB) *models.Artwork {
	t.Helper()
	artwork := &models.Artwork{
		ID:        uuid.New(),
		Name:      "Lagos Traffic",
		Artist:    "D. Adeyemi",
		BasePrice: decimal.RequireFromString("95.00"),
		Stock:     3,
	}
	require.NoError(t, db.Create(artwork).Error)
	return artwork
}

func TestWishlistRepoAddListRemove(t *testing.T) {
	db := setupWishlistTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	artwork := seedWishlistArtwork(t, db)

	require.NoError(t, repo.Add(ctx, userID, artwork.ID))

	items, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Artwork)
	require.Equal(t, artwork.Name, items[0].Artwork.Name)

	require.NoError(t, repo.Remove(ctx, userID, artwork.ID))
	items, err = repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestWishlistRepoDuplicateAddIsNoOp(t *testing.T) {
	db := setupWishlistTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	artwork := seedWishlistArtwork(t, db)

	require.NoError(t, repo.Add(ctx, userID, artwork.ID))
	require.NoError(t, repo.Add(ctx, userID, artwork.ID))

	items, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestWishlistRepoContains(t *testing.T) {
	db := setupWishlistTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	artwork := seedWishlistArtwork(t, db)

	ok, err := repo.Contains(ctx, userID, artwork.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Add(ctx, userID, artwork.ID))
	ok, err = repo.Contains(ctx, userID, artwork.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.Remove(ctx, uuid.New(), artwork.ID))
	ok, err = repo.Contains(ctx, userID, artwork.ID)
	require.NoError(t, err)
	require.True(t, ok, "removing for another user must not affect this entry")
}
