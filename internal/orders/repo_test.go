package orders

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
	"github.com/tiimbooktu/artmarket-backend/pkg/enums"
	"github.com/tiimbooktu/artmarket-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  total_amount NUMERIC NOT NULL,
  shipping_details TEXT,
  contact TEXT NOT NULL DEFAULT '',
  shipping_method TEXT NOT NULL DEFAULT 'standard',
  reference_code TEXT UNIQUE,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  artwork_id TEXT NOT NULL,
  color_variant_id TEXT,
  size_variant_id TEXT,
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS payment_transactions (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  reference TEXT NOT NULL UNIQUE,
  amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  metadata TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:          uuid.New(),
		UserID:      userID,
		Status:      enums.OrderStatusPending,
		TotalAmount: decimal.RequireFromString("150.00"),
		Contact:     "buyer@example.com",
		CreatedAt:   createdAt,
		Items: []models.OrderItem{{
			ID:        uuid.New(),
			ArtworkID: uuid.New(),
			Quantity:  1,
			Price:     decimal.RequireFromString("150.00"),
		}},
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestOrdersRepoCreateAndFindByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := seedOrder(t, db, uuid.New(), time.Now().UTC())

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
	require.Len(t, found.Items, 1)
	require.True(t, found.Items[0].Price.Equal(decimal.RequireFromString("150.00")))
}

func TestOrdersRepoFindByIDForUserScopesOwnership(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	order := seedOrder(t, db, owner, time.Now().UTC())

	found, err := repo.FindByIDForUser(ctx, order.ID, owner)
	require.NoError(t, err)
	require.Equal(t, order.ID, found.ID)

	_, err = repo.FindByIDForUser(ctx, order.ID, uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrdersRepoSetReferenceAndFindByReference(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), time.Now().UTC())
	reference := "Tiimbooktu_abc123def456"
	require.NoError(t, repo.SetReference(ctx, order.ID, reference))

	found, err := repo.FindByReference(ctx, reference)
	require.NoError(t, err)
	require.Equal(t, order.ID, found.ID)
	require.Len(t, found.Items, 1)

	_, err = repo.FindByReference(ctx, "Tiimbooktu_missing00000")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrdersRepoUpdateAppliesFields(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), time.Now().UTC())
	require.NoError(t, repo.Update(ctx, order.ID, map[string]any{
		"status":         enums.OrderStatusProcessing,
		"payment_status": enums.PaymentStatusSuccess,
	}))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusProcessing, found.Status)
	require.Equal(t, enums.PaymentStatusSuccess, found.PaymentStatus)
}

func TestOrdersRepoListByUserPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedOrder(t, db, userID, base.Add(time.Duration(i)*time.Hour))
	}
	seedOrder(t, db, uuid.New(), base)

	page, next, err := repo.ListByUser(ctx, userID, ListFilter{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotEmpty(t, next)
	require.True(t, page[0].CreatedAt.After(page[1].CreatedAt), "newest first")

	rest, next, err := repo.ListByUser(ctx, userID, ListFilter{}, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Empty(t, next)
}

func TestOrdersRepoListByUserFiltersStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pending := seedOrder(t, db, userID, base)
	shipped := seedOrder(t, db, userID, base.Add(time.Hour))
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", shipped.ID).
		Update("status", enums.OrderStatusShipped).Error)

	page, _, err := repo.ListByUser(ctx, userID, ListFilter{Status: enums.OrderStatusPending}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, pending.ID, page[0].ID)
}

func TestOrdersRepoListByUserRejectsBadCursor(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, _, err := repo.ListByUser(context.Background(), uuid.New(), ListFilter{}, pagination.Params{Cursor: "not-a-cursor"})
	require.Error(t, err)
}
