package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
	"github.com/tiimbooktu/artmarket-backend/pkg/enums"
	"github.com/tiimbooktu/artmarket-backend/pkg/pagination"
)

// ListFilter narrows an order listing. Zero value matches everything.
type ListFilter struct {
	Status enums.OrderStatus
}

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	FindByReference(ctx context.Context, reference string) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Order, string, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SetReference(ctx context.Context, id uuid.UUID, reference string) error
}
