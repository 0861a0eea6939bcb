package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/pagination"
)

// Repository exposes catalog persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the supplied transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindArtworkByID loads an artwork with its variants.
func (r *Repository) FindArtworkByID(ctx context.Context, id uuid.UUID) (*models.Artwork, error) {
	var artwork models.Artwork
	err := r.db.WithContext(ctx).
		Preload("ColorVariants").
		Preload("SizeVariants").
		First(&artwork, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &artwork, nil
}

// ListArtworks returns a page of artworks ordered by newest first.
func (r *Repository) ListArtworks(ctx context.Context, params pagination.Params) ([]models.Artwork, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Preload("ColorVariants").
		Preload("SizeVariants").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var artworks []models.Artwork
	if err := query.Find(&artworks).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(artworks) > limit {
		artworks = artworks[:limit]
		last := artworks[len(artworks)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return artworks, nextCursor, nil
}

// FindColorVariant loads a color variant belonging to the given artwork.
func (r *Repository) FindColorVariant(ctx context.Context, artworkID, variantID uuid.UUID) (*models.ArtworkColorVariant, error) {
	var variant models.ArtworkColorVariant
	err := r.db.WithContext(ctx).
		Where("id = ? AND artwork_id = ?", variantID, artworkID).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindSizeVariant loads a size variant belonging to the given artwork.
func (r *Repository) FindSizeVariant(ctx context.Context, artworkID, variantID uuid.UUID) (*models.ArtworkSizeVariant, error) {
	var variant models.ArtworkSizeVariant
	err := r.db.WithContext(ctx).
		Where("id = ? AND artwork_id = ?", variantID, artworkID).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// DecrementArtworkStock atomically subtracts qty from the artwork counter,
// failing when the remaining stock would go negative.
func (r *Repository) DecrementArtworkStock(ctx context.Context, id uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Artwork{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient artwork stock")
	}
	return nil
}

// IncrementArtworkStock atomically returns qty to the artwork counter.
func (r *Repository) IncrementArtworkStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Artwork{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}

// DecrementColorVariantStock atomically subtracts qty from a color variant.
func (r *Repository) DecrementColorVariantStock(ctx context.Context, id uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.ArtworkColorVariant{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient color variant stock")
	}
	return nil
}

// IncrementColorVariantStock atomically returns qty to a color variant.
func (r *Repository) IncrementColorVariantStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.ArtworkColorVariant{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}

// DecrementSizeVariantStock atomically subtracts qty from a size variant.
func (r *Repository) DecrementSizeVariantStock(ctx context.Context, id uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.ArtworkSizeVariant{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient size variant stock")
	}
	return nil
}

// IncrementSizeVariantStock atomically returns qty to a size variant.
func (r *Repository) IncrementSizeVariantStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.ArtworkSizeVariant{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}
