package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiimbooktu/artmarket-backend/pkg/db"
	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
)

// Repository exposes wishlist persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns the user's wishlist entries with artworks loaded.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Artwork").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Add inserts the wishlist entry, treating duplicates as a no-op.
func (r *Repository) Add(ctx context.Context, userID, artworkID uuid.UUID) error {
	item := &models.WishlistItem{UserID: userID, ArtworkID: artworkID}
	err := r.db.WithContext(ctx).Create(item).Error
	if err != nil && db.IsUniqueViolation(err) {
		return nil
	}
	return err
}

// Remove drops the wishlist entry regardless of prior state.
func (r *Repository) Remove(ctx context.Context, userID, artworkID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND artwork_id = ?", userID, artworkID).
		Delete(&models.WishlistItem{}).Error
}

// Contains reports whether the artwork is on the user's wishlist.
func (r *Repository) Contains(ctx context.Context, userID, artworkID uuid.UUID) (bool, error) {
	var item models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND artwork_id = ?", userID, artworkID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
