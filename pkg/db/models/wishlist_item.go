package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem links a user to an artwork they want to revisit.
type WishlistItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_wishlist_user_artwork"`
	ArtworkID uuid.UUID `gorm:"column:artwork_id;type:uuid;not null;uniqueIndex:idx_wishlist_user_artwork"`

	Artwork *Artwork `gorm:"foreignKey:ArtworkID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
