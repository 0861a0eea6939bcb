package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line in a user's cart. It references live catalog rows;
// prices are resolved at read time and only frozen when an order is created.
type CartItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_items_user_artwork_variants"`
	ArtworkID      uuid.UUID  `gorm:"column:artwork_id;type:uuid;not null;uniqueIndex:idx_cart_items_user_artwork_variants"`
	ColorVariantID *uuid.UUID `gorm:"column:color_variant_id;type:uuid;uniqueIndex:idx_cart_items_user_artwork_variants"`
	SizeVariantID  *uuid.UUID `gorm:"column:size_variant_id;type:uuid;uniqueIndex:idx_cart_items_user_artwork_variants"`
	Quantity       int        `gorm:"column:quantity;not null;default:1"`

	Artwork      *Artwork             `gorm:"foreignKey:ArtworkID"`
	ColorVariant *ArtworkColorVariant `gorm:"foreignKey:ColorVariantID"`
	SizeVariant  *ArtworkSizeVariant  `gorm:"foreignKey:SizeVariantID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal computes the current price of the line: base price plus the
// selected variant increments, multiplied by quantity. Requires the artwork
// and variant relations to be loaded.
func (c *CartItem) LineTotal() decimal.Decimal {
	if c == nil || c.Artwork == nil {
		return decimal.Zero
	}
	unit := c.Artwork.BasePrice
	if c.ColorVariant != nil {
		unit = unit.Add(c.ColorVariant.PriceIncrement)
	}
	if c.SizeVariant != nil {
		unit = unit.Add(c.SizeVariant.PriceIncrement)
	}
	return unit.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
