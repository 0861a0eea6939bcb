package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Artwork is a purchasable catalog item. Stock is the undecorated base stock;
// each variant carries its own counter.
type Artwork struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Artist      string          `gorm:"column:artist;not null"`
	Description string          `gorm:"column:description"`
	BasePrice   decimal.Decimal `gorm:"column:base_price;type:numeric(10,2);not null"`
	Stock       int             `gorm:"column:stock;not null;default:0"`

	ColorVariants []ArtworkColorVariant `gorm:"foreignKey:ArtworkID;constraint:OnDelete:CASCADE"`
	SizeVariants  []ArtworkSizeVariant  `gorm:"foreignKey:ArtworkID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ArtworkColorVariant is a color option with its own stock and price delta.
type ArtworkColorVariant struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ArtworkID      uuid.UUID       `gorm:"column:artwork_id;type:uuid;not null"`
	Color          string          `gorm:"column:color;not null"`
	PriceIncrement decimal.Decimal `gorm:"column:price_increment;type:numeric(10,2);not null;default:0"`
	Stock          int             `gorm:"column:stock;not null;default:0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// ArtworkSizeVariant is a size option with its own stock and price delta.
type ArtworkSizeVariant struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ArtworkID      uuid.UUID       `gorm:"column:artwork_id;type:uuid;not null"`
	Size           string          `gorm:"column:size;not null"`
	PriceIncrement decimal.Decimal `gorm:"column:price_increment;type:numeric(10,2);not null;default:0"`
	Stock          int             `gorm:"column:stock;not null;default:0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
