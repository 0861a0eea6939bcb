package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiimbooktu/artmarket-backend/pkg/enums"
	"github.com/tiimbooktu/artmarket-backend/pkg/types"
)

// Order is the priced snapshot produced from a cart. TotalAmount is frozen at
// creation and independent of later catalog price changes. ReferenceCode is
// minted per payment attempt and correlates gateway webhooks with the order.
type Order struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	Status         enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus  enums.PaymentStatus   `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	TotalAmount    decimal.Decimal       `gorm:"column:total_amount;type:numeric(10,2);not null"`
	ShippingInfo   types.ShippingDetails `gorm:"column:shipping_details;type:jsonb"`
	Contact        string                `gorm:"column:contact;not null"`
	ShippingMethod enums.ShippingMethod  `gorm:"column:shipping_method;type:text;not null;default:'standard'"`
	ReferenceCode  *string               `gorm:"column:reference_code;uniqueIndex"`
	DeliveredAt    *time.Time            `gorm:"column:delivered_at"`

	Items       []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Transaction *PaymentTransaction `gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is the immutable per-line snapshot. Price is the frozen line
// total (unit price including variant increments, times quantity), never a
// live catalog lookup.
type OrderItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ArtworkID      uuid.UUID       `gorm:"column:artwork_id;type:uuid;not null"`
	ColorVariantID *uuid.UUID      `gorm:"column:color_variant_id;type:uuid"`
	SizeVariantID  *uuid.UUID      `gorm:"column:size_variant_id;type:uuid"`
	Quantity       int             `gorm:"column:quantity;not null"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`

	Artwork *Artwork `gorm:"foreignKey:ArtworkID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
