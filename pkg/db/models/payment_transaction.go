package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiimbooktu/artmarket-backend/pkg/enums"
	"github.com/tiimbooktu/artmarket-backend/pkg/types"
)

// PaymentTransaction is the audit record of a confirmed gateway charge,
// written exactly once per reference by the webhook reconciler. Amount is in
// major currency units; the gateway speaks integer minor units.
type PaymentTransaction struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index"`
	Reference string                  `gorm:"column:reference;not null;uniqueIndex"`
	Amount    decimal.Decimal         `gorm:"column:amount;type:numeric(10,2);not null"`
	Status    enums.TransactionStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Metadata  types.JSONMap           `gorm:"column:metadata;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
