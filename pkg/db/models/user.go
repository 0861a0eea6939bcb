package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiimbooktu/artmarket-backend/pkg/enums"
	"github.com/tiimbooktu/artmarket-backend/pkg/types"
)

// User represents the canonical identity entity plus the payment fields the
// gateway flow touches. Credential columns live here but are managed by the
// external auth service.
type User struct {
	ID    uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name  string         `gorm:"column:name;not null"`
	Role  enums.UserRole `gorm:"column:role;type:text;not null;default:'user'"`

	// RecurringTransaction opts the user into stored-card charges. The
	// authorization blob and code are written only by the webhook reconciler
	// after a confirmed charge returns reusable authorization data.
	RecurringTransaction bool           `gorm:"column:recurring_transaction;not null;default:false"`
	AuthorizationCode    *string        `gorm:"column:authorization_code"`
	Authorization        *types.JSONMap `gorm:"column:authorization;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
