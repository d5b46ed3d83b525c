package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adegadigital/adega-backend/pkg/enums"
)

// Coupon is stored with its code already normalized (trimmed, uppercase).
type Coupon struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code          string             `gorm:"column:code;not null;uniqueIndex"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	MinOrderValue *decimal.Decimal   `gorm:"column:min_order_value;type:numeric(12,2)"`
	MaxUses       *int               `gorm:"column:max_uses"`
	CurrentUses   int                `gorm:"column:current_uses;not null;default:0"`
	ValidFrom     *time.Time         `gorm:"column:valid_from"`
	ValidUntil    *time.Time         `gorm:"column:valid_until"`
	Active        bool               `gorm:"column:active;not null;default:true"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
