package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoreSettings is a singleton row; reads go through the settings cache.
type StoreSettings struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreName    string          `gorm:"column:store_name;not null"`
	Phone        *string         `gorm:"column:phone"`
	WhatsApp     *string         `gorm:"column:whatsapp"`
	Address      *string         `gorm:"column:address"`
	DeliveryFee  decimal.Decimal `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0"`
	MinOrder     decimal.Decimal `gorm:"column:min_order;type:numeric(12,2);not null;default:0"`
	OpeningHours *string         `gorm:"column:opening_hours"`
	PixKey       *string         `gorm:"column:pix_key"`
	Open         bool            `gorm:"column:open;not null;default:true"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
