package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adegadigital/adega-backend/pkg/enums"
)

// PointsHistoryEntry is an append-only audit row; never mutated or deleted.
type PointsHistoryEntry struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Points      int64              `gorm:"column:points;not null"`
	Source      enums.PointsSource `gorm:"column:source;type:text;not null"`
	Description *string            `gorm:"column:description"`
	OrderID     *uuid.UUID         `gorm:"column:order_id;type:uuid"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the legacy table name used by the storefront schema.
func (PointsHistoryEntry) TableName() string {
	return "points_history"
}
