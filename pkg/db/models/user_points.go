package models

import (
	"time"

	"github.com/google/uuid"
)

// UserPoints holds the cumulative balance; increments happen through a
// single atomic upsert so concurrent awards never lose updates.
type UserPoints struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Points    int64     `gorm:"column:points;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy table name used by the storefront schema.
func (UserPoints) TableName() string {
	return "user_points"
}
