package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adegadigital/adega-backend/pkg/enums"
)

// Notification is a persisted per-user notification row; the realtime feed
// pushes the same payload over Redis before this row is listed.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title     string                 `gorm:"column:title;not null"`
	Body      string                 `gorm:"column:body;not null"`
	OrderID   *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	Read      bool                   `gorm:"column:read;not null;default:false"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
