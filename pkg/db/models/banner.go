package models

import (
	"time"

	"github.com/google/uuid"
)

// Banner is a marketing carousel entry managed from the admin console.
type Banner struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string     `gorm:"column:title;not null"`
	ImageURL  string     `gorm:"column:image_url;not null"`
	LinkURL   *string    `gorm:"column:link_url"`
	Position  int        `gorm:"column:position;not null;default:0"`
	StartsAt  *time.Time `gorm:"column:starts_at"`
	EndsAt    *time.Time `gorm:"column:ends_at"`
	Active    bool       `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
