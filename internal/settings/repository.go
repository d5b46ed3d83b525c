package settings

import (
	"context"

	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/pkg/db/models"
)

// Repository persists the singleton store settings row.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get loads the settings row. The schema seeds exactly one.
func (r *Repository) Get(ctx context.Context) (*models.StoreSettings, error) {
	var row models.StoreSettings
	if err := r.db.WithContext(ctx).Order("updated_at DESC").First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Update saves the settings row.
func (r *Repository) Update(ctx context.Context, row *models.StoreSettings) (*models.StoreSettings, error) {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
