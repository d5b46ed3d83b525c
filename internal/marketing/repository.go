package marketing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/pkg/db/models"
)

// Repository persists banners and events.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActiveBanners returns banners inside their display window, ordered by
// position. Banners without a window are always eligible while active.
func (r *Repository) ListActiveBanners(ctx context.Context, now time.Time) ([]models.Banner, error) {
	var rows []models.Banner
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order("position ASC, created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListBanners returns every banner for the admin console.
func (r *Repository) ListBanners(ctx context.Context) ([]models.Banner, error) {
	var rows []models.Banner
	err := r.db.WithContext(ctx).
		Order("position ASC, created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

func (r *Repository) FindBanner(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	var banner models.Banner
	if err := r.db.WithContext(ctx).First(&banner, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &banner, nil
}

func (r *Repository) CreateBanner(ctx context.Context, banner *models.Banner) error {
	return r.db.WithContext(ctx).Create(banner).Error
}

func (r *Repository) SaveBanner(ctx context.Context, banner *models.Banner) error {
	return r.db.WithContext(ctx).Save(banner).Error
}

func (r *Repository) DeleteBanner(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Banner{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// ListActiveEvents returns events that are still running or upcoming,
// soonest first.
func (r *Repository) ListActiveEvents(ctx context.Context, now time.Time) ([]models.Event, error) {
	var rows []models.Event
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order("starts_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListEvents returns every event for the admin console.
func (r *Repository) ListEvents(ctx context.Context) ([]models.Event, error) {
	var rows []models.Event
	err := r.db.WithContext(ctx).
		Order("starts_at DESC").
		Find(&rows).
		Error
	return rows, err
}

func (r *Repository) FindEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *Repository) CreateEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *Repository) SaveEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *Repository) DeleteEvent(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
