package loyalty

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adegadigital/adega-backend/pkg/db/models"
)

// Repository wires loyalty balance and history persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// AddPoints applies the delta through a single atomic upsert, so concurrent
// awards never lose updates.
func (r *Repository) AddPoints(ctx context.Context, userID uuid.UUID, delta int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"points":     gorm.Expr("user_points.points + excluded.points"),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(&models.UserPoints{UserID: userID, Points: delta}).
		Error
}

// GetBalance returns the cumulative balance; a missing row reads as 0.
func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var row models.UserPoints
	err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Points, nil
}

// InsertHistory appends one audit row; history rows are never mutated.
func (r *Repository) InsertHistory(ctx context.Context, entry *models.PointsHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListHistory returns the user's audit trail, newest first.
func (r *Repository) ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.PointsHistoryEntry, error) {
	var rows []models.PointsHistoryEntry
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}
