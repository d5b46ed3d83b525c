package loyalty

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/pkg/db"
	"github.com/adegadigital/adega-backend/pkg/db/models"
	"github.com/adegadigital/adega-backend/pkg/enums"
	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
)

// BalanceView is the loyalty summary returned to controllers.
type BalanceView struct {
	Points       int64             `json:"points"`
	Tier         enums.LoyaltyTier `json:"tier"`
	PointsToNext int64             `json:"points_to_next"`
}

// Service exposes the loyalty ledger.
type Service interface {
	Balance(ctx context.Context, userID uuid.UUID) (*BalanceView, error)
	Award(ctx context.Context, userID uuid.UUID, points int64, source enums.PointsSource, description *string, orderID *uuid.UUID) error
	History(ctx context.Context, userID uuid.UUID, limit int) ([]models.PointsHistoryEntry, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a loyalty service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loyalty repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// Balance reads the cumulative points and derives the tier; a user with no
// ledger row is a Bronze member with 0 points.
func (s *service) Balance(ctx context.Context, userID uuid.UUID) (*BalanceView, error) {
	points, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading points balance")
	}
	return &BalanceView{
		Points:       points,
		Tier:         TierFor(points),
		PointsToNext: PointsToNext(points),
	}, nil
}

// Award applies the delta and appends the audit row in one transaction.
func (s *service) Award(ctx context.Context, userID uuid.UUID, points int64, source enums.PointsSource, description *string, orderID *uuid.UUID) error {
	if points <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "points must be positive")
	}
	if !source.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid points source %q", source))
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.AddPoints(ctx, userID, points); err != nil {
			return err
		}
		return txRepo.InsertHistory(ctx, &models.PointsHistoryEntry{
			ID:          uuid.New(),
			UserID:      userID,
			Points:      points,
			Source:      source,
			Description: description,
			OrderID:     orderID,
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "awarding points")
	}
	return nil
}

// History lists the append-only audit trail, newest first.
func (s *service) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.PointsHistoryEntry, error) {
	rows, err := s.repo.ListHistory(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing points history")
	}
	return rows, nil
}
