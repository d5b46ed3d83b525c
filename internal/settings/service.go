package settings

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/adegadigital/adega-backend/pkg/db/models"
	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
)

// UpdateSettingsInput holds optional mutation values for the store settings.
type UpdateSettingsInput struct {
	StoreName    *string
	Phone        *string
	WhatsApp     *string
	Address      *string
	DeliveryFee  *decimal.Decimal
	MinOrder     *decimal.Decimal
	OpeningHours *string
	PixKey       *string
	Open         *bool
}

// Service exposes store configuration reads (cached) and admin updates.
type Service interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
	Update(ctx context.Context, input UpdateSettingsInput) (*models.StoreSettings, error)
	DeliveryFee(ctx context.Context) (decimal.Decimal, error)
}

type service struct {
	repo  *Repository
	cache *Cache
}

// NewService constructs the settings service.
func NewService(repo *Repository, cache *Cache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if cache == nil {
		return nil, fmt.Errorf("settings cache required")
	}
	return &service{repo: repo, cache: cache}, nil
}

// Get serves reads through the TTL cache.
func (s *service) Get(ctx context.Context) (*models.StoreSettings, error) {
	row, err := s.cache.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading store settings")
	}
	return row, nil
}

// Update writes through to the DB and invalidates the cache.
func (s *service) Update(ctx context.Context, input UpdateSettingsInput) (*models.StoreSettings, error) {
	row, err := s.repo.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading store settings")
	}

	if input.StoreName != nil {
		if *input.StoreName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name cannot be empty")
		}
		row.StoreName = *input.StoreName
	}
	if input.Phone != nil {
		row.Phone = input.Phone
	}
	if input.WhatsApp != nil {
		row.WhatsApp = input.WhatsApp
	}
	if input.Address != nil {
		row.Address = input.Address
	}
	if input.DeliveryFee != nil {
		if input.DeliveryFee.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee cannot be negative")
		}
		row.DeliveryFee = *input.DeliveryFee
	}
	if input.MinOrder != nil {
		if input.MinOrder.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum order cannot be negative")
		}
		row.MinOrder = *input.MinOrder
	}
	if input.OpeningHours != nil {
		row.OpeningHours = input.OpeningHours
	}
	if input.PixKey != nil {
		row.PixKey = input.PixKey
	}
	if input.Open != nil {
		row.Open = *input.Open
	}

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating store settings")
	}
	s.cache.Invalidate()
	return updated, nil
}

// DeliveryFee reads the fee through the cache for the checkout path.
func (s *service) DeliveryFee(ctx context.Context) (decimal.Decimal, error) {
	row, err := s.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return row.DeliveryFee, nil
}
