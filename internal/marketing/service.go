package marketing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/pkg/db/models"
	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
)

// CreateBannerInput holds the fields for a new storefront banner.
type CreateBannerInput struct {
	Title    string
	ImageURL string
	LinkURL  *string
	Position int
	StartsAt *time.Time
	EndsAt   *time.Time
}

// UpdateBannerInput holds optional mutation values for a banner.
type UpdateBannerInput struct {
	Title    *string
	ImageURL *string
	LinkURL  *string
	Position *int
	StartsAt *time.Time
	EndsAt   *time.Time
	Active   *bool
}

// CreateEventInput holds the fields for a new promotional event.
type CreateEventInput struct {
	Title       string
	Description *string
	ImageURL    *string
	StartsAt    time.Time
	EndsAt      *time.Time
}

// UpdateEventInput holds optional mutation values for an event.
type UpdateEventInput struct {
	Title       *string
	Description *string
	ImageURL    *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	Active      *bool
}

// Service exposes the public marketing feeds plus admin CRUD.
type Service interface {
	ActiveBanners(ctx context.Context) ([]models.Banner, error)
	ActiveEvents(ctx context.Context) ([]models.Event, error)

	ListBanners(ctx context.Context) ([]models.Banner, error)
	CreateBanner(ctx context.Context, input CreateBannerInput) (*models.Banner, error)
	UpdateBanner(ctx context.Context, id uuid.UUID, input UpdateBannerInput) (*models.Banner, error)
	DeleteBanner(ctx context.Context, id uuid.UUID) error

	ListEvents(ctx context.Context) ([]models.Event, error)
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*models.Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService constructs the marketing service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("marketing repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// ActiveBanners lists the banners currently inside their display window.
func (s *service) ActiveBanners(ctx context.Context) ([]models.Banner, error) {
	rows, err := s.repo.ListActiveBanners(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing banners")
	}
	return rows, nil
}

// ActiveEvents lists running and upcoming events.
func (s *service) ActiveEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.repo.ListActiveEvents(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing events")
	}
	return rows, nil
}

func (s *service) ListBanners(ctx context.Context) ([]models.Banner, error) {
	rows, err := s.repo.ListBanners(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing banners")
	}
	return rows, nil
}

func (s *service) CreateBanner(ctx context.Context, input CreateBannerInput) (*models.Banner, error) {
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "banner title required")
	}
	if input.ImageURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "banner image required")
	}
	if err := validateWindow(input.StartsAt, input.EndsAt); err != nil {
		return nil, err
	}

	banner := &models.Banner{
		ID:       uuid.New(),
		Title:    input.Title,
		ImageURL: input.ImageURL,
		LinkURL:  input.LinkURL,
		Position: input.Position,
		StartsAt: input.StartsAt,
		EndsAt:   input.EndsAt,
		Active:   true,
	}
	if err := s.repo.CreateBanner(ctx, banner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating banner")
	}
	return banner, nil
}

func (s *service) UpdateBanner(ctx context.Context, id uuid.UUID, input UpdateBannerInput) (*models.Banner, error) {
	banner, err := s.repo.FindBanner(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Banner não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading banner")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "banner title required")
		}
		banner.Title = *input.Title
	}
	if input.ImageURL != nil {
		if *input.ImageURL == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "banner image required")
		}
		banner.ImageURL = *input.ImageURL
	}
	if input.LinkURL != nil {
		banner.LinkURL = input.LinkURL
	}
	if input.Position != nil {
		banner.Position = *input.Position
	}
	if input.StartsAt != nil {
		banner.StartsAt = input.StartsAt
	}
	if input.EndsAt != nil {
		banner.EndsAt = input.EndsAt
	}
	if err := validateWindow(banner.StartsAt, banner.EndsAt); err != nil {
		return nil, err
	}
	if input.Active != nil {
		banner.Active = *input.Active
	}

	if err := s.repo.SaveBanner(ctx, banner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating banner")
	}
	return banner, nil
}

func (s *service) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.DeleteBanner(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting banner")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Banner não encontrado")
	}
	return nil
}

func (s *service) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing events")
	}
	return rows, nil
}

func (s *service) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event title required")
	}
	if input.StartsAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event start date required")
	}
	if err := validateWindow(&input.StartsAt, input.EndsAt); err != nil {
		return nil, err
	}

	event := &models.Event{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		Active:      true,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating event")
	}
	return event, nil
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*models.Event, error) {
	event, err := s.repo.FindEvent(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Evento não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading event")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "event title required")
		}
		event.Title = *input.Title
	}
	if input.Description != nil {
		event.Description = input.Description
	}
	if input.ImageURL != nil {
		event.ImageURL = input.ImageURL
	}
	if input.StartsAt != nil {
		event.StartsAt = *input.StartsAt
	}
	if input.EndsAt != nil {
		event.EndsAt = input.EndsAt
	}
	if err := validateWindow(&event.StartsAt, event.EndsAt); err != nil {
		return nil, err
	}
	if input.Active != nil {
		event.Active = *input.Active
	}

	if err := s.repo.SaveEvent(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating event")
	}
	return event, nil
}

func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.DeleteEvent(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting event")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Evento não encontrado")
	}
	return nil
}

func validateWindow(start, end *time.Time) error {
	if start == nil || end == nil {
		return nil
	}
	if end.Before(*start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "window cannot end before it starts")
	}
	return nil
}
