package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/pkg/db"
	"github.com/adegadigital/adega-backend/pkg/db/models"
	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
)

// Service exposes the storefront catalog, brand management, and favorites.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	ListBrands(ctx context.Context, activeOnly bool) ([]BrandDTO, error)
	CreateBrand(ctx context.Context, name string, logoURL *string) (*BrandDTO, error)
	AddFavorite(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]ProductDTO, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description *string
	Category    string
	BrandID     *uuid.UUID
	Price       decimal.Decimal
	ImageURL    *string
	Active      bool
	InStock     bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *string
	BrandID     *uuid.UUID
	Price       *decimal.Decimal
	ImageURL    *string
	Active      *bool
	InStock     *bool
}

type service struct {
	repo *Repository
}

// NewService constructs the catalog service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// FindByID exposes the raw row; the cart uses it to snapshot prices.
func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Produto não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	dto := toProductDTO(product)
	return &dto, nil
}

func (s *service) List(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	rows, next, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}
	result := &ProductListResult{Products: make([]ProductDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		result.Products = append(result.Products, toProductDTO(&rows[i]))
	}
	return result, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.Category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product category required")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.BrandID != nil {
		if _, err := s.repo.FindBrandByID(ctx, *input.BrandID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading brand")
		}
	}

	product := &models.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		BrandID:     input.BrandID,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		Active:      input.Active,
		InStock:     input.InStock,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating product")
	}
	dto := toProductDTO(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Produto não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		if *input.Category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product category required")
		}
		product.Category = *input.Category
	}
	if input.BrandID != nil {
		if _, err := s.repo.FindBrandByID(ctx, *input.BrandID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading brand")
		}
		product.BrandID = input.BrandID
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		product.Price = *input.Price
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.Active != nil {
		product.Active = *input.Active
	}
	if input.InStock != nil {
		product.InStock = *input.InStock
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating product")
	}
	dto := toProductDTO(updated)
	return &dto, nil
}

func (s *service) ListBrands(ctx context.Context, activeOnly bool) ([]BrandDTO, error) {
	rows, err := s.repo.ListBrands(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing brands")
	}
	dtos := make([]BrandDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *toBrandDTO(&rows[i]))
	}
	return dtos, nil
}

func (s *service) CreateBrand(ctx context.Context, name string, logoURL *string) (*BrandDTO, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand name required")
	}
	brand, err := s.repo.CreateBrand(ctx, &models.Brand{
		ID:      uuid.New(),
		Name:    name,
		LogoURL: logoURL,
		Active:  true,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "brand already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating brand")
	}
	return toBrandDTO(brand), nil
}

// AddFavorite is idempotent: favoriting twice keeps a single row.
func (s *service) AddFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Produto não encontrado")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}

	err := s.repo.AddFavorite(ctx, &models.UserFavorite{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
	})
	if err != nil && !db.IsUniqueViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adding favorite")
	}
	return nil
}

func (s *service) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.repo.RemoveFavorite(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "removing favorite")
	}
	return nil
}

func (s *service) ListFavorites(ctx context.Context, userID uuid.UUID) ([]ProductDTO, error) {
	rows, err := s.repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing favorites")
	}
	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		if rows[i].Product == nil {
			continue
		}
		dtos = append(dtos, toProductDTO(rows[i].Product))
	}
	return dtos, nil
}
