package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adegadigital/adega-backend/pkg/db/models"
)

// BrandDTO is the wire shape for a brand.
type BrandDTO struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	LogoURL *string   `json:"logo_url,omitempty"`
	Active  bool      `json:"active"`
}

// ProductDTO is the wire shape for a catalog product.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	Brand       *BrandDTO       `json:"brand,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url,omitempty"`
	Active      bool            `json:"active"`
	InStock     bool            `json:"in_stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toBrandDTO(brand *models.Brand) *BrandDTO {
	if brand == nil {
		return nil
	}
	return &BrandDTO{
		ID:      brand.ID,
		Name:    brand.Name,
		LogoURL: brand.LogoURL,
		Active:  brand.Active,
	}
}

func toProductDTO(product *models.Product) ProductDTO {
	return ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Brand:       toBrandDTO(product.Brand),
		Price:       product.Price,
		ImageURL:    product.ImageURL,
		Active:      product.Active,
		InStock:     product.InStock,
		CreatedAt:   product.CreatedAt,
	}
}
