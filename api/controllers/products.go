package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adegadigital/adega-backend/api/responses"
	"github.com/adegadigital/adega-backend/api/validators"
	"github.com/adegadigital/adega-backend/internal/products"
	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
	"github.com/adegadigital/adega-backend/pkg/logger"
	"github.com/adegadigital/adega-backend/pkg/pagination"
)

// ProductList serves the public catalog with category/brand filters and search.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return productListing(svc, logg, false)
}

// AdminProductList widens the listing to inactive rows for the console.
func AdminProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return productListing(svc, logg, true)
}

func productListing(svc products.Service, logg *logger.Logger, inactiveToo bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input := products.ListProductsInput{
			Filters: products.ProductListFilters{InactiveToo: inactiveToo},
		}

		if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
			input.Filters.Category = &category
		}
		if rawBrand := strings.TrimSpace(r.URL.Query().Get("brand_id")); rawBrand != "" {
			brandID, err := uuid.Parse(rawBrand)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid brand id"))
				return
			}
			input.Filters.BrandID = &brandID
		}
		input.Filters.Query = strings.TrimSpace(r.URL.Query().Get("q"))

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Pagination = pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProductDetail returns one catalog entry.
func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// BrandList returns active brands for storefront filters.
func BrandList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		brands, err := svc.ListBrands(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, brands)
	}
}

type createProductRequest struct {
	Name        string     `json:"name" validate:"required,min=2"`
	Description *string    `json:"description,omitempty"`
	Category    string     `json:"category" validate:"required"`
	BrandID     *uuid.UUID `json:"brand_id,omitempty"`
	Price       string     `json:"price" validate:"required"`
	ImageURL    *string    `json:"image_url,omitempty"`
	Active      *bool      `json:"active,omitempty"`
	InStock     *bool      `json:"in_stock,omitempty"`
}

type updateProductRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=2"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	BrandID     *uuid.UUID `json:"brand_id,omitempty"`
	Price       *string    `json:"price,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
	Active      *bool      `json:"active,omitempty"`
	InStock     *bool      `json:"in_stock,omitempty"`
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	return price, nil
}

// AdminProductCreate adds a catalog entry.
func AdminProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := parsePrice(payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := products.CreateProductInput{
			Name:        payload.Name,
			Description: payload.Description,
			Category:    payload.Category,
			BrandID:     payload.BrandID,
			Price:       price,
			ImageURL:    payload.ImageURL,
			Active:      true,
			InStock:     true,
		}
		if payload.Active != nil {
			input.Active = *payload.Active
		}
		if payload.InStock != nil {
			input.InStock = *payload.InStock
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminProductUpdate mutates a catalog entry.
func AdminProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := products.UpdateProductInput{
			Name:        payload.Name,
			Description: payload.Description,
			Category:    payload.Category,
			BrandID:     payload.BrandID,
			ImageURL:    payload.ImageURL,
			Active:      payload.Active,
			InStock:     payload.InStock,
		}
		if payload.Price != nil {
			price, err := parsePrice(*payload.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Price = &price
		}

		product, err := svc.Update(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type createBrandRequest struct {
	Name    string  `json:"name" validate:"required,min=2"`
	LogoURL *string `json:"logo_url,omitempty"`
}

// AdminBrandCreate registers a brand.
func AdminBrandCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createBrandRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		brand, err := svc.CreateBrand(r.Context(), payload.Name, payload.LogoURL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, brand)
	}
}

// FavoriteAdd marks a product as a favorite for the caller.
func FavoriteAdd(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AddFavorite(r.Context(), userID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "favorited"})
	}
}

// FavoriteRemove clears a favorite.
func FavoriteRemove(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveFavorite(r.Context(), userID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// FavoriteList returns the caller's favorited products.
func FavoriteList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		favorites, err := svc.ListFavorites(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, favorites)
	}
}
