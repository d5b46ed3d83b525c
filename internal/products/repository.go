package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adegadigital/adega-backend/pkg/db/models"
	"github.com/adegadigital/adega-backend/pkg/pagination"
)

// Repository wires catalog, brand, and favorite persistence.
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

// FindByID loads the product with its brand.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns one page of products. Rows are keyset-paginated on
// (created_at, id) descending.
func (r *Repository) List(ctx context.Context, input ListProductsInput) ([]models.Product, *string, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, nil, err
	}

	q := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Brand")

	if !input.Filters.InactiveToo {
		q = q.Where("active = true")
	}
	if input.Filters.Category != nil {
		q = q.Where("category = ?", *input.Filters.Category)
	}
	if input.Filters.BrandID != nil {
		q = q.Where("brand_id = ?", *input.Filters.BrandID)
	}
	if input.Filters.Query != "" {
		like := "%" + input.Filters.Query + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	err = q.Order("created_at DESC, id DESC").
		Limit(pageSize + 1).
		Find(&rows).
		Error
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		next = pagination.NextFrom(last.CreatedAt, last.ID)
	}
	return rows, next, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves an existing product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ListBrands returns brands, optionally limited to active ones.
func (r *Repository) ListBrands(ctx context.Context, activeOnly bool) ([]models.Brand, error) {
	var rows []models.Brand
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("active = true")
	}
	err := q.Find(&rows).Error
	return rows, err
}

// FindBrandByID loads one brand.
func (r *Repository) FindBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// CreateBrand inserts a new brand row.
func (r *Repository) CreateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

// UpdateBrand saves an existing brand row.
func (r *Repository) UpdateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	if err := r.db.WithContext(ctx).Save(brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

// AddFavorite inserts a (user, product) favorite row.
func (r *Repository) AddFavorite(ctx context.Context, favorite *models.UserFavorite) error {
	return r.db.WithContext(ctx).Create(favorite).Error
}

// RemoveFavorite deletes the favorite; absent rows are a no-op.
func (r *Repository) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.UserFavorite{}).
		Error
}

// ListFavorites returns the user's favorites with products preloaded.
func (r *Repository) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.UserFavorite, error) {
	var rows []models.UserFavorite
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Brand").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}
