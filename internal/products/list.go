package products

import (
	"github.com/google/uuid"

	"github.com/adegadigital/adega-backend/pkg/pagination"
)

// ProductListFilters describe the filter knobs for the browse endpoint.
type ProductListFilters struct {
	Category *string    `json:"category,omitempty"`
	BrandID  *uuid.UUID `json:"brand_id,omitempty"`
	Query    string     `json:"q,omitempty"`
	// InactiveToo widens the listing to inactive rows (admin console only).
	InactiveToo bool `json:"-"`
}

// ListProductsInput captures the inputs needed to paginate/filter products.
type ListProductsInput struct {
	Filters    ProductListFilters
	Pagination pagination.Params
}

// ProductListResult is one page of products plus the cursor for the next.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}
