package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/flowmazonhq/flowmazon-backend/pkg/db/models"
)

// ProductView is the catalog shape returned to clients.
type ProductView struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Price       decimal.Decimal `json:"price"`
	Tags        []string        `json:"tags,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CatalogPage is the paginated storefront listing. The first page carries a
// hero product pulled out of the grid.
type CatalogPage struct {
	Hero       *ProductView  `json:"hero,omitempty"`
	Items      []ProductView `json:"items"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
}

// SearchPage wraps search results without hero treatment.
type SearchPage struct {
	Items []ProductView `json:"items"`
	Page  int           `json:"page"`
}

// CreateProductInput carries the fields accepted when adding a product.
type CreateProductInput struct {
	Name        string
	Description string
	ImageURL    string
	Price       decimal.Decimal
	Tags        []string
}

func (in CreateProductInput) toModel() *models.Product {
	return &models.Product{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Price:       in.Price,
		Tags:        pq.StringArray(in.Tags),
	}
}

// UpdateProductInput carries optional fields for a product update.
type UpdateProductInput struct {
	Name        *string
	Description *string
	ImageURL    *string
	Price       *decimal.Decimal
	Tags        []string
}

func viewFromModel(p *models.Product) ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       p.Price,
		Tags:        []string(p.Tags),
		CreatedAt:   p.CreatedAt,
	}
}

func viewsFromModels(items []models.Product) []ProductView {
	views := make([]ProductView, 0, len(items))
	for i := range items {
		views = append(views, viewFromModel(&items[i]))
	}
	return views
}
