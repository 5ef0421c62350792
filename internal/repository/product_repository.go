package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopfront/internal/domain"

	"github.com/Masterminds/squirrel"
)

var (
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Repository[*domain.Product]
	// Search matches the query case-insensitively against name, description
	// and information. A blank query lists every active product.
	Search(ctx context.Context, query string) ([]*domain.Product, error)
}

type productRepository struct {
	*sqlTable[*domain.Product]
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{sqlTable: &sqlTable[*domain.Product]{
		db:   db,
		name: "products",
		columns: []string{
			"name", "description", "information", "price", "discount_price",
			"count", "is_discount", "category_id", "brand_id",
		},
		create: func() *domain.Product { return &domain.Product{} },
		fields: func(p *domain.Product) []any {
			return []any{
				&p.Name, &p.Description, &p.Information, &p.Price, &p.DiscountPrice,
				&p.Count, &p.IsDiscount, &p.CategoryID, &p.BrandID,
			}
		},
		values: func(p *domain.Product) map[string]any {
			return map[string]any{
				"name":           p.Name,
				"description":    p.Description,
				"information":    p.Information,
				"price":          p.Price,
				"discount_price": p.DiscountPrice,
				"count":          p.Count,
				"is_discount":    p.IsDiscount,
				"category_id":    p.CategoryID,
				"brand_id":       p.BrandID,
			}
		},
		notFound: ErrProductNotFound,
		now:      time.Now,
	}}
}

// Search filters active products with ILIKE over the text columns
func (r *productRepository) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.GetAll(ctx)
	}

	pattern := "%" + escapeLike(query) + "%"
	return r.list(ctx, r.activeOnly().
		Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"description": pattern},
			squirrel.ILike{"information": pattern},
		}).
		OrderBy("created_at ASC", "id ASC"))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
