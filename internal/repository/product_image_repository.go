package repository

import (
	"context"
	"fmt"
	"time"

	"shopfront/internal/domain"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var (
	ErrProductImageNotFound = fmt.Errorf("product image %w", ErrNotFound)
)

// ProductImageRepository defines the interface for product image data access
type ProductImageRepository interface {
	Repository[*domain.ProductImage]
	// ListByProduct returns the active images of a product, oldest first.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error)
}

type productImageRepository struct {
	*sqlTable[*domain.ProductImage]
}

// NewProductImageRepository creates a new instance of ProductImageRepository
func NewProductImageRepository(db DBTX) ProductImageRepository {
	return &productImageRepository{sqlTable: &sqlTable[*domain.ProductImage]{
		db:      db,
		name:    "product_images",
		columns: []string{"product_id", "image"},
		create:  func() *domain.ProductImage { return &domain.ProductImage{} },
		fields: func(i *domain.ProductImage) []any {
			return []any{&i.ProductID, &i.Image}
		},
		values: func(i *domain.ProductImage) map[string]any {
			return map[string]any{"product_id": i.ProductID, "image": i.Image}
		},
		notFound: ErrProductImageNotFound,
		now:      time.Now,
	}}
}

func (r *productImageRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	return r.list(ctx, r.activeOnly().
		Where(squirrel.Eq{"product_id": productID.String()}).
		OrderBy("created_at ASC", "id ASC"))
}
