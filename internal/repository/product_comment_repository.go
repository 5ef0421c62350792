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
	ErrProductCommentNotFound = fmt.Errorf("product comment %w", ErrNotFound)
)

// ProductCommentRepository defines the interface for comment data access
type ProductCommentRepository interface {
	Repository[*domain.ProductComment]
	// ListByProduct returns the active comments of a product, newest first.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductComment, error)
}

type productCommentRepository struct {
	*sqlTable[*domain.ProductComment]
}

// NewProductCommentRepository creates a new instance of ProductCommentRepository
func NewProductCommentRepository(db DBTX) ProductCommentRepository {
	return &productCommentRepository{sqlTable: &sqlTable[*domain.ProductComment]{
		db:      db,
		name:    "product_comments",
		columns: []string{"product_id", "user_id", "text"},
		create:  func() *domain.ProductComment { return &domain.ProductComment{} },
		fields: func(c *domain.ProductComment) []any {
			return []any{&c.ProductID, &c.UserID, &c.Text}
		},
		values: func(c *domain.ProductComment) map[string]any {
			return map[string]any{
				"product_id": c.ProductID,
				"user_id":    c.UserID,
				"text":       c.Text,
			}
		},
		notFound: ErrProductCommentNotFound,
		now:      time.Now,
	}}
}

func (r *productCommentRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductComment, error) {
	return r.list(ctx, r.activeOnly().
		Where(squirrel.Eq{"product_id": productID.String()}).
		OrderBy("created_at DESC", "id DESC"))
}
