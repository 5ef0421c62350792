package repository

import (
	"fmt"
	"time"

	"shopfront/internal/domain"
)

var (
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrBrandNotFound    = fmt.Errorf("brand %w", ErrNotFound)
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Repository[*domain.Category]
}

// BrandRepository defines the interface for brand data access
type BrandRepository interface {
	Repository[*domain.Brand]
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db DBTX) CategoryRepository {
	return &sqlTable[*domain.Category]{
		db:      db,
		name:    "categories",
		columns: []string{"name"},
		create:  func() *domain.Category { return &domain.Category{} },
		fields:  func(c *domain.Category) []any { return []any{&c.Name} },
		values: func(c *domain.Category) map[string]any {
			return map[string]any{"name": c.Name}
		},
		notFound: ErrCategoryNotFound,
		now:      time.Now,
	}
}

// NewBrandRepository creates a new instance of BrandRepository
func NewBrandRepository(db DBTX) BrandRepository {
	return &sqlTable[*domain.Brand]{
		db:      db,
		name:    "brands",
		columns: []string{"name"},
		create:  func() *domain.Brand { return &domain.Brand{} },
		fields:  func(b *domain.Brand) []any { return []any{&b.Name} },
		values: func(b *domain.Brand) map[string]any {
			return map[string]any{"name": b.Name}
		},
		notFound: ErrBrandNotFound,
		now:      time.Now,
	}
}
