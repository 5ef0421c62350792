package viewmodel

import (
	"time"

	"shopfront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductAdminView is the admin product index.
type ProductAdminView struct {
	Search        string                 `json:"search,omitempty"`
	Products      []*domain.Product      `json:"products"`
	Categories    []*domain.Category     `json:"categories"`
	Brands        []*domain.Brand        `json:"brands"`
	ProductImages []*domain.ProductImage `json:"product_images"`
}

// ProductFormView feeds the create and edit screens with the form and the
// options for its selects.
type ProductFormView struct {
	Form       any                `json:"form"`
	Categories []*domain.Category `json:"categories"`
	Brands     []*domain.Brand    `json:"brands"`
}

// ProductDetailView is a product with its comments and catalog context.
type ProductDetailView struct {
	Product       *domain.Product          `json:"product"`
	Comments      []*domain.ProductComment `json:"comments"`
	ProductImages []*domain.ProductImage   `json:"product_images"`
	Categories    []*domain.Category       `json:"categories"`
	Brands        []*domain.Brand          `json:"brands"`
}

type CategoryListView struct {
	Categories []*domain.Category `json:"categories"`
}

type BrandListView struct {
	Brands []*domain.Brand `json:"brands"`
}

type CommentListView struct {
	Comments []*domain.ProductComment `json:"comments"`
}

// DiscountView shows the timer with the time left at render.
type DiscountView struct {
	Title     string    `json:"title"`
	EndsAt    time.Time `json:"ends_at"`
	Remaining string    `json:"remaining"`
	Active    bool      `json:"active"`
}

func NewDiscountView(t *domain.DiscountTimer, now time.Time) DiscountView {
	remaining := t.EndsAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return DiscountView{
		Title:     t.Title,
		EndsAt:    t.EndsAt,
		Remaining: remaining.Round(time.Second).String(),
		Active:    remaining > 0,
	}
}

// ProductCard is a storefront listing entry.
type ProductCard struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	FinalPrice decimal.Decimal `json:"final_price"`
	IsDiscount bool            `json:"is_discount"`
	InStock    bool            `json:"in_stock"`
	Image      string          `json:"image,omitempty"`
}

// NewProductCards pairs each product with its first image.
func NewProductCards(products []*domain.Product, images []*domain.ProductImage) []ProductCard {
	firstImage := make(map[uuid.UUID]string)
	for _, image := range images {
		if _, ok := firstImage[image.ProductID]; !ok {
			firstImage[image.ProductID] = image.Image
		}
	}

	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, ProductCard{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price,
			FinalPrice: p.EffectivePrice(),
			IsDiscount: p.IsDiscount,
			InStock:    p.Count > 0,
			Image:      firstImage[p.ID],
		})
	}
	return cards
}

// StorefrontProductView is the public product page.
type StorefrontProductView struct {
	Product    *domain.Product          `json:"product"`
	FinalPrice decimal.Decimal          `json:"final_price"`
	Images     []*domain.ProductImage   `json:"images"`
	Comments   []*domain.ProductComment `json:"comments"`
}
