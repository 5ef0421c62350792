package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	Record
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	Information   string          `json:"information" db:"information"`
	Price         decimal.Decimal `json:"price" db:"price"`
	DiscountPrice decimal.Decimal `json:"discount_price" db:"discount_price"`
	Count         int             `json:"count" db:"count"`
	IsDiscount    bool            `json:"is_discount" db:"is_discount"`
	CategoryID    uuid.UUID       `json:"category_id" db:"category_id"`
	BrandID       uuid.UUID       `json:"brand_id" db:"brand_id"`
}

// EffectivePrice is the price a shopper pays.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.IsDiscount && p.DiscountPrice.IsPositive() && p.DiscountPrice.LessThan(p.Price) {
		return p.DiscountPrice
	}
	return p.Price
}

// ProductImage is a stored image file attached to a product.
type ProductImage struct {
	Record
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Image     string    `json:"image" db:"image"`
}

// ProductComment is a shopper's comment on a product.
type ProductComment struct {
	Record
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Text      string    `json:"text" db:"text"`
}
