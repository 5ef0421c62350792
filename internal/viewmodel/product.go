// Package viewmodel holds the form and screen shapes exchanged with the HTTP
// layer and the explicit mappings between them and domain entities.
package viewmodel

import (
	"shopfront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductForm carries the editable product fields.
type ProductForm struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Description   string          `json:"description" validate:"max=4000"`
	Information   string          `json:"information" validate:"max=4000"`
	Price         decimal.Decimal `json:"price"`
	DiscountPrice decimal.Decimal `json:"discount_price"`
	Count         int             `json:"count" validate:"gte=0"`
	IsDiscount    bool            `json:"is_discount"`
	CategoryID    uuid.UUID       `json:"category_id" validate:"required"`
	BrandID       uuid.UUID       `json:"brand_id" validate:"required"`
}

// ProductCreateForm is submitted to create a product. Image files travel
// next to it.
type ProductCreateForm struct {
	ProductForm
}

// ProductUpdateForm is submitted to edit a product. ReplaceImages
// soft-deletes the current images before the new ones are attached.
type ProductUpdateForm struct {
	ProductForm
	ReplaceImages bool `json:"replace_images"`
}

// MaxPrice is the largest amount a DECIMAL(12,2) price column holds.
var MaxPrice = decimal.RequireFromString("9999999999.99")

// cents rounds an amount to the stored precision.
func cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// PriceViolations checks the price rules validator tags cannot express on
// decimals. Amounts are judged as stored, after rounding to cents. Keys are
// form field names.
func (f ProductForm) PriceViolations() map[string]string {
	violations := map[string]string{}
	price, discount := cents(f.Price), cents(f.DiscountPrice)

	switch {
	case !price.IsPositive():
		violations["price"] = "Price must be greater than 0"
	case price.GreaterThan(MaxPrice):
		violations["price"] = "Price must be at most " + MaxPrice.StringFixed(2)
	}

	switch {
	case discount.IsNegative():
		violations["discount_price"] = "Discount price must not be negative"
	case discount.GreaterThan(MaxPrice):
		violations["discount_price"] = "Discount price must be at most " + MaxPrice.StringFixed(2)
	case f.IsDiscount && !discount.LessThan(price):
		violations["discount_price"] = "Discount price must be lower than price"
	}
	return violations
}

func (f ProductForm) applyTo(p *domain.Product) {
	p.Name = f.Name
	p.Description = f.Description
	p.Information = f.Information
	p.Price = cents(f.Price)
	p.DiscountPrice = cents(f.DiscountPrice)
	p.Count = f.Count
	p.IsDiscount = f.IsDiscount
	p.CategoryID = f.CategoryID
	p.BrandID = f.BrandID
}

// NewProduct builds an unsaved product from a create form.
func NewProduct(form ProductCreateForm) *domain.Product {
	p := &domain.Product{}
	form.applyTo(p)
	return p
}

// ApplyProductUpdate copies the editable fields onto an existing product.
// Identity, creation time and state are left alone.
func ApplyProductUpdate(p *domain.Product, form ProductUpdateForm) {
	form.applyTo(p)
}

// ProductUpdateFormFrom pre-fills the edit form.
func ProductUpdateFormFrom(p *domain.Product) ProductUpdateForm {
	return ProductUpdateForm{ProductForm: ProductForm{
		Name:          p.Name,
		Description:   p.Description,
		Information:   p.Information,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Count:         p.Count,
		IsDiscount:    p.IsDiscount,
		CategoryID:    p.CategoryID,
		BrandID:       p.BrandID,
	}}
}
