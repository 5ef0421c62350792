package viewmodel

import (
	"time"

	"shopfront/internal/domain"

	"github.com/google/uuid"
)

type CategoryForm struct {
	Name string `json:"name" validate:"required,max=100"`
}

func NewCategory(form CategoryForm) *domain.Category {
	return &domain.Category{Name: form.Name}
}

func ApplyCategory(c *domain.Category, form CategoryForm) {
	c.Name = form.Name
}

type BrandForm struct {
	Name string `json:"name" validate:"required,max=100"`
}

func NewBrand(form BrandForm) *domain.Brand {
	return &domain.Brand{Name: form.Name}
}

func ApplyBrand(b *domain.Brand, form BrandForm) {
	b.Name = form.Name
}

// DiscountTimerForm edits the site-wide countdown.
type DiscountTimerForm struct {
	Title  string    `json:"title" validate:"max=200"`
	EndsAt time.Time `json:"ends_at" validate:"required"`
}

func ApplyDiscountTimer(form DiscountTimerForm) *domain.DiscountTimer {
	return &domain.DiscountTimer{
		ID:     domain.DiscountTimerID,
		Title:  form.Title,
		EndsAt: form.EndsAt,
	}
}

func DiscountTimerFormFrom(t *domain.DiscountTimer) DiscountTimerForm {
	return DiscountTimerForm{Title: t.Title, EndsAt: t.EndsAt}
}

type CommentForm struct {
	Text string `json:"text" validate:"required,max=2000"`
}

func NewComment(productID uuid.UUID, userID string, form CommentForm) *domain.ProductComment {
	return &domain.ProductComment{ProductID: productID, UserID: userID, Text: form.Text}
}
