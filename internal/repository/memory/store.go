// Package memory provides an in-process unit of work store with the same
// visibility rules as the PostgreSQL store. It backs tests and the
// DB_DRIVER=memory mode.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"shopfront/internal/domain"
	"shopfront/internal/repository"

	"github.com/google/uuid"
)

// Store holds the committed state. Each unit of work reads from a snapshot
// taken at Begin and merges its journal back on Save.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	products   *table[domain.Product, *domain.Product]
	categories *table[domain.Category, *domain.Category]
	brands     *table[domain.Brand, *domain.Brand]
	images     *table[domain.ProductImage, *domain.ProductImage]
	comments   *table[domain.ProductComment, *domain.ProductComment]
	timer      domain.DiscountTimer
}

var _ repository.UnitOfWorkFactory = (*Store)(nil)

// NewStore creates an empty store with the discount timer row seeded.
func NewStore() *Store {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &Store{
		now:        time.Now,
		products:   newTable[domain.Product](),
		categories: newTable[domain.Category](),
		brands:     newTable[domain.Brand](),
		images:     newTable[domain.ProductImage](),
		comments:   newTable[domain.ProductComment](),
		timer:      domain.DiscountTimer{ID: domain.DiscountTimerID, EndsAt: now, UpdatedAt: now},
	}
}

func (s *Store) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := &unitOfWork{
		store:      s,
		products:   &productView{newView(s.products.clone(), repository.ErrProductNotFound, s.now)},
		categories: newView(s.categories.clone(), repository.ErrCategoryNotFound, s.now),
		brands:     newView(s.brands.clone(), repository.ErrBrandNotFound, s.now),
		images:     &imageView{newView(s.images.clone(), repository.ErrProductImageNotFound, s.now)},
		comments:   &commentView{newView(s.comments.clone(), repository.ErrProductCommentNotFound, s.now)},
		timer:      &timerView{timer: s.timer, now: s.now},
	}
	u.products.check = u.checkProductReferences
	return u, nil
}

type unitOfWork struct {
	store *Store
	done  bool

	products   *productView
	categories *view[domain.Category, *domain.Category]
	brands     *view[domain.Brand, *domain.Brand]
	images     *imageView
	comments   *commentView
	timer      *timerView
}

func (u *unitOfWork) Products() repository.ProductRepository               { return u.products }
func (u *unitOfWork) Categories() repository.CategoryRepository            { return u.categories }
func (u *unitOfWork) Brands() repository.BrandRepository                   { return u.brands }
func (u *unitOfWork) ProductImages() repository.ProductImageRepository     { return u.images }
func (u *unitOfWork) ProductComments() repository.ProductCommentRepository { return u.comments }
func (u *unitOfWork) DiscountTimers() repository.DiscountTimerRepository   { return u.timer }

// checkProductReferences mirrors the immediate category and brand foreign keys.
func (u *unitOfWork) checkProductReferences(p *domain.Product) error {
	if _, ok := u.categories.rows.get(p.CategoryID); !ok {
		return fmt.Errorf("%w: unknown category %s", repository.ErrInvalidReference, p.CategoryID)
	}
	if _, ok := u.brands.rows.get(p.BrandID); !ok {
		return fmt.Errorf("%w: unknown brand %s", repository.ErrInvalidReference, p.BrandID)
	}
	return nil
}

func (u *unitOfWork) Save(ctx context.Context) error {
	if u.done {
		return repository.ErrUnitOfWorkDone
	}
	u.done = true

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to save unit of work: %w", err)
	}

	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// Image and comment references are checked at commit, like deferred
	// foreign keys.
	productExists := func(id uuid.UUID) bool {
		if _, ok := u.products.rows.get(id); ok {
			return true
		}
		_, ok := s.products.get(id)
		return ok
	}
	for _, image := range u.images.staged() {
		if !productExists(image.ProductID) {
			return fmt.Errorf("failed to save unit of work: %w: image %s references unknown product %s",
				repository.ErrInvalidReference, image.ID, image.ProductID)
		}
	}
	for _, comment := range u.comments.staged() {
		if !productExists(comment.ProductID) {
			return fmt.Errorf("failed to save unit of work: %w: comment %s references unknown product %s",
				repository.ErrInvalidReference, comment.ID, comment.ProductID)
		}
	}

	u.categories.apply(s.categories)
	u.brands.apply(s.brands)
	u.products.apply(s.products)
	u.images.apply(s.images)
	u.comments.apply(s.comments)
	if u.timer.dirty {
		s.timer = u.timer.timer
	}
	return nil
}

func (u *unitOfWork) Rollback() error {
	u.done = true
	return nil
}

type productView struct {
	*view[domain.Product, *domain.Product]
}

func (v *productView) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return v.GetAll(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return v.filter(func(p *domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Description), query) ||
			strings.Contains(strings.ToLower(p.Information), query)
	}, false), nil
}

type imageView struct {
	*view[domain.ProductImage, *domain.ProductImage]
}

func (v *imageView) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.filter(func(i *domain.ProductImage) bool { return i.ProductID == productID }, false), nil
}

type commentView struct {
	*view[domain.ProductComment, *domain.ProductComment]
}

func (v *commentView) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductComment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.filter(func(c *domain.ProductComment) bool { return c.ProductID == productID }, true), nil
}

type timerView struct {
	timer domain.DiscountTimer
	dirty bool
	now   func() time.Time
}

func (v *timerView) Get(ctx context.Context) (*domain.DiscountTimer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timer := v.timer
	return &timer, nil
}

func (v *timerView) Save(ctx context.Context, timer *domain.DiscountTimer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer.ID = domain.DiscountTimerID
	timer.EndsAt = timer.EndsAt.UTC().Truncate(time.Microsecond)
	timer.UpdatedAt = v.now().UTC().Truncate(time.Microsecond)
	v.timer = *timer
	v.dirty = true
	return nil
}
