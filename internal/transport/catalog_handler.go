package transport

import (
	"context"
	"net/http"

	"shopfront/internal/domain"
	"shopfront/internal/middleware"
	"shopfront/internal/service"
	"shopfront/internal/viewmodel"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// catalogCRUD is the service surface shared by categories and brands.
type catalogCRUD[E domain.Entity, F any] interface {
	GetAll(ctx context.Context) ([]E, error)
	Get(ctx context.Context, id uuid.UUID) (E, error)
	Create(ctx context.Context, form F) (E, error)
	Update(ctx context.Context, id uuid.UUID, form F) (E, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// CatalogHandler serves the admin screens of a named lookup list
type CatalogHandler[E domain.Entity, F any] struct {
	base     string
	kind     string
	service  catalogCRUD[E, F]
	decode   func(*formReader) F
	formFrom func(E) F
	list     func([]E) interface{}
	logger   *zap.Logger
}

// NewCategoryHandler serves /Admin/Category
func NewCategoryHandler(categories service.CategoryService, logger *zap.Logger) *CatalogHandler[*domain.Category, viewmodel.CategoryForm] {
	return &CatalogHandler[*domain.Category, viewmodel.CategoryForm]{
		base:    "/Admin/Category",
		kind:    "category",
		service: categories,
		decode: func(f *formReader) viewmodel.CategoryForm {
			return viewmodel.CategoryForm{Name: f.str("name")}
		},
		formFrom: func(c *domain.Category) viewmodel.CategoryForm {
			return viewmodel.CategoryForm{Name: c.Name}
		},
		list: func(all []*domain.Category) interface{} {
			return viewmodel.CategoryListView{Categories: all}
		},
		logger: logger,
	}
}

// NewBrandHandler serves /Admin/Brand
func NewBrandHandler(brands service.BrandService, logger *zap.Logger) *CatalogHandler[*domain.Brand, viewmodel.BrandForm] {
	return &CatalogHandler[*domain.Brand, viewmodel.BrandForm]{
		base:    "/Admin/Brand",
		kind:    "brand",
		service: brands,
		decode: func(f *formReader) viewmodel.BrandForm {
			return viewmodel.BrandForm{Name: f.str("name")}
		},
		formFrom: func(b *domain.Brand) viewmodel.BrandForm {
			return viewmodel.BrandForm{Name: b.Name}
		},
		list: func(all []*domain.Brand) interface{} {
			return viewmodel.BrandListView{Brands: all}
		},
		logger: logger,
	}
}

func (h *CatalogHandler[E, F]) RegisterRoutes(r chi.Router) {
	r.Route(h.base, func(r chi.Router) {
		r.Get("/", h.Index)
		r.Get("/Create", h.CreateForm)
		r.Post("/Create", h.Create)
		r.Get("/Update/{id}", h.UpdateForm)
		r.Post("/Update/{id}", h.Update)
		r.Get("/Delete/{id}", h.Delete)
	})
}

func (h *CatalogHandler[E, F]) Index(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.GetAll(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, h.list(all))
}

func (h *CatalogHandler[E, F]) CreateForm(w http.ResponseWriter, r *http.Request) {
	var form F
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"form": form})
}

func (h *CatalogHandler[E, F]) Create(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(r)
	if err != nil {
		respondBadBody(w, h.logger, err)
		return
	}
	form := h.decode(f)

	if errs := f.check(form); len(errs) > 0 {
		middleware.RespondWithFormErrors(w, errs, form)
		return
	}

	entity, err := h.service.Create(r.Context(), form)
	if err != nil {
		respondError(w, r, h.logger, err, form)
		return
	}

	h.logger.Info("Catalog entry created",
		zap.String("kind", h.kind),
		zap.String("id", entity.Meta().ID.String()),
	)
	redirect(w, r, h.base)
}

func (h *CatalogHandler[E, F]) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	entity, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"form": h.formFrom(entity)})
}

func (h *CatalogHandler[E, F]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	f, err := readForm(r)
	if err != nil {
		respondBadBody(w, h.logger, err)
		return
	}
	form := h.decode(f)

	if errs := f.check(form); len(errs) > 0 {
		if _, err := h.service.Get(r.Context(), id); err != nil {
			respondError(w, r, h.logger, err, nil)
			return
		}
		middleware.RespondWithFormErrors(w, errs, form)
		return
	}

	if _, err := h.service.Update(r.Context(), id, form); err != nil {
		respondError(w, r, h.logger, err, form)
		return
	}

	h.logger.Info("Catalog entry updated", zap.String("kind", h.kind), zap.String("id", id.String()))
	redirect(w, r, h.base)
}

func (h *CatalogHandler[E, F]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}

	h.logger.Info("Catalog entry removed", zap.String("kind", h.kind), zap.String("id", id.String()))
	redirect(w, r, h.base)
}
