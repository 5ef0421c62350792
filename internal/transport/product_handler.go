package transport

import (
	"context"
	"net/http"

	"shopfront/internal/middleware"
	"shopfront/internal/service"
	"shopfront/internal/viewmodel"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const productIndex = "/Admin/Product"

// ProductHandler serves the admin product screens
type ProductHandler struct {
	products   service.ProductService
	categories service.CategoryService
	brands     service.BrandService
	images     service.ProductImageService
	comments   service.ProductCommentService
	logger     *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(
	products service.ProductService,
	categories service.CategoryService,
	brands service.BrandService,
	images service.ProductImageService,
	comments service.ProductCommentService,
	logger *zap.Logger,
) *ProductHandler {
	return &ProductHandler{
		products:   products,
		categories: categories,
		brands:     brands,
		images:     images,
		comments:   comments,
		logger:     logger,
	}
}

// RegisterRoutes registers the product routes on an admin router
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route(productIndex, func(r chi.Router) {
		r.Get("/", h.Index)
		r.Get("/Create", h.CreateForm)
		r.Post("/Create", h.Create)
		r.Get("/Update/{id}", h.UpdateForm)
		r.Post("/Update/{id}", h.Update)
		r.Get("/Delete/{id}", h.Delete)
		r.Post("/Restore/{id}", h.Restore)
		r.Get("/ProductDetail/{id}", h.ProductDetail)
	})
}

// Index lists products, filtered by productSearch when given
func (h *ProductHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	search := r.URL.Query().Get("productSearch")

	products, err := h.products.Search(ctx, search)
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}

	view := viewmodel.ProductAdminView{Search: search, Products: products}
	if view.Categories, err = h.categories.GetAll(ctx); err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	if view.Brands, err = h.brands.GetAll(ctx); err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	if view.ProductImages, err = h.images.GetAll(ctx); err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// formView pairs a form with the category and brand options.
func (h *ProductHandler) formView(ctx context.Context, form interface{}) (viewmodel.ProductFormView, error) {
	view := viewmodel.ProductFormView{Form: form}

	var err error
	if view.Categories, err = h.categories.GetAll(ctx); err != nil {
		return view, err
	}
	if view.Brands, err = h.brands.GetAll(ctx); err != nil {
		return view, err
	}
	return view, nil
}

func (h *ProductHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	view, err := h.formView(r.Context(), viewmodel.ProductCreateForm{})
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// Create adds a product with its uploaded images
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := readForm(r)
	if err != nil {
		respondBadBody(w, h.logger, err)
		return
	}
	form := viewmodel.ProductCreateForm{ProductForm: f.productForm()}

	view, err := h.formView(ctx, form)
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}

	if errs := f.check(form); len(errs) > 0 {
		middleware.RespondWithFormErrors(w, errs, view)
		return
	}

	product, err := h.products.Create(ctx, form, f.files)
	if err != nil {
		respondError(w, r, h.logger, err, view)
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.Int("images", len(f.files)),
	)
	redirect(w, r, productIndex)
}

func (h *ProductHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}

	view, err := h.formView(r.Context(), viewmodel.ProductUpdateFormFrom(product))
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// Update edits a product. Uploaded images are appended unless
// replace_images is set
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	f, err := readForm(r)
	if err != nil {
		respondBadBody(w, h.logger, err)
		return
	}
	form := viewmodel.ProductUpdateForm{
		ProductForm:   f.productForm(),
		ReplaceImages: f.boolean("replace_images"),
	}

	view, err := h.formView(ctx, form)
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}

	if errs := f.check(form); len(errs) > 0 {
		// A missing product wins over a bad form
		if _, err := h.products.Get(ctx, id); err != nil {
			respondError(w, r, h.logger, err, nil)
			return
		}
		middleware.RespondWithFormErrors(w, errs, view)
		return
	}

	if _, err := h.products.Update(ctx, id, form, f.files); err != nil {
		respondError(w, r, h.logger, err, view)
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", id.String()))
	redirect(w, r, productIndex)
}

// Delete soft-deletes a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.products.Remove(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}

	h.logger.Info("Product removed", zap.String("product_id", id.String()))
	redirect(w, r, productIndex)
}

func (h *ProductHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.products.Restore(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}

	h.logger.Info("Product restored", zap.String("product_id", id.String()))
	redirect(w, r, productIndex)
}

// ProductDetail shows a product with its comments and images
func (h *ProductHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	view, err := h.productDetail(ctx, id)
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, view)
}

func (h *ProductHandler) productDetail(ctx context.Context, id uuid.UUID) (viewmodel.ProductDetailView, error) {
	var view viewmodel.ProductDetailView
	var err error

	if view.Product, err = h.products.Get(ctx, id); err != nil {
		return view, err
	}
	if view.Comments, err = h.comments.GetProductID(ctx, id); err != nil {
		return view, err
	}
	if view.ProductImages, err = h.images.GetByProduct(ctx, id); err != nil {
		return view, err
	}
	if view.Categories, err = h.categories.GetAll(ctx); err != nil {
		return view, err
	}
	if view.Brands, err = h.brands.GetAll(ctx); err != nil {
		return view, err
	}
	return view, nil
}
