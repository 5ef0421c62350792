package transport

import (
	"net/http"
	"time"

	"shopfront/internal/middleware"
	"shopfront/internal/service"
	"shopfront/internal/viewmodel"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StorefrontHandler serves the public catalog
type StorefrontHandler struct {
	products service.ProductService
	images   service.ProductImageService
	comments service.ProductCommentService
	timers   service.DiscountTimerService
	now      func() time.Time
	logger   *zap.Logger
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(
	products service.ProductService,
	images service.ProductImageService,
	comments service.ProductCommentService,
	timers service.DiscountTimerService,
	logger *zap.Logger,
) *StorefrontHandler {
	return &StorefrontHandler{
		products: products,
		images:   images,
		comments: comments,
		timers:   timers,
		now:      time.Now,
		logger:   logger,
	}
}

// RegisterRoutes registers the public routes. commentGuard wraps comment
// posting and must authenticate the caller.
func (h *StorefrontHandler) RegisterRoutes(r chi.Router, commentGuard ...func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.Products)
		r.Get("/{id}", h.Product)
		r.With(commentGuard...).Post("/{id}/comments", h.PostComment)
	})
	r.Get("/discount", h.Discount)
}

// Products lists product cards, filtered by search when given
func (h *StorefrontHandler) Products(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.products.Search(ctx, r.URL.Query().Get("search"))
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	images, err := h.images.GetAll(ctx)
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, viewmodel.NewProductCards(products, images))
}

func (h *StorefrontHandler) Product(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := h.products.Get(ctx, id)
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}

	view := viewmodel.StorefrontProductView{Product: product, FinalPrice: product.EffectivePrice()}
	if view.Images, err = h.images.GetByProduct(ctx, id); err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	if view.Comments, err = h.comments.GetProductID(ctx, id); err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// PostComment adds the caller's comment to an active product
func (h *StorefrontHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	f, err := readForm(r)
	if err != nil {
		respondBadBody(w, h.logger, err)
		return
	}
	form := f.commentForm()

	if errs := f.check(form); len(errs) > 0 {
		middleware.RespondWithFormErrors(w, errs, form)
		return
	}

	comment, err := h.comments.Create(r.Context(), id, userID, form)
	if err != nil {
		respondError(w, r, h.logger, err, form)
		return
	}

	h.logger.Info("Comment posted",
		zap.String("comment_id", comment.ID.String()),
		zap.String("product_id", id.String()),
		zap.String("user_id", userID),
	)
	redirect(w, r, "/products/"+id.String())
}

func (h *StorefrontHandler) Discount(w http.ResponseWriter, r *http.Request) {
	timer, err := h.timers.Get(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, viewmodel.NewDiscountView(timer, h.now()))
}
