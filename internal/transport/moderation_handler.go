package transport

import (
	"net/http"

	"shopfront/internal/middleware"
	"shopfront/internal/service"
	"shopfront/internal/viewmodel"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const commentIndex = "/Admin/Comment"

// ModerationHandler lets admins remove comments and product images
type ModerationHandler struct {
	comments service.ProductCommentService
	images   service.ProductImageService
	logger   *zap.Logger
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(comments service.ProductCommentService, images service.ProductImageService, logger *zap.Logger) *ModerationHandler {
	return &ModerationHandler{
		comments: comments,
		images:   images,
		logger:   logger,
	}
}

func (h *ModerationHandler) RegisterRoutes(r chi.Router) {
	r.Route(commentIndex, func(r chi.Router) {
		r.Get("/", h.Comments)
		r.Get("/Delete/{id}", h.DeleteComment)
	})
	r.Get("/Admin/ProductImage/Delete/{id}", h.DeleteImage)
}

func (h *ModerationHandler) Comments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.GetAll(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, viewmodel.CommentListView{Comments: comments})
}

func (h *ModerationHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.comments.Remove(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}

	h.logger.Info("Comment removed", zap.String("comment_id", id.String()))
	redirect(w, r, commentIndex)
}

// DeleteImage soft-deletes one image and returns to its product's edit page
func (h *ModerationHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	image, err := h.images.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	if err := h.images.Remove(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}

	h.logger.Info("Product image removed",
		zap.String("image_id", id.String()),
		zap.String("product_id", image.ProductID.String()),
	)
	redirect(w, r, productIndex+"/Update/"+image.ProductID.String())
}
