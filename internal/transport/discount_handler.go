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

const discountIndex = "/Admin/Discount"

// DiscountHandler serves the discount timer admin screens
type DiscountHandler struct {
	timers service.DiscountTimerService
	now    func() time.Time
	logger *zap.Logger
}

// NewDiscountHandler creates a new DiscountHandler
func NewDiscountHandler(timers service.DiscountTimerService, logger *zap.Logger) *DiscountHandler {
	return &DiscountHandler{
		timers: timers,
		now:    time.Now,
		logger: logger,
	}
}

func (h *DiscountHandler) RegisterRoutes(r chi.Router) {
	r.Route(discountIndex, func(r chi.Router) {
		r.Get("/", h.Index)
		r.Get("/Update", h.UpdateForm)
		r.Post("/Update", h.Update)
	})
}

func (h *DiscountHandler) Index(w http.ResponseWriter, r *http.Request) {
	timer, err := h.timers.Get(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, viewmodel.NewDiscountView(timer, h.now()))
}

func (h *DiscountHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	timer, err := h.timers.Get(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err, nil)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"form": viewmodel.DiscountTimerFormFrom(timer),
	})
}

// Update overwrites the title and end time of the timer
func (h *DiscountHandler) Update(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(r)
	if err != nil {
		respondBadBody(w, h.logger, err)
		return
	}
	form := f.discountTimerForm()

	if errs := f.check(form); len(errs) > 0 {
		middleware.RespondWithFormErrors(w, errs, form)
		return
	}

	timer, err := h.timers.Update(r.Context(), form)
	if err != nil {
		respondError(w, r, h.logger, err, form)
		return
	}

	h.logger.Info("Discount timer updated",
		zap.String("title", timer.Title),
		zap.Time("ends_at", timer.EndsAt),
	)
	redirect(w, r, discountIndex)
}
