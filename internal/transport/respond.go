package transport

import (
	"errors"
	"net/http"

	"shopfront/internal/middleware"
	"shopfront/internal/repository"
	"shopfront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var notFoundErrors = []error{
	repository.ErrProductNotFound,
	repository.ErrCategoryNotFound,
	repository.ErrBrandNotFound,
	repository.ErrProductImageNotFound,
	repository.ErrProductCommentNotFound,
	repository.ErrDiscountTimerNotFound,
}

// respondError maps service errors onto responses. Validation failures echo
// form back with the field errors; anything unrecognised is a 500.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, form interface{}) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		fields := make([]middleware.ValidationError, 0, len(validationErr.Fields))
		for _, f := range validationErr.Fields {
			fields = append(fields, middleware.ValidationError{Field: f.Field, Message: f.Message})
		}
		logger.Debug("Submission rejected", zap.String("path", r.URL.Path), zap.Error(err))
		middleware.RespondWithFormErrors(w, fields, form)

	case errors.Is(err, repository.ErrNotFound):
		message := "not found"
		for _, target := range notFoundErrors {
			if errors.Is(err, target) {
				message = target.Error()
				break
			}
		}
		middleware.RespondWithError(w, http.StatusNotFound, message)

	default:
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondBadBody answers a body that could not be parsed at all.
func respondBadBody(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Debug("Request body rejected", zap.Error(err))
	if errors.Is(err, errBodyTooLarge) {
		middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, errBodyTooLarge.Error())
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, errInvalidBody.Error())
}

// pathID reads the {id} route parameter. Malformed ids cannot name a record
// and are reported as missing.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "not found")
		return uuid.Nil, false
	}
	return id, true
}

func redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}
