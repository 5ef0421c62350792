package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// codeValidationFailed marks a rejected form; clients redisplay it with the
// field errors instead of showing a generic failure.
const codeValidationFailed = "validation_failed"

// ErrorResponse is the envelope of every non-2xx JSON answer.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code next to the message.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// statusCode turns a status into a snake_case code, e.g. 404 -> "not_found".
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	return strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(text, "-", "_"), " ", "_"))
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	RespondWithJSON(w, status, ErrorResponse{Error: ErrorDetail{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}})
}

func RespondWithError(w http.ResponseWriter, status int, message string) {
	RespondWithErrorDetails(w, status, message, nil)
}

func RespondWithErrorDetails(w http.ResponseWriter, status int, message string, details map[string]interface{}) {
	writeError(w, status, statusCode(status), message, details)
}

// RespondWithValidationErrors answers 400 with the failed fields.
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	writeError(w, http.StatusBadRequest, codeValidationFailed, "validation failed", map[string]interface{}{
		"validation_errors": errors,
	})
}

// RespondWithFormErrors answers 400 with the failed fields and the form as
// submitted, so it can be shown again.
func RespondWithFormErrors(w http.ResponseWriter, errors []ValidationError, form interface{}) {
	writeError(w, http.StatusBadRequest, codeValidationFailed, "validation failed", map[string]interface{}{
		"validation_errors": errors,
		"form":              form,
	})
}

// ErrorHandlingMiddleware answers a panicking handler with a JSON 500.
// Aborted handlers keep their panic for net/http.
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logger.Error("Handler panicked",
					zap.Any("panic", rec),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				RespondWithError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func RespondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
