package middleware

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"

	apierrors "workpulse/internal/errors"
)

// MaxBodySize wraps the body in http.MaxBytesReader. The handler sees
// *http.MaxBytesError on overrun, which ErrorHandler reports as 413.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bodyless(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodDelete:
		return true
	}
	return false
}

// ContentTypeValidator rejects bodies whose media type is not one of
// mediaTypes. Parameters such as charset or boundary are ignored.
func ContentTypeValidator(errorHandler *apierrors.ErrorHandler, mediaTypes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bodyless(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Content-Type")
			if header == "" {
				errorHandler.HandleError(w, r, apierrors.ErrMissingContentType)
				return
			}
			mediaType, _, err := mime.ParseMediaType(header)
			if err != nil || !slices.Contains(mediaTypes, mediaType) {
				errorHandler.HandleError(w, r, apierrors.ErrUnsupportedMedia.
					With("content_type", header).
					With("allowed", mediaTypes))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// QueryParamValidator parses query parameters for handlers. Each method
// writes the 400 itself and reports ok=false when the value is rejected.
type QueryParamValidator struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateInt reads an integer in [min, max], or def when absent
func (v *QueryParamValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param string, min, max, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(param))
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		v.reject(w, r, param, raw, param+" must be a valid integer")
	case n < min || n > max:
		v.reject(w, r, param, raw, fmt.Sprintf("%s must be between %d and %d", param, min, max))
	default:
		return n, true
	}
	return 0, false
}

// ValidateEnum reads one of allowed, case-insensitively, or def when absent
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, def string) (string, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(param))
	if raw == "" {
		return def, true
	}
	if value := strings.ToLower(raw); slices.Contains(allowed, value) {
		return value, true
	}

	v.reject(w, r, param, raw, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", ")))
	return "", false
}

func (v *QueryParamValidator) reject(w http.ResponseWriter, r *http.Request, param, value, message string) {
	v.logger.DebugContext(r.Context(), "query parameter rejected",
		slog.String("param", param),
		slog.String("value", value))
	v.errorHandler.HandleError(w, r, apierrors.InvalidFields(apierrors.FieldError{Field: param, Message: message}))
}
