package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ErrorHandler writes every failed request as a problem response and logs it
// once. Server-side failures log at error level, client mistakes at warn.
type ErrorHandler struct {
	logger *slog.Logger
	// debug adds panic values and stacks to 5xx bodies
	debug bool
}

func NewErrorHandler(logger *slog.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
		debug:  debug,
	}
}

// HandleError classifies err and responds. A nil err is ignored.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	problem := h.ErrorToProblem(err, r)
	traceID := middleware.GetReqID(r.Context())

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem.Set("trace_id", traceID)
	if h.debug && problem.Status >= http.StatusInternalServerError {
		problem.Set("stack", string(debug.Stack()))
	}
	_ = render.Render(w, r, problem)
}

// ErrorToProblem maps err onto a problem without writing anything.
// Unclassified errors become an opaque 500 so internals never leak.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *Problem {
	path := r.URL.Path

	var tooLarge *http.MaxBytesError
	var typed *Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ProblemFor(KindTimeout, "The request took too long to process and was cancelled", path)
	case errors.As(err, &tooLarge):
		return ProblemFor(KindTooLarge,
			fmt.Sprintf("The request body exceeds the maximum allowed size of %d bytes", tooLarge.Limit), path)
	case errors.As(err, &typed):
		if typed.Kind.Status() == http.StatusInternalServerError && typed.Kind != KindExport {
			return ProblemFor(KindInternal, "An unexpected error occurred while processing your request", path)
		}
		p := ProblemFor(typed.Kind, typed.Message, path)
		for k, v := range typed.Fields {
			p.Set(k, v)
		}
		return p.Set("error_code", typed.ErrorCode())
	default:
		return ProblemFor(KindInternal, "An unexpected error occurred while processing your request", path)
	}
}

// HandlePanic answers a recovered panic with a 500 problem
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered any) {
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := ProblemFor(KindInternal, "An unexpected error occurred", r.URL.Path).
		Set("trace_id", middleware.GetReqID(r.Context()))
	if h.debug {
		problem.Set("panic", fmt.Sprint(recovered))
		problem.Set("stack", string(debug.Stack()))
	}
	_ = render.Render(w, r, problem)
}

// NotFound is installed as the router's 404 handler
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblem(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r.URL.Path).
		Set("trace_id", middleware.GetReqID(r.Context()))
	_ = render.Render(w, r, problem)
}

// MethodNotAllowed is installed as the router's 405 handler
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblem(http.StatusMethodNotAllowed, TypeMethod, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path).
		Set("trace_id", middleware.GetReqID(r.Context()))
	_ = render.Render(w, r, problem)
}

// RecoveryMiddleware converts handler panics into 500 problems.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func RecoveryMiddleware(h *ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.HandlePanic(w, r, rec)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
