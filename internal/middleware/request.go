// Package middleware holds the HTTP middleware shared by the API router:
// request identification, limits, security headers and telemetry.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "workpulse/internal/errors"
	"workpulse/internal/infrastructure"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID must run first. It reuses a client-supplied X-Request-ID or
// mints one, echoes it back, and stores it both under chi's request ID key
// and as the log trace_id.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = infrastructure.NewTraceID()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := infrastructure.WithTraceID(r.Context(), id)
		ctx = context.WithValue(ctx, chimw.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID, or the bare trace ID outside HTTP
func GetRequestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return infrastructure.GetTraceID(ctx)
}

// Timeout puts a deadline on the request context. Handlers that notice the
// deadline and return without writing get a 504 problem written for them.
func Timeout(limit time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), limit)
			defer cancel()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))
			if ww.Status() != 0 || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return
			}

			logger.ErrorContext(ctx, "request timeout",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("timeout", limit))
			writeProblem(w, r, apierrors.KindTimeout, "The request took too long to process")
		})
	}
}

var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
}

// SecurityHeaders locks down browsers rendering API responses. HSTS is only
// sent over TLS.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		if r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// writeProblem answers from inside middleware, where no ErrorHandler is
// in scope
func writeProblem(w http.ResponseWriter, r *http.Request, kind apierrors.Kind, detail string) {
	problem := apierrors.ProblemFor(kind, detail, r.URL.Path).
		Set("trace_id", GetRequestID(r.Context()))
	_ = render.Render(w, r, problem)
}
