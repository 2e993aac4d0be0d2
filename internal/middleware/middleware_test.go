package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "workpulse/internal/errors"
	"workpulse/internal/infrastructure"
	"workpulse/internal/shared/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeProblem(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var problem map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&problem))
	return problem
}

func TestRequestID(t *testing.T) {
	var seenReqID, seenTraceID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenReqID = GetRequestID(r.Context())
		seenTraceID = infrastructure.GetTraceID(r.Context())
	}))

	t.Run("generates an ID", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		header := rec.Header().Get(RequestIDHeader)
		assert.Len(t, header, 36)
		assert.Equal(t, header, seenReqID)
		assert.Equal(t, header, seenTraceID)
	})

	t.Run("keeps client ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "client-supplied")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "client-supplied", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "client-supplied", seenReqID)
	})
}

func TestGetRequestIDFallsBackToTraceID(t *testing.T) {
	ctx := infrastructure.WithTraceID(context.Background(), "trace-only")
	assert.Equal(t, "trace-only", GetRequestID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestRateLimiter(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	limiter := NewRateLimiter(0.001, 2, logger)
	handler := RequestID(limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/policy", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/policy", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	problem := decodeProblem(t, rec.Body)
	assert.Equal(t, apierrors.TypeRateLimit, problem["type"])
	assert.Equal(t, float64(http.StatusTooManyRequests), problem["status"])
	assert.NotEmpty(t, problem["trace_id"])

	attrs := testutil.AssertLogged(t, logs, slog.LevelWarn, "rate limit exceeded")
	assert.Equal(t, "/api/policy", attrs["path"])
	assert.Equal(t, 1, logs.Count())
}

func TestRateLimiter_PerClient(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1, testLogger())
	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	request := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/policy", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, request("10.0.0.1:5000"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:5001"), "ports share the client's bucket")
	assert.Equal(t, http.StatusNoContent, request("10.0.0.2:5000"))
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(1, 1, testLogger())
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.2"))
	assert.Len(t, limiter.clients, 2)

	now = now.Add(idleClientTTL + time.Minute)
	assert.True(t, limiter.allow("10.0.0.3"))
	assert.Len(t, limiter.clients, 1)
}

func TestTimeout(t *testing.T) {
	t.Run("writes 504 when handler gives up silently", func(t *testing.T) {
		logger, logs := testutil.NewTestLogger(t)
		handler := Timeout(10*time.Millisecond, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", nil))
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		assert.Equal(t, apierrors.TypeTimeout, decodeProblem(t, rec.Body)["type"])

		attrs := testutil.AssertLogged(t, logs, slog.LevelError, "request timeout")
		assert.Equal(t, 10*time.Millisecond, attrs["timeout"])
	})

	t.Run("leaves written responses alone", func(t *testing.T) {
		handler := Timeout(time.Second, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("handler sees the deadline", func(t *testing.T) {
		var hasDeadline bool
		handler := Timeout(time.Second, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasDeadline = r.Context().Deadline()
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, hasDeadline)
	})
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestOTelMiddleware(t *testing.T) {
	providers := infrastructure.NoopProviders(testLogger())
	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	mw := NewOTelMiddleware(providers, metrics)
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// nil metrics are tolerated
	rec = httptest.NewRecorder()
	NewOTelMiddleware(providers, nil).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}
