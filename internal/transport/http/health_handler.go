package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"workpulse/internal/services"
	api "workpulse/pkg/contracts/api/v1"
)

// HealthHandler serves the probe and version endpoints
type HealthHandler struct {
	service *services.HealthService
	logger  *slog.Logger
}

func NewHealthHandler(service *services.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{service: service, logger: logger.With(slog.String("handler", "health"))}
}

// Routes returns the probe routes as a standalone router
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the probe routes to r. Readiness answers 503 while a
// required dependency is down so orchestrators stop routing traffic.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Get("/health/ready", h.ReadinessCheck)
	r.Get("/health/live", h.LivenessCheck)
	r.Get("/version", h.Version)
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.HealthCheck(r.Context()), "")
}

func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.ReadinessCheck(r.Context()), services.StatusNotReady)
}

func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.LivenessCheck(r.Context()), "")
}

func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}

// respond writes body, with 503 when its status equals failStatus
func (h *HealthHandler) respond(w http.ResponseWriter, r *http.Request, body api.HealthResponse, failStatus string) {
	if failStatus != "" && body.Status == failStatus {
		h.logger.WarnContext(r.Context(), "probe failing",
			slog.String("path", r.URL.Path),
			slog.Any("checks", body.Checks))
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, body)
}
