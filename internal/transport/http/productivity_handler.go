package http

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "workpulse/internal/errors"
	"workpulse/internal/exporter"
	"workpulse/internal/middleware"
	"workpulse/internal/services"
	api "workpulse/pkg/contracts/api/v1"
)

// uploadField is the multipart field carrying the roster file
const uploadField = "file"

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temporary file
const multipartMemory = 8 << 20

var sampleFormats = []string{string(exporter.FormatXLSX), string(exporter.FormatCSV)}

// ProductivityHandler serves analysis, export and sample endpoints
type ProductivityHandler struct {
	service      ProductivityServiceInterface
	params       *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewProductivityHandler creates a new productivity handler
func NewProductivityHandler(service ProductivityServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ProductivityHandler {
	return &ProductivityHandler{
		service:      service,
		params:       middleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "productivity_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes on their own router
func (h *ProductivityHandler) Routes() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the analysis routes to an existing router
func (h *ProductivityHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).
		Post("/analyze", h.Analyze)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator(h.errorHandler, "application/json"))
		r.Post("/analyze/sheet", h.AnalyzeSheet)
		r.Post("/export-excel", h.exportAs(exporter.FormatXLSX))
		r.Post("/export-csv", h.exportAs(exporter.FormatCSV))
		r.Post("/export-pdf", h.exportAs(exporter.FormatPDF))
	})

	r.Get("/generate-sample", h.GenerateSample)
	r.Get("/policy", h.GetPolicy)
}

// Analyze handles POST /api/analyze
func (h *ProductivityHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.rejectBody(w, r, err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.errorHandler.HandleError(w, r, apierrors.ErrMissingFile)
			return
		}
		h.rejectBody(w, r, err)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrEmptyFilename)
		return
	}

	h.logger.InfoContext(r.Context(), "analyzing upload",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("file", header.Filename),
		slog.Int64("size", header.Size))

	resp, err := h.service.AnalyzeUpload(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}

// AnalyzeSheet handles POST /api/analyze/sheet
func (h *ProductivityHandler) AnalyzeSheet(w http.ResponseWriter, r *http.Request) {
	var req api.SheetAnalyzeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.rejectBody(w, r, err)
		return
	}

	resp, err := h.service.AnalyzeSheet(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}

// exportAs returns the handler of one export endpoint
func (h *ProductivityHandler) exportAs(format exporter.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.ExportRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			h.rejectBody(w, r, err)
			return
		}

		dl, err := h.service.Export(r.Context(), format, req)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		h.writeDownload(w, r, dl)
	}
}

// GenerateSample handles GET /api/generate-sample
func (h *ProductivityHandler) GenerateSample(w http.ResponseWriter, r *http.Request) {
	limits := h.service.SampleLimits()

	count, ok := h.params.ValidateInt(w, r, "count", 1, limits.MaxCount, limits.DefaultCount)
	if !ok {
		return
	}
	format, ok := h.params.ValidateEnum(w, r, "format", sampleFormats, string(exporter.FormatXLSX))
	if !ok {
		return
	}

	dl, err := h.service.Sample(r.Context(), count, exporter.Format(format))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeDownload(w, r, dl)
}

// GetPolicy handles GET /api/policy
func (h *ProductivityHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Policy())
}

// rejectBody reports an unreadable request body. Oversized bodies keep their
// MaxBytesError so they map to 413.
func (h *ProductivityHandler) rejectBody(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.errorHandler.HandleError(w, r, apierrors.BadRequest(err))
}

func (h *ProductivityHandler) writeDownload(w http.ResponseWriter, r *http.Request, dl *services.Download) {
	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Body)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(dl.Body); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write download",
			slog.String("file", dl.Filename),
			slog.String("error", err.Error()))
	}
}
