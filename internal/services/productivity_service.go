package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"workpulse/internal/config"
	"workpulse/internal/dataprocessing"
	apierrors "workpulse/internal/errors"
	"workpulse/internal/exporter"
	"workpulse/internal/infrastructure"
	"workpulse/internal/productivity"
	"workpulse/internal/sample"
	"workpulse/internal/validation"
	api "workpulse/pkg/contracts/api/v1"
	"workpulse/pkg/contracts/domain"
)

// TracerName identifies spans opened by the service layer
const TracerName = "workpulse/services"

// Analysis sources, recorded on metrics and spans
const (
	SourceUpload = "upload"
	SourceSheet  = "sheet"
	SourceFile   = "file"
	SourceExport = "export"
)

// RowFetcher reads a spreadsheet range as a grid of cell strings
type RowFetcher interface {
	FetchRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

// PDFPrinter prints an HTML document to PDF
type PDFPrinter interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// Download is a rendered file ready to be served or written to disk
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ProductivityDeps carries the optional collaborators of ProductivityService.
// A nil Sheets or PDF disables the features that need it.
type ProductivityDeps struct {
	Sheets  RowFetcher
	PDF     PDFPrinter
	Metrics *infrastructure.BusinessMetrics
	Logger  *slog.Logger
}

// ProductivityService runs analyses, exports and sample generation
type ProductivityService struct {
	calculator  *productivity.Calculator
	parser      *dataprocessing.Parser
	files       *validation.FileValidator
	validator   *validation.Validator
	workbook    *exporter.Workbook
	csv         *exporter.CSVWriter
	sheets      RowFetcher
	pdf         PDFPrinter
	metrics     *infrastructure.BusinessMetrics
	tracer      trace.Tracer
	sampleCfg   config.SampleConfig
	reportTitle string
	now         func() time.Time
	seed        func() uint64
	logger      *slog.Logger
}

type recordLoader func(ctx context.Context) ([]domain.EmployeeRecord, error)

// NewProductivityService wires the analysis pipeline from configuration
func NewProductivityService(cfg *config.Config, deps ProductivityDeps) (*ProductivityService, error) {
	base := deps.Logger
	if base == nil {
		base = slog.Default()
	}

	calculator, err := productivity.NewCalculator(cfg.Policy.Policy(), base)
	if err != nil {
		return nil, fmt.Errorf("failed to create calculator: %w", err)
	}

	s := &ProductivityService{
		calculator:  calculator,
		parser:      dataprocessing.NewParser(base, cfg.Upload.MaxRows),
		files:       validation.NewFileValidator(base, cfg.Upload.AllowedExtensions, cfg.Upload.MaxSizeBytes),
		validator:   validation.New(),
		workbook:    exporter.NewWorkbook(base),
		csv:         exporter.NewCSVWriter(base),
		sheets:      deps.Sheets,
		pdf:         deps.PDF,
		metrics:     deps.Metrics,
		tracer:      otel.Tracer(TracerName),
		sampleCfg:   cfg.Sample,
		reportTitle: cfg.Report.Title,
		now:         time.Now,
		seed:        rand.Uint64,
		logger:      infrastructure.WithComponent(base, "productivity_service"),
	}

	s.logger.Info("ProductivityService initialized",
		slog.Bool("sheets_enabled", s.sheets != nil),
		slog.Bool("pdf_enabled", s.pdf != nil),
		slog.Int("max_rows", cfg.Upload.MaxRows))

	return s, nil
}

// Policy returns the active productivity policy
func (s *ProductivityService) Policy() productivity.Policy {
	return s.calculator.Policy()
}

// SampleLimits returns the default and maximum sample sizes
func (s *ProductivityService) SampleLimits() config.SampleConfig {
	return s.sampleCfg
}

// AllowedExtensions lists the roster file extensions accepted for analysis
func (s *ProductivityService) AllowedExtensions() []string {
	return s.files.AllowedExtensions()
}

// AnalyzeUpload parses an uploaded roster and analyses it
func (s *ProductivityService) AnalyzeUpload(ctx context.Context, filename string, size int64, r io.Reader) (*api.AnalyzeResponse, error) {
	if err := s.files.ValidateFilename(filename, size); err != nil {
		return nil, s.rejectFile(ctx, err)
	}

	return s.analyze(ctx, "productivity.analyze_upload", SourceUpload, filename, func(ctx context.Context) ([]domain.EmployeeRecord, error) {
		return s.parser.Parse(ctx, filename, r)
	})
}

// AnalyzeFile reads a roster from disk and analyses it
func (s *ProductivityService) AnalyzeFile(ctx context.Context, path string) (*api.AnalyzeResponse, error) {
	if err := s.files.ValidateRosterFile(path); err != nil {
		return nil, s.rejectFile(ctx, err)
	}

	return s.analyze(ctx, "productivity.analyze_file", SourceFile, filepath.Base(path), func(ctx context.Context) ([]domain.EmployeeRecord, error) {
		return s.parser.ParseFile(ctx, path)
	})
}

// AnalyzeSheet reads a roster range from Google Sheets and analyses it
func (s *ProductivityService) AnalyzeSheet(ctx context.Context, req api.SheetAnalyzeRequest) (*api.AnalyzeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, s.rejectRequest(ctx, err)
	}
	if s.sheets == nil {
		return nil, apierrors.Unavailable("Google Sheets source is not configured", ErrSheetsUnavailable)
	}

	return s.analyze(ctx, "productivity.analyze_sheet", SourceSheet, req.SpreadsheetID, func(ctx context.Context) ([]domain.EmployeeRecord, error) {
		rows, err := s.sheets.FetchRows(ctx, req.SpreadsheetID, req.Range)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSheetsUnavailable, err)
		}
		return s.parser.ParseRows(ctx, "sheet "+req.SpreadsheetID, rows)
	})
}

// AnalyzeRecords analyses records that are already in memory
func (s *ProductivityService) AnalyzeRecords(ctx context.Context, source string, records []domain.EmployeeRecord) (*api.AnalyzeResponse, error) {
	return s.analyze(ctx, "productivity.analyze_records", source, "", func(context.Context) ([]domain.EmployeeRecord, error) {
		return records, nil
	})
}

// Export recalculates the submitted records and renders them in format.
// Derived columns sent by the client are ignored.
func (s *ProductivityService) Export(ctx context.Context, format exporter.Format, req api.ExportRequest) (*Download, error) {
	switch format {
	case exporter.FormatXLSX, exporter.FormatCSV, exporter.FormatPDF:
	default:
		return nil, apierrors.Validation(fmt.Sprintf("unsupported export format %q", format), ErrUnsupportedExport)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, s.rejectRequest(ctx, err)
	}
	if format == exporter.FormatPDF && s.pdf == nil {
		return nil, apierrors.Unavailable("PDF rendering is not available", ErrPDFUnavailable)
	}

	resp, err := s.AnalyzeRecords(ctx, SourceExport, req.Data)
	if err != nil {
		return nil, err
	}
	return s.Render(ctx, format, req.Title, resp.AnalysisResult)
}

// Render writes an analysis result in the requested format
func (s *ProductivityService) Render(ctx context.Context, format exporter.Format, title string, result domain.AnalysisResult) (*Download, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "report."+string(format),
		trace.WithAttributes(
			attribute.String("report.format", string(format)),
			attribute.Int("report.records", len(result.Data)),
		))
	defer span.End()

	body, err := s.render(ctx, format, title, result)
	infrastructure.RecordExport(ctx, s.metrics, string(format), time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))

		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return nil, err
		case errors.Is(err, ErrPDFUnavailable), errors.Is(err, exporter.ErrChromeNotFound):
			return nil, apierrors.Unavailable("PDF rendering is not available", err)
		case errors.Is(err, ErrUnsupportedExport):
			return nil, apierrors.Validation(fmt.Sprintf("unsupported export format %q", format), err)
		}
		return nil, apierrors.Export(fmt.Sprintf("Failed to export %s report", format), err)
	}

	span.SetAttributes(attribute.Int("report.bytes", len(body)))
	span.SetStatus(codes.Ok, "")
	s.logger.InfoContext(ctx, "report exported",
		slog.String("format", string(format)),
		slog.Int("records", len(result.Data)),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)))

	return &Download{
		Filename:    exporter.ReportFilename(s.now(), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func (s *ProductivityService) render(ctx context.Context, format exporter.Format, title string, result domain.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case exporter.FormatXLSX:
		if err := s.workbook.Write(&buf, result.Data, result.Summary); err != nil {
			return nil, err
		}
	case exporter.FormatCSV:
		if err := s.csv.WriteEnriched(&buf, result.Data, true); err != nil {
			return nil, err
		}
	case exporter.FormatPDF:
		if s.pdf == nil {
			return nil, ErrPDFUnavailable
		}
		if title == "" {
			title = s.reportTitle
		}
		html, err := exporter.RenderReportHTML(exporter.NewReportData(title, s.now(), result.Summary, result.Data))
		if err != nil {
			return nil, err
		}
		return s.pdf.Render(ctx, html)
	case exporter.FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return nil, fmt.Errorf("failed to encode analysis: %w", err)
		}
	default:
		return nil, ErrUnsupportedExport
	}

	return buf.Bytes(), nil
}

// Sample generates a random roster of count employees
func (s *ProductivityService) Sample(ctx context.Context, count int, format exporter.Format) (*Download, error) {
	return s.SampleWithSeed(ctx, count, format, s.seed())
}

// SampleWithSeed generates a reproducible roster. Only xlsx and csv are
// supported since the output is meant to be fed back into the analyzer.
func (s *ProductivityService) SampleWithSeed(ctx context.Context, count int, format exporter.Format, seed uint64) (*Download, error) {
	if count < 1 || count > s.sampleCfg.MaxCount {
		msg := fmt.Sprintf("count must be between 1 and %d", s.sampleCfg.MaxCount)
		infrastructure.RecordValidationFailure(ctx, s.metrics, "sample_count")
		return nil, apierrors.Validation(msg, ErrInvalidSampleCount).
			With("errors", validation.Errors{{Field: "count", Message: msg}})
	}
	if format != exporter.FormatXLSX && format != exporter.FormatCSV {
		return nil, apierrors.Validation(fmt.Sprintf("unsupported sample format %q, use xlsx or csv", format), ErrUnsupportedSample)
	}

	ctx, span := s.tracer.Start(ctx, "sample.generate",
		trace.WithAttributes(
			attribute.Int("sample.count", count),
			attribute.String("sample.format", string(format)),
		))
	defer span.End()

	records := sample.NewSeededGenerator(seed, s.calculator.Policy()).Generate(count)

	var buf bytes.Buffer
	var err error
	if format == exporter.FormatXLSX {
		err = exporter.WriteRoster(&buf, sample.SheetName, records)
	} else {
		err = s.csv.WriteRoster(&buf, records)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, apierrors.Export("Failed to write sample roster", err)
	}

	infrastructure.RecordSampleGenerated(ctx, s.metrics, count)
	s.logger.InfoContext(ctx, "sample roster generated",
		slog.Int("count", count),
		slog.String("format", string(format)),
		slog.Uint64("seed", seed))

	return &Download{
		Filename:    sample.Filename(count, string(format)),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// analyze loads records, runs the calculator and records the outcome
func (s *ProductivityService) analyze(ctx context.Context, spanName, source, name string, load recordLoader) (*api.AnalyzeResponse, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, spanName,
		trace.WithAttributes(
			attribute.String("analysis.source", source),
			attribute.String("analysis.input", name),
		))
	defer span.End()

	var result domain.AnalysisResult
	records, err := load(ctx)
	if err == nil {
		infrastructure.AddSpanEvent(ctx, "records.loaded", attribute.Int("records", len(records)))
		result, err = s.calculator.Analyze(ctx, records)
	}

	infrastructure.RecordAnalysis(ctx, s.metrics, source, len(result.Data), time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "analysis failed",
			slog.String("source", source),
			slog.String("input", name),
			slog.String("error", err.Error()))
		return nil, s.wrapAnalysisError(ctx, err)
	}

	span.SetAttributes(
		attribute.Int("analysis.records", len(result.Data)),
		attribute.Int("analysis.productive", result.Summary.ProductiveCount),
	)
	span.SetStatus(codes.Ok, "")
	s.logger.InfoContext(ctx, "analysis completed",
		slog.String("source", source),
		slog.String("input", name),
		slog.Int("records", result.Summary.TotalEmployees),
		slog.Int("productive", result.Summary.ProductiveCount),
		slog.Duration("duration", time.Since(start)))

	return &api.AnalyzeResponse{
		AnalysisResult: result,
		SourceName:     name,
		AnalysisID:     uuid.NewString(),
	}, nil
}

// wrapAnalysisError turns parser and calculator errors into typed
// application errors carrying the offending rows or columns.
func (s *ProductivityService) wrapAnalysisError(ctx context.Context, err error) error {
	var (
		rowErr    *productivity.ValidationError
		columnErr *dataprocessing.ColumnError
		parseErr  *dataprocessing.ParseError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, ErrSheetsUnavailable):
		return apierrors.Unavailable("Failed to read the spreadsheet", err)
	case errors.As(err, &rowErr):
		infrastructure.RecordValidationFailure(ctx, s.metrics, "invalid_rows")
		return apierrors.Validation("Invalid records", err).With("errors", rowErr.Rows)
	case errors.As(err, &columnErr):
		infrastructure.RecordValidationFailure(ctx, s.metrics, "missing_columns")
		return apierrors.Validation("Missing required columns", err).With("missing_columns", columnErr.Missing)
	case errors.As(err, &parseErr):
		infrastructure.RecordValidationFailure(ctx, s.metrics, "invalid_cells")
		return apierrors.Parsing("Invalid cell values", err).With("errors", parseErr.Issues)
	case errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		infrastructure.RecordValidationFailure(ctx, s.metrics, "unsupported_format")
		return apierrors.Validation("Unsupported file format. Use CSV or Excel", err)
	case errors.Is(err, dataprocessing.ErrNoHeader), errors.Is(err, dataprocessing.ErrTooManyRows):
		infrastructure.RecordValidationFailure(ctx, s.metrics, "invalid_roster")
		return apierrors.Validation("Invalid roster", err).With("details", err.Error())
	}

	infrastructure.RecordValidationFailure(ctx, s.metrics, "unreadable")
	return apierrors.Parsing("Failed to read roster", err)
}

// rejectFile maps file validator errors onto validation errors
func (s *ProductivityService) rejectFile(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, validation.ErrUnsupportedExtension):
		infrastructure.RecordValidationFailure(ctx, s.metrics, "unsupported_format")
		return apierrors.Validation("Unsupported file format. Use CSV or Excel", err)
	case errors.Is(err, validation.ErrFileTooLarge):
		infrastructure.RecordValidationFailure(ctx, s.metrics, "file_too_large")
		return apierrors.Validation("File exceeds the upload size limit", err).With("details", err.Error())
	}
	infrastructure.RecordValidationFailure(ctx, s.metrics, "invalid_file")
	return apierrors.Validation("Invalid input file", err).With("details", err.Error())
}

// rejectRequest maps struct validation errors onto a validation error
// listing each offending field.
func (s *ProductivityService) rejectRequest(ctx context.Context, err error) error {
	infrastructure.RecordValidationFailure(ctx, s.metrics, "invalid_request")

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return apierrors.Validation("Request validation failed", err).With("errors", fieldErrs)
	}
	return apierrors.Validation(err.Error(), err)
}
