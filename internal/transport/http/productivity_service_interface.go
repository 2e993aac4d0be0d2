package http

import (
	"context"
	"io"

	"workpulse/internal/config"
	"workpulse/internal/exporter"
	"workpulse/internal/productivity"
	"workpulse/internal/services"
	api "workpulse/pkg/contracts/api/v1"
)

// ProductivityServiceInterface defines the operations behind the analysis API
type ProductivityServiceInterface interface {
	AnalyzeUpload(ctx context.Context, filename string, size int64, r io.Reader) (*api.AnalyzeResponse, error)
	AnalyzeSheet(ctx context.Context, req api.SheetAnalyzeRequest) (*api.AnalyzeResponse, error)
	Export(ctx context.Context, format exporter.Format, req api.ExportRequest) (*services.Download, error)
	Sample(ctx context.Context, count int, format exporter.Format) (*services.Download, error)
	Policy() productivity.Policy
	SampleLimits() config.SampleConfig
}
